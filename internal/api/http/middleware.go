package http

import (
	"context"
	"errors"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/spec-kit/status-portal/internal/config"
	"github.com/spec-kit/status-portal/internal/observability"
	"github.com/spec-kit/status-portal/internal/ratelimit"
	apperrors "github.com/spec-kit/status-portal/pkg/util/errorutil"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, corsCfg config.CORSConfig, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
	app.Use(corsMiddleware(corsCfg))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
}

// ErrorHandler renders errors that escape the middleware chain, such as
// unmatched routes.
func ErrorHandler(logger *zap.Logger, metrics *observability.Metrics) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		writeError(c, logger, metrics, err)
		return nil
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

const (
	corsAllowMethods = "GET,POST,PUT,DELETE,OPTIONS"
	corsAllowHeaders = "Origin,Content-Type,Accept,Authorization"
)

func corsMiddleware(cfg config.CORSConfig) fiber.Handler {
	origins := "*"
	if len(cfg.AllowedOrigins) > 0 {
		origins = strings.Join(cfg.AllowedOrigins, ",")
	}
	return cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  corsAllowMethods,
		AllowHeaders:  corsAllowHeaders,
		ExposeHeaders: observability.HeaderRequestID,
		MaxAge:        int((12 * time.Hour).Seconds()),
	})
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				writeError(c, logger, metrics, err)
				err = nil
			}
		}()
		return c.Next()
	}
}

func writeError(c *fiber.Ctx, logger *zap.Logger, metrics *observability.Metrics, err error) {
	domainErr := toDomainError(err)
	metrics.RecordError(c.Route().Path, c.Method(), domainErr.Code)

	body := fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("request_id", observability.RequestID(c)),
			zap.String("code", domainErr.Code),
			zap.Error(domainErr))
	}
	c.Status(domainErr.HTTPStatus)
	_ = c.JSON(fiber.Map{"success": false, "error": body})
}

// toDomainError also covers errors raised by fiber itself.
func toDomainError(err error) *apperrors.DomainError {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch fiberErr.Code {
		case fiber.StatusNotFound:
			return apperrors.ToDomainError(apperrors.NewNotFound("route", nil))
		case fiber.StatusRequestTimeout:
			return apperrors.NewDomainError(apperrors.CodeInternal, "request timed out", fiberErr.Code, nil)
		default:
			if fiberErr.Code < fiber.StatusInternalServerError {
				return apperrors.NewDomainError(apperrors.CodeValidation, fiberErr.Message, fiberErr.Code, nil)
			}
		}
	}
	return apperrors.ToDomainError(err)
}

// methodNotAllowed rejects methods a route does not serve.
func methodNotAllowed(allowed ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderAllow, strings.Join(allowed, ", "))
		return apperrors.NewMethodNotAllowed(allowed)
	}
}

// preflight answers OPTIONS with 204. The cors middleware skips OPTIONS
// requests lacking Access-Control-Request-Method, so the allow headers are
// filled in here when it left them unset.
func preflight(cfg config.CORSConfig) fiber.Handler {
	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		allowed[strings.ToLower(origin)] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		if len(c.Response().Header.Peek(fiber.HeaderAccessControlAllowOrigin)) == 0 {
			switch origin := c.Get(fiber.HeaderOrigin); {
			case len(allowed) == 0:
				c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
			case origin != "":
				c.Vary(fiber.HeaderOrigin)
				if _, ok := allowed[strings.ToLower(origin)]; !ok {
					return c.SendStatus(fiber.StatusNoContent)
				}
				c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
			default:
				return c.SendStatus(fiber.StatusNoContent)
			}
			c.Set(fiber.HeaderAccessControlAllowMethods, corsAllowMethods)
			c.Set(fiber.HeaderAccessControlAllowHeaders, corsAllowHeaders)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// rateLimit throttles a route per client IP.
func rateLimit(limiter *ratelimit.Limiter, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !limiter.Allow(c.IP()) {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(window.Seconds())))
			return apperrors.NewRateLimited("too many submissions, please try again later")
		}
		return c.Next()
	}
}
