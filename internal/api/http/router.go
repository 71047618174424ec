package http

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/status-portal/internal/api/http/handlers"
	"github.com/spec-kit/status-portal/internal/config"
	"github.com/spec-kit/status-portal/internal/ratelimit"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Messages  *handlers.MessagesHandler
	Status    *handlers.StatusHandler
	StaffGate fiber.Handler
	Limiter   *ratelimit.Limiter
	Metrics   http.Handler
	CORS      config.CORSConfig
}

// RegisterRoutes wires HTTP routes. Every path answers OPTIONS with 204 and
// any other unsupported method with 405.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	staff := cfg.StaffGate
	if staff == nil {
		staff = func(c *fiber.Ctx) error { return c.Next() }
	}

	app.Get("/health", cfg.Health.Live)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}

	app.Get("/messages", cfg.Messages.ListMessages)
	app.Post("/messages", rateLimit(cfg.Limiter, time.Minute), cfg.Messages.CreateMessage)
	app.Put("/messages/manage", staff, cfg.Messages.UpdateMessage)
	app.Delete("/messages/manage", staff, cfg.Messages.ArchiveMessage)

	app.Get("/status", cfg.Status.GetStatus)
	app.Post("/status-update", staff, cfg.Status.UpdateStatus)
	app.Post("/status-update/commit", staff, cfg.Status.ApplyCommit)

	allowed := map[string][]string{
		"/health":               {fiber.MethodGet},
		"/health/live":          {fiber.MethodGet},
		"/health/ready":         {fiber.MethodGet},
		"/messages":             {fiber.MethodGet, fiber.MethodPost},
		"/messages/manage":      {fiber.MethodPut, fiber.MethodDelete},
		"/status":               {fiber.MethodGet},
		"/status-update":        {fiber.MethodPost},
		"/status-update/commit": {fiber.MethodPost},
	}
	if cfg.Metrics != nil {
		allowed["/metrics"] = []string{fiber.MethodGet}
	}
	options := preflight(cfg.CORS)
	for path, methods := range allowed {
		app.Options(path, options)
		app.All(path, methodNotAllowed(append(methods, fiber.MethodOptions)...))
	}
}
