package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/status-portal/internal/config"
	"github.com/spec-kit/status-portal/internal/observability"
)

// NewServer builds the fiber app with global middlewares attached.
func NewServer(cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
		ProxyHeader:           cfg.App.ProxyHeader,
		ErrorHandler:          ErrorHandler(logger, metrics),
	})
	RegisterMiddlewares(app, logger, metrics, cfg.CORS, cfg.App.RequestTimeout())
	return app
}
