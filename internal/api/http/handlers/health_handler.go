package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/status-portal/internal/config"
	apperrors "github.com/spec-kit/status-portal/pkg/util/errorutil"
)

// Pinger checks that a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	app     config.AppConfig
	backend string
	storage Pinger
	timeout time.Duration
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(app config.AppConfig, backend string, storage Pinger) *HealthHandler {
	return &HealthHandler{app: app, backend: backend, storage: storage, timeout: 2 * time.Second}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":      "alive",
		"service":     h.app.Name,
		"version":     h.app.Version,
		"environment": h.app.Env,
		"backend":     h.backend,
	})
}

// Ready reports readiness by loading the document from the backend.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	if err := h.storage.Ping(ctx); err != nil {
		return apperrors.NewDependencyUnavailable(h.backend, err)
	}
	return c.JSON(fiber.Map{
		"status":       "ready",
		"dependencies": fiber.Map{h.backend: "ok"},
	})
}
