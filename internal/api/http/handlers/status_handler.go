package handlers

import (
	"math"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/status-portal/internal/api/dto"
	"github.com/spec-kit/status-portal/internal/service"
	apperrors "github.com/spec-kit/status-portal/pkg/util/errorutil"
)

// StatusHandler serves the project status endpoints.
type StatusHandler struct {
	service *service.StatusService
}

// NewStatusHandler constructs handler.
func NewStatusHandler(statusService *service.StatusService) *StatusHandler {
	return &StatusHandler{service: statusService}
}

// GetStatus GET /status.
func (h *StatusHandler) GetStatus(c *fiber.Ctx) error {
	doc, err := h.service.GetStatus(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": dto.NewStatusView(doc)})
}

// UpdateStatus POST /status-update.
func (h *StatusHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.StatusUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	input := service.StatusUpdateInput{
		Phase:       req.Phase,
		Status:      req.Status,
		PhaseName:   req.PhaseName,
		ETA:         req.ETA,
		Scope:       req.Scope,
		Owner:       req.Owner,
		Client:      req.Client,
		Phases:      req.Phases,
		Updates:     req.Updates,
		NextActions: req.NextActions,
		Actor:       staffActor(c),
	}
	if req.Progress != nil {
		p := *req.Progress
		if p != math.Trunc(p) || p < 0 || p > 100 {
			return apperrors.NewFieldError("progress", "progress must be an integer between 0 and 100")
		}
		v := int(p)
		input.Progress = &v
	}

	doc, err := h.service.UpdateStatus(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": doc})
}

// ApplyCommit POST /status-update/commit.
func (h *StatusHandler) ApplyCommit(c *fiber.Ctx) error {
	var req dto.CommitRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.service.ApplyCommit(c.UserContext(), service.CommitInput{
		Message: req.Message,
		Hash:    req.Hash,
		Author:  req.Author,
		Actor:   staffActor(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.CommitResponse{
		Success: true,
		Parsed: dto.CommitInfo{
			Type:        result.Parsed.Type,
			Description: result.Parsed.Description,
			Phase:       result.Parsed.Phase,
			Progress:    result.Parsed.Progress,
		},
		Data: dto.NewStatusView(result.Document),
	})
}
