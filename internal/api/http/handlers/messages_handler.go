package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/status-portal/internal/api/dto"
	"github.com/spec-kit/status-portal/internal/service"
	apperrors "github.com/spec-kit/status-portal/pkg/util/errorutil"
)

// MessagesHandler serves the client message endpoints.
type MessagesHandler struct {
	service *service.MessageService
}

// NewMessagesHandler constructs handler.
func NewMessagesHandler(messageService *service.MessageService) *MessagesHandler {
	return &MessagesHandler{service: messageService}
}

// ListMessages GET /messages.
func (h *MessagesHandler) ListMessages(c *fiber.Ctx) error {
	query, err := parseMessageListQuery(c)
	if err != nil {
		return err
	}
	page, err := h.service.ListMessages(c.UserContext(), service.MessageFilter{
		Status:   query.Status,
		Priority: query.Priority,
		Category: query.Category,
		Limit:    query.Limit,
		Offset:   query.Offset,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.MessageListResponse{
		Success:  true,
		Messages: page.Items,
		Count:    len(page.Items),
		Pagination: dto.Pagination{
			Total:   page.Total,
			Limit:   page.Limit,
			Offset:  page.Offset,
			HasMore: page.HasMore(),
		},
		LastUpdated: page.LastUpdated,
		Degraded:    page.Degraded,
	})
}

// CreateMessage POST /messages.
func (h *MessagesHandler) CreateMessage(c *fiber.Ctx) error {
	var req dto.CreateMessageRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	msg, err := h.service.CreateMessage(c.UserContext(), service.MessageCreateInput{
		Name:     req.Name,
		Text:     req.Text,
		Email:    req.Email,
		Priority: req.Priority,
		Category: req.Category,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MessageResponse{Success: true, Data: *msg})
}

// UpdateMessage PUT /messages/manage.
func (h *MessagesHandler) UpdateMessage(c *fiber.Ctx) error {
	var req dto.ManageMessageRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.TargetID()) == "" {
		return apperrors.NewFieldError("id", "message id is required")
	}
	if strings.TrimSpace(req.Action) == "" {
		return apperrors.NewFieldError("action", "action is required")
	}
	msg, err := h.service.UpdateMessage(c.UserContext(), req.TargetID(), service.MessageUpdateInput{
		Action:       service.MessageAction(strings.TrimSpace(req.Action)),
		ResponseText: req.ResponseText,
		Responder:    req.Responder,
		Actor:        staffActor(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Success: true, Data: *msg})
}

// ArchiveMessage DELETE /messages/manage.
func (h *MessagesHandler) ArchiveMessage(c *fiber.Ctx) error {
	var req dto.ManageMessageRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.TargetID()) == "" {
		return apperrors.NewFieldError("id", "message id is required")
	}
	if _, err := h.service.ArchiveMessage(c.UserContext(), req.TargetID(), staffActor(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func parseMessageListQuery(c *fiber.Ctx) (dto.MessageListQuery, error) {
	query := dto.MessageListQuery{
		Status:   strings.TrimSpace(c.Query("status")),
		Priority: strings.TrimSpace(c.Query("priority")),
		Category: strings.TrimSpace(c.Query("category")),
	}
	var err error
	if query.Limit, err = queryInt(c, "limit"); err != nil {
		return query, err
	}
	if query.Offset, err = queryInt(c, "offset"); err != nil {
		return query, err
	}
	return query, nil
}
