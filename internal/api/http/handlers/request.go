package handlers

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/status-portal/internal/auth"
	"github.com/spec-kit/status-portal/internal/events"
	apperrors "github.com/spec-kit/status-portal/pkg/util/errorutil"
)

// parseBody decodes a JSON body, naming the offending field on type errors.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return apperrors.NewValidationError("request body required", nil)
	}
	if err := c.BodyParser(out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return apperrors.NewFieldError(typeErr.Field, "invalid type for "+typeErr.Field)
		}
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

func queryInt(c *fiber.Ctx, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperrors.NewFieldError(key, key+" must be a non-negative integer")
	}
	return v, nil
}

// staffActor identifies the caller of a staff route, if authenticated.
func staffActor(c *fiber.Ctx) events.Actor {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return events.Actor{}
	}
	return events.Actor{Email: principal.Email, Name: principal.Name}
}
