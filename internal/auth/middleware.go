package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/status-portal/internal/config"
	"github.com/spec-kit/status-portal/internal/domain"
	apperrors "github.com/spec-kit/status-portal/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// StaffMiddleware validates bearer tokens against the staff allow-list.
type StaffMiddleware struct {
	tokens  *TokenManager
	allowed AllowList
}

// NewStaffMiddleware constructs middleware.
func NewStaffMiddleware(tokens *TokenManager, allowed AllowList) *StaffMiddleware {
	return &StaffMiddleware{tokens: tokens, allowed: allowed}
}

// StaffGate returns the handler guarding staff routes. Without a signing
// secret the routes stay open.
func StaffGate(cfg config.AuthConfig) fiber.Handler {
	if !cfg.Enabled() {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	m := NewStaffMiddleware(NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes), NewAllowList(cfg.AllowedEmails))
	return m.Handle
}

// Handle enforces authentication for protected routes.
func (m *StaffMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}
	if !m.allowed.Contains(claims.Email) {
		return apperrors.NewForbidden("staff access required")
	}

	c.Locals(principalKey, &domain.StaffPrincipal{Email: claims.Email, Name: claims.Name})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated staff member.
func PrincipalFromContext(c *fiber.Ctx) (*domain.StaffPrincipal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*domain.StaffPrincipal)
	return principal, ok
}
