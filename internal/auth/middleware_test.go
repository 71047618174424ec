package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/status-portal/internal/config"
	apperrors "github.com/spec-kit/status-portal/pkg/util/errorutil"
)

func newGatedApp(cfg config.AuthConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).SendString(domainErr.Code)
		},
	})
	app.Get("/staff", StaffGate(cfg), func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return c.SendString("anonymous")
		}
		return c.SendString(principal.Email)
	})
	return app
}

func TestStaffGate(t *testing.T) {
	cfg := config.AuthConfig{JWTSecret: "secret", AccessTokenTTLMinutes: 5, AllowedEmails: []string{"PM@example.com"}}
	tokens := NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes)

	allowed, _, err := tokens.GenerateToken("pm@example.com", "Pat")
	require.NoError(t, err)
	outsider, _, err := tokens.GenerateToken("someone@example.com", "")
	require.NoError(t, err)
	foreign, _, err := NewTokenManager("other", 5).GenerateToken("pm@example.com", "")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "missing header", status: 401, body: apperrors.CodeUnauthorized},
		{name: "wrong scheme", header: "Basic abc", status: 401, body: apperrors.CodeUnauthorized},
		{name: "bad signature", header: "Bearer " + foreign, status: 401, body: apperrors.CodeUnauthorized},
		{name: "not allow-listed", header: "Bearer " + outsider, status: 403, body: apperrors.CodeForbidden},
		{name: "allowed", header: "Bearer " + allowed, status: 200, body: "pm@example.com"},
	}

	app := newGatedApp(cfg)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/staff", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			body := make([]byte, 64)
			n, _ := resp.Body.Read(body)
			assert.Equal(t, tt.body, string(body[:n]))
		})
	}
}

func TestStaffGate_DisabledWithoutSecret(t *testing.T) {
	app := newGatedApp(config.AuthConfig{})
	resp, err := app.Test(httptest.NewRequest("GET", "/staff", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 0)
	token, expiresAt, err := tm.GenerateToken("  Dev@Example.com ", "Dev")
	require.NoError(t, err)
	assert.False(t, expiresAt.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "dev@example.com", claims.Email)
	assert.Equal(t, "Dev", claims.Name)

	_, _, err = tm.GenerateToken(" ", "")
	assert.Error(t, err)
}

func TestAllowList(t *testing.T) {
	list := NewAllowList([]string{" A@x.io ", ""})
	assert.True(t, list.Contains("a@X.io"))
	assert.False(t, list.Contains(""))
	assert.Len(t, list, 1)
}
