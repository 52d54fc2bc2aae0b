package middleware_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapshift/parcel-server/internal/handlers"
	"github.com/zapshift/parcel-server/internal/middleware"
	"github.com/zapshift/parcel-server/internal/testutil"
)

type roles map[string]string

func (r roles) RoleOf(_ context.Context, email string) (string, error) {
	if email == "broken@example.com" {
		return "", errors.New("store offline")
	}
	if role, ok := r[email]; ok {
		return role, nil
	}
	return "user", nil
}

func newApp() *fiber.App {
	log := logrus.New()
	log.SetOutput(io.Discard)

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler(log)})
	verifier := testutil.Verifier{
		"admin-token":  "admin@example.com",
		"user-token":   "user@example.com",
		"broken-token": "broken@example.com",
	}
	auth := middleware.AuthMiddleware(verifier, log)

	app.Get("/me", auth, func(c *fiber.Ctx) error {
		return c.SendString(middleware.CallerEmail(c))
	})
	app.Get("/admin", auth, middleware.AdminMiddleware(roles{"admin@example.com": "admin"}), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/open", middleware.AdminMiddleware(roles{}), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func get(t *testing.T, app *fiber.App, path, authorization string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set(fiber.HeaderAuthorization, authorization)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestAuthMiddleware(t *testing.T) {
	app := newApp()

	tests := []struct {
		name          string
		authorization string
		status        int
		body          string
	}{
		{"missing header", "", http.StatusUnauthorized, "missing token"},
		{"wrong scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, "invalid token format"},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, "invalid token format"},
		{"unknown token", "Bearer forged", http.StatusUnauthorized, "invalid token"},
		{"valid token", "Bearer user-token", http.StatusOK, "user@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := get(t, app, "/me", tt.authorization)
			assert.Equal(t, tt.status, status)
			assert.Contains(t, body, tt.body)
		})
	}
}

func TestAdminMiddleware(t *testing.T) {
	app := newApp()

	status, _ := get(t, app, "/admin", "Bearer admin-token")
	assert.Equal(t, http.StatusOK, status)

	status, body := get(t, app, "/admin", "Bearer user-token")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, body, "FORBIDDEN")

	status, _ = get(t, app, "/admin", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = get(t, app, "/admin", "Bearer broken-token")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.NotContains(t, body, "store offline")

	// without AuthMiddleware there is no caller
	status, _ = get(t, app, "/open", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}
