package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapshift/parcel-server/internal/apperr"
)

func TestErrorHandler(t *testing.T) {
	log, hook := test.NewNullLogger()
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(log)})

	app.Get("/app", func(c *fiber.Ctx) error {
		return errors.Wrap(apperr.WithDetails(apperr.ErrNotFound, "parcel 42"), "get parcel")
	})
	app.Get("/fiber", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "too big")
	})
	app.Get("/raw", func(c *fiber.Ctx) error {
		return errors.New("socket closed")
	})

	tests := []struct {
		path   string
		status int
		want   ErrorResponse
	}{
		{"/app", http.StatusNotFound, ErrorResponse{Code: "NOT_FOUND", Message: "Resource not found", Details: "parcel 42"}},
		{"/fiber", http.StatusRequestEntityTooLarge, ErrorResponse{Code: "REQUEST_ENTITY_TOO_LARGE", Message: "too big"}},
		{"/raw", http.StatusInternalServerError, ErrorResponse{Code: "INTERNAL_ERROR", Message: "Internal server error"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			var got ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.want, got)
		})
	}

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "/raw", hook.LastEntry().Data["path"])
}

func TestParseBody(t *testing.T) {
	type request struct {
		Email string  `json:"email" validate:"required,email"`
		Cost  float64 `json:"cost" validate:"gt=0"`
	}

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logrus.New())})
	app.Post("/", func(c *fiber.Ctx) error {
		var r request
		if err := parseBody(c, &r); err != nil {
			return err
		}
		return c.JSON(r)
	})

	post := func(body string) (int, string) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(data)
	}

	status, body := post(`{"email":"a@b.co","cost":3}`)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"email":"a@b.co","cost":3}`, body)

	status, body = post(`{"email":"nope","cost":0}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "email: email")
	assert.Contains(t, body, "cost: gt=0")

	status, _ = post(`[`)
	assert.Equal(t, http.StatusBadRequest, status)
}
