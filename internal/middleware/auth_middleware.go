package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/zapshift/parcel-server/internal/apperr"
	"github.com/zapshift/parcel-server/internal/identity"
)

// emailKey is the c.Locals key holding the verified caller email.
const emailKey = "email"

// AuthMiddleware verifies the bearer token and stores the caller email for
// the handlers that follow.
func AuthMiddleware(verifier identity.Verifier, log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return apperr.WithDetails(apperr.ErrUnauthorized, "missing token")
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		tokenString = strings.TrimSpace(tokenString)
		if !ok || tokenString == "" {
			return apperr.WithDetails(apperr.ErrUnauthorized, "invalid token format")
		}

		id, err := verifier.Verify(c.UserContext(), tokenString)
		if err != nil {
			log.WithError(err).WithField("path", c.Path()).Debug("token rejected")
			return apperr.WithDetails(apperr.ErrUnauthorized, "invalid token")
		}

		c.Locals(emailKey, id.Email)
		return c.Next()
	}
}

// CallerEmail returns the email stored by AuthMiddleware, or "" on routes
// that are not protected.
func CallerEmail(c *fiber.Ctx) string {
	email, _ := c.Locals(emailKey).(string)
	return email
}
