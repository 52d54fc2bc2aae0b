package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/zapshift/parcel-server/internal/apperr"
	"github.com/zapshift/parcel-server/internal/models"
)

// RoleLookup resolves the stored role of an account.
type RoleLookup interface {
	RoleOf(ctx context.Context, email string) (string, error)
}

// AdminMiddleware lets through only callers whose stored role is admin. It
// must run after AuthMiddleware.
func AdminMiddleware(roles RoleLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email := CallerEmail(c)
		if email == "" {
			return apperr.ErrUnauthorized
		}

		role, err := roles.RoleOf(c.UserContext(), email)
		if err != nil {
			return err
		}
		if role != models.RoleAdmin {
			return apperr.WithDetails(apperr.ErrForbidden, "admins only")
		}
		return c.Next()
	}
}
