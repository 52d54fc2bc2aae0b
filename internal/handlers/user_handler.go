package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zapshift/parcel-server/internal/services"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Search lists the newest users matching ?searchText.
func (h *UserHandler) Search(c *fiber.Ctx) error {
	users, err := h.users.Search(c.UserContext(), c.Query("searchText"))
	if err != nil {
		return err
	}
	return c.JSON(users)
}

func (h *UserHandler) Role(c *fiber.Ctx) error {
	role, err := h.users.RoleOf(c.UserContext(), c.Params("email"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"role": role})
}

// Register creates the account on first sign-in. Registering a known email
// is not an error.
func (h *UserHandler) Register(c *fiber.Ctx) error {
	var request services.RegisterInput
	if err := parseBody(c, &request); err != nil {
		return err
	}

	user, created, err := h.users.Register(c.UserContext(), request)
	if err != nil {
		return err
	}
	if !created {
		return c.JSON(fiber.Map{"message": "User already exists", "user": user})
	}
	return c.JSON(fiber.Map{
		"message":    "User registered successfully",
		"insertedId": user.ID,
		"user":       user,
	})
}

func (h *UserHandler) ChangeRole(c *fiber.Ctx) error {
	var request struct {
		Role string `json:"role" validate:"required"`
	}
	if err := parseBody(c, &request); err != nil {
		return err
	}

	result, err := h.users.ChangeRole(c.UserContext(), c.Params("id"), request.Role)
	if err != nil {
		return err
	}
	return c.JSON(result)
}
