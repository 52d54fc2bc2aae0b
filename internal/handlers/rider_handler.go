package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zapshift/parcel-server/internal/db"
	"github.com/zapshift/parcel-server/internal/services"
)

type RiderHandler struct {
	riders      *services.RiderService
	coordinator *services.Coordinator
}

func NewRiderHandler(riders *services.RiderService, coordinator *services.Coordinator) *RiderHandler {
	return &RiderHandler{riders: riders, coordinator: coordinator}
}

func (h *RiderHandler) List(c *fiber.Ctx) error {
	riders, err := h.riders.List(c.UserContext(), db.RiderFilter{
		Status:     c.Query("status"),
		District:   c.Query("district"),
		WorkStatus: c.Query("workStatus"),
	})
	if err != nil {
		return err
	}
	return c.JSON(riders)
}

func (h *RiderHandler) Apply(c *fiber.Ctx) error {
	var request services.RiderApplication
	if err := parseBody(c, &request); err != nil {
		return err
	}

	rider, err := h.riders.Apply(c.UserContext(), request)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"insertedId": rider.ID, "rider": rider})
}

// Review approves or rejects an application. Approval also gives the
// applicant's account the rider role.
func (h *RiderHandler) Review(c *fiber.Ctx) error {
	var request services.ReviewRiderInput
	if err := parseBody(c, &request); err != nil {
		return err
	}

	result, err := h.coordinator.ReviewRider(c.UserContext(), c.Params("id"), request)
	if err != nil {
		return err
	}
	return c.JSON(result)
}
