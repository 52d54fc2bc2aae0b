package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zapshift/parcel-server/internal/db"
	"github.com/zapshift/parcel-server/internal/services"
)

type ParcelHandler struct {
	parcels     *services.ParcelService
	coordinator *services.Coordinator
}

func NewParcelHandler(parcels *services.ParcelService, coordinator *services.Coordinator) *ParcelHandler {
	return &ParcelHandler{parcels: parcels, coordinator: coordinator}
}

// List filters by ?email and ?deliveryStatus, newest first.
func (h *ParcelHandler) List(c *fiber.Ctx) error {
	parcels, err := h.parcels.List(c.UserContext(), db.ParcelFilter{
		SenderEmail:    c.Query("email"),
		DeliveryStatus: c.Query("deliveryStatus"),
	})
	if err != nil {
		return err
	}
	return c.JSON(parcels)
}

func (h *ParcelHandler) Get(c *fiber.Ctx) error {
	parcel, err := h.parcels.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(parcel)
}

func (h *ParcelHandler) Create(c *fiber.Ctx) error {
	var request services.CreateParcelInput
	if err := parseBody(c, &request); err != nil {
		return err
	}

	parcel, err := h.parcels.Create(c.UserContext(), request)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"insertedId": parcel.ID, "parcel": parcel})
}

func (h *ParcelHandler) Delete(c *fiber.Ctx) error {
	result, err := h.parcels.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// AssignRider hands the parcel to a rider and responds with the rider
// update result.
func (h *ParcelHandler) AssignRider(c *fiber.Ctx) error {
	var request services.AssignRiderInput
	if err := parseBody(c, &request); err != nil {
		return err
	}

	result, err := h.coordinator.AssignRider(c.UserContext(), c.Params("id"), request)
	if err != nil {
		return err
	}
	return c.JSON(result)
}
