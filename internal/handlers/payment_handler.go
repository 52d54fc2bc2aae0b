package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zapshift/parcel-server/internal/middleware"
	"github.com/zapshift/parcel-server/internal/services"
)

type PaymentHandler struct {
	payments    *services.PaymentService
	coordinator *services.Coordinator
}

func NewPaymentHandler(payments *services.PaymentService, coordinator *services.Coordinator) *PaymentHandler {
	return &PaymentHandler{payments: payments, coordinator: coordinator}
}

func (h *PaymentHandler) CreateCheckoutSession(c *fiber.Ctx) error {
	var request services.CheckoutInput
	if err := parseBody(c, &request); err != nil {
		return err
	}

	session, err := h.payments.CreateCheckoutSession(c.UserContext(), request)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"url": session.URL, "sessionId": session.ID})
}

// PaymentSuccess is called by the client after the provider redirects back
// with ?session_id. Repeated calls for the same payment are harmless.
func (h *PaymentHandler) PaymentSuccess(c *fiber.Ctx) error {
	outcome, err := h.coordinator.CompletePayment(c.UserContext(), c.Query("session_id"))
	if err != nil {
		return err
	}
	return c.JSON(outcome)
}

// List returns the caller's payment history.
func (h *PaymentHandler) List(c *fiber.Ctx) error {
	payments, err := h.payments.ListForCaller(c.UserContext(), middleware.CallerEmail(c), c.Query("email"))
	if err != nil {
		return err
	}
	return c.JSON(payments)
}

func (h *PaymentHandler) Receipt(c *fiber.Ctx) error {
	url, err := h.payments.ReceiptURL(c.UserContext(), middleware.CallerEmail(c), c.Params("transactionId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"url": url})
}
