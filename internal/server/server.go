// Package server assembles the HTTP application: middleware, error handling
// and the route table.
package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/zapshift/parcel-server/internal/handlers"
	"github.com/zapshift/parcel-server/internal/identity"
	"github.com/zapshift/parcel-server/internal/middleware"
	"github.com/zapshift/parcel-server/internal/services"
)

const livenessText = "zap is shifting shifting"

// Deps are the constructed services the routes are served by.
type Deps struct {
	Users       *services.UserService
	Parcels     *services.ParcelService
	Riders      *services.RiderService
	Payments    *services.PaymentService
	Coordinator *services.Coordinator
	Verifier    identity.Verifier
	CORSOrigins string
	Log         *logrus.Logger
}

func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "zap-shift",
		ErrorHandler:          handlers.ErrorHandler(d.Log),
		UnescapePath:          true,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		Output: d.Log.WriterLevel(logrus.InfoLevel),
	}))
	app.Use(cors.New(cors.Config{AllowOrigins: d.CORSOrigins}))

	registerRoutes(app, d)
	return app
}

func registerRoutes(app *fiber.App, d Deps) {
	users := handlers.NewUserHandler(d.Users)
	parcels := handlers.NewParcelHandler(d.Parcels, d.Coordinator)
	riders := handlers.NewRiderHandler(d.Riders, d.Coordinator)
	payments := handlers.NewPaymentHandler(d.Payments, d.Coordinator)

	auth := middleware.AuthMiddleware(d.Verifier, d.Log)
	admin := middleware.AdminMiddleware(d.Users)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(livenessText)
	})

	// Users
	app.Get("/users", users.Search)
	app.Get("/users/:email/role", users.Role)
	app.Post("/users", users.Register)
	app.Patch("/users/:id/role", auth, admin, users.ChangeRole)

	// Parcels
	app.Get("/parcels", parcels.List)
	app.Get("/parcels/:id", parcels.Get)
	app.Post("/parcels", parcels.Create)
	app.Delete("/parcels/:id", parcels.Delete)
	app.Patch("/parcels/:id", parcels.AssignRider)

	// Payments
	app.Post("/create-checkout-session", payments.CreateCheckoutSession)
	app.Patch("/payment-success", payments.PaymentSuccess)
	app.Get("/payments", auth, payments.List)
	app.Get("/payments/:transactionId/receipt", auth, payments.Receipt)

	// Riders
	app.Get("/riders", riders.List)
	app.Post("/riders", riders.Apply)
	app.Patch("/riders/:id", auth, admin, riders.Review)
}
