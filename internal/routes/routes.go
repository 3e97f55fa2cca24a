// Package routes defines the API routing configuration.
// Provider callbacks are public; merchant-facing endpoints sit behind the
// API client auth middleware.
package routes

import (
	"time"

	"mpesagw/internal/handlers"
	"mpesagw/internal/middleware"
	"mpesagw/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth     *middleware.AuthMiddleware
	STK      *handlers.STKHandler
	B2C      *handlers.B2CHandler
	C2B      *handlers.C2BHandler
	Callback *handlers.CallbackHandler
	Fetch    *handlers.FetchHandler
	Health   *handlers.HealthHandler
}

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, h Handlers) {
	app.Get("/health", h.Health.HealthCheck)

	api := app.Group("/api")
	setupCallbackRoutes(api, h.Callback)

	protected := api.Group("", h.Auth.Handler)
	setupPaymentRoutes(protected, h)
	setupFetchRoutes(protected, h.Auth, h.Fetch)
}

// setupCallbackRoutes mounts the URLs registered with Daraja.
func setupCallbackRoutes(api fiber.Router, h *handlers.CallbackHandler) {
	api.Post("/mpesa/stk/callback", h.STKCallback)
	api.Post("/payments/confirmation/callback", h.C2BConfirmation)
	api.Post("/payments/validation/callback", h.C2BValidation)
	api.Post("/b2c/results", h.B2CResult)
	api.Post("/b2c/timeout", h.B2CTimeout)
}

func setupPaymentRoutes(router fiber.Router, h Handlers) {
	initiateLimit := middleware.RateLimit(30, time.Minute)

	router.Post("/mpesa/stk/initiate", initiateLimit, h.Auth.HasPermission(models.PermissionPaymentsWrite), h.STK.Initiate)
	router.Post("/mpesa/b2c", initiateLimit, h.Auth.HasPermission(models.PermissionPayoutsWrite), h.B2C.Initiate)
	router.Post("/mpesa/callback/register", h.Auth.HasPermission(models.PermissionC2BAdmin), h.C2B.RegisterURLs)
}

func setupFetchRoutes(router fiber.Router, auth *middleware.AuthMiddleware, h *handlers.FetchHandler) {
	read := auth.HasPermission(models.PermissionPaymentsRead)

	router.Get("/mpesa/payments/stk", read, h.STKPayments)
	router.Get("/mpesa/payments/c2b", read, h.C2BPayments)
	router.Post("/mpesa/customerTransactions", read, h.CustomerTransactions)
	router.Get("/mpesa/getAllTransactions", read, h.AllTransactions)
	router.Post("/mpesa/confirmTransactions", read, h.ConfirmTransaction)
	router.Post("/b2c/status", read, h.B2CStatus)
}
