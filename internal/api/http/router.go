package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/api/http/handlers"
	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Workers        *handlers.WorkersHandler
	Admin          *handlers.AdminHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.AuthMiddleware

	// FilesRoot is served read-only under /files when set.
	FilesRoot string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	if cfg.FilesRoot != "" {
		app.Static("/files", cfg.FilesRoot, fiber.Static{Browse: false})
	}

	workers := app.Group("/workers")
	workers.Post("/otp", cfg.Workers.RequestOtp)
	workers.Post("/otp/verify", cfg.Workers.VerifyOtp)
	workers.Get("/username-available", cfg.Workers.UsernameAvailable)
	workers.Post("/", cfg.Workers.Register)
	workers.Post("/login", cfg.Workers.Login)
	workers.Post("/password/otp", cfg.Workers.RequestPasswordOtp)
	workers.Post("/password/otp/verify", cfg.Workers.VerifyPasswordOtp)
	workers.Post("/password", cfg.Workers.ChangePassword)

	admin := app.Group("/admin")
	admin.Post("/session", cfg.Admin.OpenSession)

	console := admin.Group("/workers", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	console.Get("/pending", cfg.Admin.ListPending)
	console.Get("/", cfg.Admin.ListAll)
	console.Post("/:username/status", cfg.Admin.SetStatus)

	tickets := app.Group("/tickets")
	tickets.Post("/", cfg.Tickets.RaiseIssue)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/feedback", cfg.Tickets.SubmitFeedback)
}
