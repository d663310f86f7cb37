package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/http/handlers"
	"github.com/spec-kit/grievance-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Grievances     *handlers.GrievancesHandler
	Admin          *handlers.AdminHandler
	Webhook        *handlers.WebhookHandler
	Uploads        *handlers.UploadsHandler
	AuthMiddleware *auth.AuthMiddleware
	UploadDir      string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/otp/send", cfg.Auth.SendOTP)
	authGroup.Post("/otp/verify", cfg.Auth.VerifyOTP)
	authGroup.Post("/admin/login", cfg.Admin.Login)

	// Inbound channel callbacks are authenticated by webhook secret,
	// not by bearer token.
	app.Post("/notifications/inbound", cfg.Webhook.Inbound)

	if cfg.UploadDir != "" {
		app.Static("/uploads", cfg.UploadDir)
	}

	app.Post("/uploads", cfg.AuthMiddleware.Handle, auth.RequireMember(), cfg.Uploads.UploadImage)

	member := app.Group("/grievances", cfg.AuthMiddleware.Handle)
	member.Post("", auth.RequireMember(), cfg.Grievances.Submit)
	member.Get("", auth.RequireMember(), cfg.Grievances.List)
	member.Get("/:ticket_number", auth.RequireMember(), cfg.Grievances.Get)
	member.Patch("/:ticket_number", auth.RequireAdmin(), cfg.Admin.UpdateStatus)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/grievances", cfg.Admin.List)
}
