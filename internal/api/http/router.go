package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pardisbank/statement-registry/internal/api/http/handlers"
	"github.com/pardisbank/statement-registry/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Registrations  *handlers.RegistrationsHandler
	Branches       *handlers.BranchesHandler
	Issuers        *handlers.IssuersHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	api := app.Group("/api", cfg.AuthMiddleware.Handle)

	registrations := api.Group("/registrations")
	registrations.Get("/verify/:account", cfg.Registrations.Verify)
	registrations.Get("/stats", cfg.Registrations.Stats)
	registrations.Get("/:id/history", cfg.Registrations.History)
	registrations.Get("/", cfg.Registrations.List)
	registrations.Post("/bulk", cfg.Registrations.BulkImport)
	registrations.Post("/", cfg.Registrations.Submit)
	registrations.Put("/:id/issue", cfg.Registrations.MarkIssued)

	branches := api.Group("/branches")
	branches.Post("/", cfg.Branches.Create)
	branches.Get("/", cfg.Branches.List)
	branches.Delete("/:id", cfg.Branches.Delete)

	issuers := api.Group("/issuers")
	issuers.Get("/ad-users", cfg.Issuers.DirectoryUsers)
	issuers.Post("/", cfg.Issuers.Create)
	issuers.Get("/", cfg.Issuers.List)
	issuers.Delete("/:id", cfg.Issuers.Delete)
	issuers.Put("/:id/toggle-active", cfg.Issuers.ToggleActive)
}
