package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/user", cfg.Users.Register)
	app.Post("/auth/login", cfg.Users.Login)
	app.Get("/user/:id", cfg.Users.GetUser)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Patch("/user/:id", cfg.Users.UpdateUser)
	protected.Delete("/user/:id", cfg.Users.DeleteUser)

	protected.Post("/ticket", cfg.Tickets.CreateTicket)
	protected.Get("/ticket", cfg.Tickets.ListTickets)
	protected.Get("/ticket/:id", cfg.Tickets.GetTicket)
}
