package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zetsuserv/support-portal/internal/api/http/handlers"
	"github.com/zetsuserv/support-portal/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Admin          *handlers.AdminHandler
	AdminTickets   *handlers.AdminTicketsHandler
	Knowledge      *handlers.KnowledgeHandler
	Broadcast      *handlers.BroadcastHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/users/register", cfg.Users.Register)
	authGroup.Post("/users/login", cfg.Users.Login)
	authGroup.Post("/admin/login", cfg.Admin.Login)
	authGroup.Post("/password/reset/request", cfg.Users.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Users.ConfirmPasswordReset)

	protectedAuth := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireUser())
	protectedAuth.Post("/password/change", cfg.Users.ChangePassword)

	app.Get("/knowledge", cfg.Knowledge.List)
	app.Post("/newsletter/subscribe", cfg.Broadcast.Subscribe)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireUser())
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/close", cfg.Tickets.CloseTicket)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Put("/availability", cfg.Admin.SetAvailability)
	admin.Get("/availability", cfg.Admin.GetAvailability)
	admin.Get("/tickets", cfg.AdminTickets.ListTickets)
	admin.Get("/tickets/:id", cfg.AdminTickets.GetTicket)
	admin.Post("/tickets/:id/reply", cfg.AdminTickets.Reply)
	admin.Patch("/tickets/:id/priority", cfg.AdminTickets.UpdatePriority)
	admin.Post("/broadcasts", cfg.Broadcast.Send)
	admin.Get("/knowledge/:id", cfg.Knowledge.Get)
	admin.Post("/knowledge", cfg.Knowledge.Create)
	admin.Put("/knowledge/:id", cfg.Knowledge.Update)
	admin.Delete("/knowledge/:id", cfg.Knowledge.Delete)
}
