package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-service/internal/api/http/handlers"
	"github.com/spec-kit/maintenance-service/internal/auth"
	"github.com/spec-kit/maintenance-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Bids           *handlers.BidsHandler
	WorkOrders     *handlers.WorkOrdersHandler
	Invoices       *handlers.InvoicesHandler
	Schedule       *handlers.ScheduleHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/debug/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())

	tickets := protected.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/transition", cfg.Tickets.Transition)
	tickets.Get("/:id/history", cfg.Tickets.History)
	tickets.Post("/:id/assignee",
		auth.RequireRole(domain.RoleMaintenanceAdmin), cfg.Tickets.AssignTechnician)

	tickets.Post("/:id/bids",
		auth.RequireRole(domain.RoleMaintenanceAdmin), cfg.Bids.PlaceBid)
	tickets.Get("/:id/bids", cfg.Bids.ListBids)

	bids := protected.Group("/bids")
	bids.Patch("/:id",
		auth.RequireRole(domain.RoleMaintenanceAdmin), cfg.Bids.UpdateBid)
	bids.Post("/:id/resolve",
		auth.RequireRole(domain.RoleOrgAdmin, domain.RoleOrgSubadmin), cfg.Bids.ResolveBid)

	tickets.Post("/:id/work-orders",
		auth.RequireRole(domain.RoleTechnician), cfg.WorkOrders.Submit)
	tickets.Get("/:id/work-orders", cfg.WorkOrders.ListByTicket)

	invoices := protected.Group("/invoices")
	invoices.Post("", cfg.Invoices.Create)
	invoices.Get("", cfg.Invoices.List)
	invoices.Get("/:id", cfg.Invoices.Get)
	invoices.Post("/:id/send", cfg.Invoices.Send)
	invoices.Post("/:id/payments", cfg.Invoices.RecordPayment)

	protected.Get("/technicians/:id/time-slots", cfg.Schedule.TimeSlots)
	protected.Post("/calendar-events",
		auth.RequireRole(domain.RoleTechnician, domain.RoleMaintenanceAdmin), cfg.Schedule.CreateEvent)
}
