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
	Organizations  *handlers.OrganizationsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/users/me", cfg.Users.Me)
	protected.Put("/users/me", cfg.Users.UpdateMe)

	tickets := protected.Group("/tickets")
	tickets.Post("", cfg.Tickets.Create)
	tickets.Get("", cfg.Tickets.Search)
	tickets.Get("/uid/:uid", cfg.Tickets.GetByUID)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Post("/:id/assignee", cfg.Tickets.Assign)
	tickets.Post("/:id/approve", cfg.Tickets.Approve)
	tickets.Post("/:id/messages", cfg.Tickets.PostAnswer)
	tickets.Post("/:id/solution", cfg.Tickets.PostSolution)
	tickets.Post("/:id/solution/approve", cfg.Tickets.ApproveSolution)
	tickets.Post("/:id/solution/refuse", cfg.Tickets.RefuseSolution)
	tickets.Put("/:id/observers/me", cfg.Tickets.AddObserver)
	tickets.Delete("/:id/observers/me", cfg.Tickets.RemoveObserver)
	tickets.Post("/:id/time", cfg.Tickets.RecordTime)
	tickets.Get("/:id/time", cfg.Tickets.ListTime)

	orgs := protected.Group("/organizations")
	orgs.Post("", cfg.Organizations.Create)
	orgs.Get("", cfg.Organizations.List)
	orgs.Get("/:id/tickets", cfg.Organizations.ListTickets)
	orgs.Get("/:id/contracts", cfg.Organizations.ListContracts)
	orgs.Post("/:id/contracts", cfg.Organizations.CreateContract)

	protected.Post("/teams", cfg.Organizations.CreateTeam)
	protected.Get("/teams", cfg.Organizations.ListTeams)
	protected.Put("/teams/:id", cfg.Organizations.UpdateTeam)
	protected.Post("/labels", cfg.Organizations.CreateLabel)
	protected.Get("/labels", cfg.Organizations.ListLabels)
}
