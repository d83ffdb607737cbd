package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-engine/internal/api/http/handlers"
	"github.com/spec-kit/complaint-engine/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Complaints     *handlers.ComplaintsHandler
	Suggestions    *handlers.SuggestionsHandler
	Staff          *handlers.StaffHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Intake, tracking and voting are
// public; lifecycle transitions and review actions require a staff token.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/staff/login", cfg.Staff.Login)

	complaints := app.Group("/complaints")
	complaints.Post("", cfg.Complaints.CreateComplaint)
	complaints.Get("/:id", cfg.Complaints.GetComplaint)
	complaints.Get("", cfg.AuthMiddleware.Handle, auth.RequireStaffRole(), cfg.Complaints.ListComplaints)
	complaints.Post("/:id/transition", cfg.AuthMiddleware.Handle, auth.RequireStaffRole(), cfg.Complaints.Transition)

	suggestions := app.Group("/suggestions")
	suggestions.Post("", cfg.Suggestions.CreateSuggestion)
	suggestions.Get("", cfg.Suggestions.ListSuggestions)
	suggestions.Get("/:id", cfg.Suggestions.GetSuggestion)
	suggestions.Post("/:id/votes", cfg.Suggestions.CastVote)
	suggestions.Post("/:id/voting/open", cfg.AuthMiddleware.Handle, auth.RequireStaffRole(), cfg.Suggestions.OpenVoting)
	suggestions.Post("/:id/voting/close", cfg.AuthMiddleware.Handle, auth.RequireStaffRole(), cfg.Suggestions.CloseVoting)
}
