package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/issue-tracker/internal/api/http/handlers"
	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Projects       *handlers.ProjectsHandler
	Issues         *handlers.IssuesHandler
	Comments       *handlers.CommentsHandler
	Audit          *handlers.AuditHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
	MetricsPath    string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
	}
	if cfg.MetricsPath != "" {
		app.Get(cfg.MetricsPath, adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	adminOnly := auth.RequireAdmin()
	authed := cfg.AuthMiddleware.Handle

	app.Post("/users/login", cfg.Users.Login)
	users := app.Group("/users", authed)
	users.Post("/logout", cfg.Users.Logout)
	users.Get("/", cfg.Users.ListUsers)
	users.Get("/projects/:projectId/users", cfg.Users.ListProjectUsers)
	users.Get("/:id", cfg.Users.GetUser)
	users.Get("/:id/projects", cfg.Users.ListUserProjects)

	projects := app.Group("/projects", authed)
	projects.Post("/", adminOnly, cfg.Projects.CreateProject)
	projects.Get("/", cfg.Projects.ListProjects)
	projects.Get("/:id", cfg.Projects.GetProject)
	projects.Put("/:id", adminOnly, cfg.Projects.UpdateProject)
	projects.Delete("/:id", adminOnly, cfg.Projects.DeleteProject)
	projects.Post("/:id/assign/:userId", adminOnly, cfg.Projects.AssignUser)

	issues := app.Group("/issues", authed)
	issues.Post("/", cfg.Issues.CreateIssue)
	issues.Get("/", cfg.Issues.ListIssues)
	issues.Get("/project/:projectId", cfg.Issues.ListByProject)
	issues.Get("/user/:userId", cfg.Issues.ListByUser)
	issues.Get("/assigned/:developerId", cfg.Issues.ListAssigned)
	issues.Get("/:id", cfg.Issues.GetIssue)
	issues.Put("/:id", cfg.Issues.UpdateIssue)
	issues.Put("/:id/status", cfg.Issues.UpdateIssueStatus)
	issues.Get("/:id/history", cfg.Issues.GetIssueHistory)
	issues.Post("/:id/comments", cfg.Comments.CreateComment)
	issues.Get("/:id/comments", cfg.Comments.ListComments)
	issues.Get("/:id/comments/:commentId", cfg.Comments.GetComment)
	issues.Put("/:id/comments/:commentId", cfg.Comments.UpdateComment)
	issues.Delete("/:id/comments/:commentId", cfg.Comments.DeleteComment)

	audit := app.Group("/audit", authed, adminOnly)
	audit.Get("/", cfg.Audit.ListAll)
	audit.Get("/entity/:entityType", cfg.Audit.ListByEntityType)
	audit.Get("/actor/:actorId", cfg.Audit.ListByActor)
}
