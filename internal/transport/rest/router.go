package rest

import (
	"database/sql"
	"log/slog"
	"strings"

	"github.com/frahmantamala/project-management/internal"
	"github.com/frahmantamala/project-management/internal/auth"
	"github.com/frahmantamala/project-management/internal/comment"
	"github.com/frahmantamala/project-management/internal/project"
	"github.com/frahmantamala/project-management/internal/task"
	"github.com/frahmantamala/project-management/internal/transport/middleware"
	"github.com/frahmantamala/project-management/internal/transport/swagger"
	"github.com/frahmantamala/project-management/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth           *auth.Handler
	User           *user.Handler
	Project        *project.Handler
	Task           *task.Handler
	ProjectComment *comment.Handler
	TaskComment    *comment.Handler
	RBAC           *auth.RBACAuthorization
}

// RouterOptions carries the server settings the router depends on.
type RouterOptions struct {
	AllowedOrigins string
	OpenAPIPath    string
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, opts RouterOptions, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)
	rbac := h.RBAC

	// Apply global middleware
	router.Use(middleware.CORS(splitOrigins(opts.AllowedOrigins)))
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", swagger.SpecHandler(opts.OpenAPIPath))
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/register", h.Auth.Register)
			sr.Post("/login", h.Auth.Login)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)
			pr.Use(middleware.ActorContext)

			pr.Route("/users", func(ur chi.Router) {
				ur.Get("/", h.User.ListUsers)
				ur.With(rbac.Middleware(internal.ActionCreate, internal.ResourceUser)).Post("/", h.User.CreateUser)
				ur.Get("/email/{email}", h.User.GetUserByEmail)
				ur.Get("/role/{role}", h.User.GetUsersByRole)
				ur.Get("/{id}", h.User.GetUser)
				ur.Put("/{id}", h.User.UpdateUser)
				ur.Patch("/{id}/password", h.User.UpdatePassword)
				ur.With(rbac.Middleware(internal.ActionDelete, internal.ResourceUser)).Delete("/{id}", h.User.DeleteUser)
			})

			pr.Route("/projects", func(pjr chi.Router) {
				pjr.Get("/", h.Project.GetAllProjects)
				pjr.With(rbac.Middleware(internal.ActionCreate, internal.ResourceProject)).Post("/", h.Project.AddProject)
				pjr.Get("/my-projects", h.Project.MyProjects)
				pjr.Get("/{id}", h.Project.GetProject)
				pjr.With(rbac.Middleware(internal.ActionUpdate, internal.ResourceProject)).Put("/{id}", h.Project.UpdateProject)
				pjr.With(rbac.Middleware(internal.ActionDelete, internal.ResourceProject)).Delete("/{id}", h.Project.DeleteProject)
				pjr.Get("/{id}/colleagues", h.User.GetProjectColleagues)
				pjr.Get("/{id}/tasks", h.Task.GetTasksByProject)
				pjr.Get("/{id}/comments", h.ProjectComment.ListByParent)
			})

			pr.Route("/tasks", func(tr chi.Router) {
				tr.Get("/", h.Task.GetAllTasks)
				tr.With(rbac.Middleware(internal.ActionCreate, internal.ResourceTask)).Post("/", h.Task.CreateTask)
				tr.Get("/my-tasks", h.Task.MyTasks)
				tr.Get("/{id}", h.Task.GetTask)
				tr.With(rbac.Middleware(internal.ActionUpdate, internal.ResourceTask)).Put("/{id}", h.Task.UpdateTask)
				tr.With(rbac.Middleware(internal.ActionDelete, internal.ResourceTask)).Delete("/{id}", h.Task.DeleteTask)
				tr.Get("/{id}/comments", h.TaskComment.ListByParent)
			})

			pr.Get("/employees/{id}/tasks", h.Task.GetTasksByEmployee)

			mountComments(pr, "/project-comments", h.ProjectComment)
			mountComments(pr, "/task-comments", h.TaskComment)
		})
	})
}

func mountComments(r chi.Router, prefix string, ch *comment.Handler) {
	r.Route(prefix, func(cr chi.Router) {
		cr.Post("/", ch.CreateComment)
		cr.Get("/my-comments", ch.MyComments)
		cr.Get("/{id}", ch.GetComment)
		cr.Put("/{id}", ch.UpdateComment)
		cr.Delete("/{id}", ch.DeleteComment)
	})
}

func splitOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{"*"}
	}
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
