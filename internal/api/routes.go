package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/teamboard/internal/api/middleware"
	"github.com/phrazzld/teamboard/internal/domain"
)

// Handlers groups the handlers mounted under /api.
type Handlers struct {
	Auth          *AuthHandler
	Tasks         *TaskHandler
	Directory     *DirectoryHandler
	Notifications *NotificationHandler
	Reports       *ReportHandler
}

// RegisterRoutes mounts the dashboard API on r. Everything except sign-in
// and password reset requires a bearer token.
func RegisterRoutes(r chi.Router, h Handlers, authn *middleware.AuthMiddleware) {
	r.Get("/health", Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/forgot-password", h.Auth.ForgotPassword)
		r.Post("/auth/reset-password", h.Auth.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(authn.Authenticate)

			r.Post("/auth/logout", h.Auth.Logout)
			r.Post("/auth/change-password", h.Auth.ChangePassword)
			r.Get("/me", h.Directory.Me)

			r.Get("/board", h.Tasks.Board)
			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", h.Tasks.ListTasks)
				r.With(middleware.RequireRole(domain.RoleAdmin, domain.RoleManager)).Post("/", h.Tasks.CreateTask)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Tasks.GetTask)
					r.Patch("/", h.Tasks.UpdateTask)
					r.With(middleware.RequireRole(domain.RoleAdmin, domain.RoleManager)).Delete("/", h.Tasks.DeleteTask)
					r.Post("/move", h.Tasks.MoveTask)
					r.Get("/remarks", h.Tasks.ListRemarks)
					r.Post("/remarks", h.Tasks.AddRemark)
				})
			})

			r.Route("/employees", func(r chi.Router) {
				r.With(middleware.RequireRole(domain.RoleManager)).Get("/me", h.Directory.MyTeam)
				r.Get("/{id}", h.Directory.GetEmployee)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(domain.RoleAdmin))
					r.Get("/", h.Directory.ListEmployees)
					r.Post("/", h.Directory.CreateEmployee)
					r.Put("/{id}", h.Directory.UpdateEmployee)
					r.Delete("/{id}", h.Directory.DeleteEmployee)
				})
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleAdmin))
				r.Get("/", h.Directory.ListUsers)
				r.Post("/", h.Directory.CreateUser)
				r.Put("/{id}", h.Directory.UpdateUser)
				r.Delete("/{id}", h.Directory.DeleteUser)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notifications.List)
				r.Get("/unread-count", h.Notifications.UnreadCount)
				r.Get("/stream", h.Notifications.Stream)
				r.Post("/read-all", h.Notifications.MarkAllRead)
				r.Post("/{id}/read", h.Notifications.MarkRead)
			})

			r.Get("/analytics", h.Reports.Analytics)
			r.With(middleware.RequireRole(domain.RoleAdmin)).Get("/audit", h.Reports.Audit)
		})
	})
}
