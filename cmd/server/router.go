package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/teamboard/internal/api"
	apiMiddleware "github.com/phrazzld/teamboard/internal/api/middleware"
)

// setupRouter creates the chi router with the standard middleware stack and
// every dashboard route registered.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))

	handlers := api.Handlers{
		Auth:          api.NewAuthHandler(app.authService, app.logger),
		Tasks:         api.NewTaskHandler(app.boardService, app.logger),
		Directory:     api.NewDirectoryHandler(app.directoryService, app.logger),
		Notifications: api.NewNotificationHandler(app.notificationService, app.hub, app.logger),
		Reports:       api.NewReportHandler(app.analyticsService, app.auditService, app.logger),
	}
	api.RegisterRoutes(r, handlers, apiMiddleware.NewAuthMiddleware(app.authService))

	return r
}
