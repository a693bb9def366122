package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/teamboard/internal/backend"
	"github.com/phrazzld/teamboard/internal/backend/memory"
	"github.com/phrazzld/teamboard/internal/backend/rest"
	"github.com/phrazzld/teamboard/internal/config"
	"github.com/phrazzld/teamboard/internal/events"
	"github.com/phrazzld/teamboard/internal/jobs"
	"github.com/phrazzld/teamboard/internal/notify"
	platmem "github.com/phrazzld/teamboard/internal/platform/memory"
	"github.com/phrazzld/teamboard/internal/platform/postgres"
	"github.com/phrazzld/teamboard/internal/service"
	"github.com/phrazzld/teamboard/internal/service/auth"
	"github.com/phrazzld/teamboard/internal/store"
)

// application holds the shared dependencies so they can be wired once and
// released together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	backend backend.Backend

	notificationStore store.NotificationStore
	auditStore        store.AuditStore

	jwtService auth.JWTService

	boardService        service.BoardService
	directoryService    service.DirectoryService
	authService         service.AuthService
	analyticsService    service.AnalyticsService
	auditService        service.AuditService
	notificationService service.NotificationService

	eventEmitter *events.InMemoryEventEmitter
	jobRunner    *jobs.Runner
	hub          *notify.Hub
}

// newApplication wires every component. db may be nil, in which case
// notifications and audit entries are kept in memory.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.backend, err = newBackend(cfg, app.jwtService, logger)
	if err != nil {
		return nil, err
	}

	if db != nil {
		app.notificationStore = postgres.NewPostgresNotificationStore(db, logger)
		app.auditStore = postgres.NewPostgresAuditStore(db, logger)
	} else {
		app.notificationStore = platmem.NewNotificationStore()
		app.auditStore = platmem.NewAuditStore()
	}

	app.jobRunner = jobs.NewRunner(jobs.Config{
		WorkerCount: cfg.Jobs.WorkerCount,
		QueueSize:   cfg.Jobs.QueueSize,
		JobTimeout:  30 * time.Second,
	}, logger)
	app.jobRunner.Start()

	app.hub = notify.NewHub(logger)
	app.hub.SetKeepAlive(time.Duration(cfg.Notifications.KeepAliveSeconds) * time.Second)
	app.eventEmitter = events.NewInMemoryEventEmitter(logger, app.jobRunner)
	app.eventEmitter.RegisterHandler(events.NewAuditHandler(app.auditStore, logger))

	app.notificationService, err = service.NewNotificationService(app.notificationStore, db, app.hub, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification service: %w", err)
	}
	app.eventEmitter.RegisterHandler(app.notificationService)

	app.boardService, err = service.NewBoardService(app.backend, app.eventEmitter, cfg.Board, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create board service: %w", err)
	}
	app.directoryService, err = service.NewDirectoryService(app.backend, app.eventEmitter, cfg.Board, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory service: %w", err)
	}
	app.authService, err = service.NewAuthService(app.backend, app.jwtService, app.boardService, app.eventEmitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth service: %w", err)
	}
	app.analyticsService, err = service.NewAnalyticsService(app.boardService, app.backend, cfg.Board, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create analytics service: %w", err)
	}
	app.auditService, err = service.NewAuditService(app.auditStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit service: %w", err)
	}

	logger.Info("Application initialized successfully", "backend_mode", cfg.Backend.Mode)
	return app, nil
}

// newBackend returns the upstream REST client, or the seeded in-process
// backend in memory mode.
func newBackend(cfg *config.Config, jwtService auth.JWTService, logger *slog.Logger) (backend.Backend, error) {
	switch cfg.Backend.Mode {
	case config.BackendMemory:
		var (
			seed *memory.Seed
			err  error
		)
		if cfg.Backend.SeedFile != "" {
			seed, err = memory.LoadSeed(cfg.Backend.SeedFile)
		} else {
			seed, err = memory.DefaultSeed()
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load seed data: %w", err)
		}
		b, err := memory.New(seed, memory.Options{
			JWT:             jwtService,
			Passwords:       auth.NewBcryptVerifier(cfg.Auth.BcryptCost),
			DefaultPassword: cfg.Board.DefaultPassword,
			Logger:          logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create memory backend: %w", err)
		}
		logger.Warn("Using in-memory backend; data is lost on restart",
			"seed_file", cfg.Backend.SeedFile)
		return b, nil
	default:
		c, err := rest.New(cfg.Backend, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create backend client: %w", err)
		}
		logger.Info("Backend client initialized", "base_url", cfg.Backend.BaseURL)
		return c, nil
	}
}

// Run serves HTTP until ctx is canceled, then shuts down gracefully.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()
	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases the job runner and the database connection.
func (app *application) cleanup(ctx context.Context) {
	if app.jobRunner != nil {
		if err := app.jobRunner.Stop(ctx); err != nil {
			app.logger.Error("Error stopping job runner", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}
	app.logger.Info("Application shutdown completed")
}
