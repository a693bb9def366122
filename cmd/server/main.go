// Package main is the entry point for the teamboard API server, which fronts
// the employee and task backend with role checks, a kanban board,
// notifications and analytics.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

func main() {
	migrate := flag.String("migrate", "", "run a database migration command (up, down, status, version, reset, redo, up-by-one) and exit")
	migrateArgs := flag.String("migrate-args", "", "space separated arguments for the migration command")
	flag.Parse()

	if err := run(*migrate, strings.Fields(*migrateArgs)); err != nil {
		slog.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

func run(migrateCommand string, migrateArgs []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}
	logger, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}
	logAppConfig(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if migrateCommand != "" {
		return runMigrations(ctx, cfg, migrateCommand, migrateArgs...)
	}

	var db *sql.DB
	if cfg.Database.URL != "" {
		db, err = setupAppDatabase(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to set up database: %w", err)
		}
	}

	app, err := newApplication(cfg, logger, db)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}
