package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/teamboard/internal/config"
	"github.com/phrazzld/teamboard/internal/platform/postgres"
	"github.com/pressly/goose/v3"
)

// migrationsDir is the directory inside postgres.Migrations holding the SQL
// files.
const migrationsDir = "migrations"

// supportedMigrationCommands lists the goose commands the -migrate flag
// accepts.
var supportedMigrationCommands = map[string]bool{
	"up":        true,
	"up-by-one": true,
	"down":      true,
	"reset":     true,
	"status":    true,
	"version":   true,
	"redo":      true,
}

// runMigrations applies a goose command to the dashboard database using the
// migrations embedded in the binary.
func runMigrations(ctx context.Context, cfg *config.Config, command string, args ...string) error {
	if !supportedMigrationCommands[command] {
		return fmt.Errorf("unsupported migration command %q", command)
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("database URL is empty: set %s_DATABASE_URL or database.url", config.EnvPrefix)
	}

	migrationLogger := slog.Default().With(
		"correlation_id", uuid.New().String(),
		"component", "migrations",
		"command", command,
	)
	startTime := time.Now()
	migrationLogger.Info("Starting migration operation",
		"operation", fmt.Sprintf("goose %s", command),
		"mode", getExecutionMode(),
		"url", maskDatabaseURL(cfg.Database.URL),
		"host", extractHostFromURL(cfg.Database.URL))

	db, err := setupAppDatabase(ctx, cfg, migrationLogger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			migrationLogger.Error("Error closing database connection", "error", cerr)
		}
	}()

	goose.SetLogger(&slogGooseLogger{logger: migrationLogger})
	goose.SetBaseFS(postgres.Migrations)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.RunContext(ctx, command, db, migrationsDir, args...); err != nil {
		migrationLogger.Error("Migration failed",
			"error", err,
			"duration_ms", time.Since(startTime).Milliseconds())
		return fmt.Errorf("migration %s failed: %w", command, err)
	}

	migrationLogger.Info("Migration operation completed",
		"operation", fmt.Sprintf("goose %s", command),
		"duration_ms", time.Since(startTime).Milliseconds())
	return nil
}
