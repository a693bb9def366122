package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/teamboard/internal/config"
)

// loadAppConfig loads the application configuration from environment
// variables or config file.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// logAppConfig reports the loaded settings without secrets.
func logAppConfig(cfg *config.Config) {
	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"backend_mode", cfg.Backend.Mode)

	if cfg.Backend.BaseURL != "" {
		slog.Debug("Backend configuration", "base_url", cfg.Backend.BaseURL)
	}
	if cfg.Database.URL != "" {
		slog.Debug("Database configuration", "url", maskDatabaseURL(cfg.Database.URL))
	} else {
		slog.Info("No database configured, notifications and audit entries are kept in memory")
	}
	if cfg.Auth.JWTSecret != "" {
		slog.Debug("Auth configuration", "jwt_secret_present", true)
	}
}
