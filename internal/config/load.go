package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// TEAMBOARD_SERVER_PORT or TEAMBOARD_AUTH_JWT_SECRET.
const EnvPrefix = "TEAMBOARD"

// keys lists every configuration key so each can be bound to its
// environment variable even without a default or config file entry.
var keys = []string{
	"server.port",
	"server.log_level",
	"server.shutdown_timeout_seconds",
	"backend.mode",
	"backend.base_url",
	"backend.timeout_seconds",
	"backend.seed_file",
	"database.url",
	"auth.jwt_secret",
	"auth.token_lifetime_minutes",
	"auth.bcrypt_cost",
	"board.email_domain",
	"board.default_password",
	"board.cache_ttl_seconds",
	"board.workload_limit",
	"jobs.worker_count",
	"jobs.queue_size",
	"notifications.keepalive_seconds",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("backend.mode", BackendRemote)
	v.SetDefault("backend.timeout_seconds", 10)
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("board.email_domain", "@ust.com")
	v.SetDefault("board.default_password", "welcome123")
	v.SetDefault("board.cache_ttl_seconds", 60)
	v.SetDefault("board.workload_limit", 6)
	v.SetDefault("jobs.worker_count", 2)
	v.SetDefault("jobs.queue_size", 100)
	v.SetDefault("notifications.keepalive_seconds", 30)
}

// Load configuration from environment variables and optionally a config.yaml
// in the working directory. Environment variables take precedence over values
// from the config file. Returns a populated Config struct or an error if
// loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct constraints and the rules that span fields.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if c.Backend.Mode == BackendRemote && c.Backend.BaseURL == "" {
		return fmt.Errorf("config validation failed: backend.base_url is required in %s mode", BackendRemote)
	}
	return nil
}
