package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Backend  BackendConfig  `mapstructure:"backend" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Board    BoardConfig    `mapstructure:"board" validate:"required"`
	Jobs     JobsConfig     `mapstructure:"jobs" validate:"required"`

	Notifications NotificationsConfig `mapstructure:"notifications" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// Backend modes.
const (
	BackendRemote = "remote"
	BackendMemory = "memory"
)

// BackendConfig selects and configures the upstream REST backend. In memory
// mode an in-process fixture backend seeded from SeedFile is used instead.
type BackendConfig struct {
	Mode           string `mapstructure:"mode" validate:"required,oneof=remote memory"`
	BaseURL        string `mapstructure:"base_url" validate:"omitempty,url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gt=0"`
	SeedFile       string `mapstructure:"seed_file"`
}

// DatabaseConfig contains the settings for the dashboard's own storage
// (notifications and audit trail). An empty URL keeps that data in memory.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// AuthConfig contains all authentication and authorization settings.
// JWTSecret is shared with the upstream backend, which issues the tokens.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0"`
	BcryptCost           int    `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
}

// BoardConfig holds the dashboard's business settings.
type BoardConfig struct {
	EmailDomain     string `mapstructure:"email_domain" validate:"required"`
	DefaultPassword string `mapstructure:"default_password" validate:"required,min=6"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
	WorkloadLimit   int    `mapstructure:"workload_limit" validate:"gt=0"`
}

// JobsConfig sizes the background worker pool that handles board events.
type JobsConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"gt=0"`
	QueueSize   int `mapstructure:"queue_size" validate:"gt=0"`
}

// NotificationsConfig tunes the live notification stream.
type NotificationsConfig struct {
	KeepAliveSeconds int `mapstructure:"keepalive_seconds" validate:"gt=0"`
}
