// Package config loads the server settings from config.yaml and TEAMBOARD_*
// environment variables through viper, applies defaults and validates the
// result before any component is constructed.
package config
