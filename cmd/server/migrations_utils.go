package main

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
)

// slogGooseLogger adapts the goose logger interface to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

// Printf implements goose.Logger by forwarding messages to slog at info level.
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.log().Info(fmt.Sprintf(format, v...))
}

// Fatalf implements goose.Logger. It logs at error level and does NOT call
// os.Exit; the error is returned to main, which decides how to exit.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.log().Error(fmt.Sprintf(format, v...))
}

func (l *slogGooseLogger) log() *slog.Logger {
	if l.logger == nil {
		return slog.Default()
	}
	return l.logger
}

// getExecutionMode returns "ci" or "local" for log filtering.
func getExecutionMode() string {
	if isCIEnvironment() {
		return "ci"
	}
	return "local"
}

// isCIEnvironment returns true if running in a CI environment
func isCIEnvironment() bool {
	return os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != ""
}

// maskDatabaseURL masks the password in a database URL for safe logging.
func maskDatabaseURL(dbURL string) string {
	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		return "invalid-url"
	}
	if parsedURL.User != nil {
		username := parsedURL.User.Username()
		parsedURL.User = url.UserPassword(username, "****")
		return parsedURL.String()
	}
	return dbURL
}

// extractHostFromURL extracts the hostname from a database URL for logging
func extractHostFromURL(dbURL string) string {
	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		return "unknown"
	}
	return parsedURL.Hostname()
}
