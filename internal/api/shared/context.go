package shared

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/phrazzld/teamboard/internal/service/auth"
)

// ContextKey is the type of request context keys set by the API layer.
type ContextKey string

const (
	// SessionContextKey holds the caller's *auth.Session.
	SessionContextKey ContextKey = "session"

	// TraceIDKey holds the request's trace ID.
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the number of random bytes in a generated trace ID
	// (32 hex characters).
	TraceIDLength = 16

	// MaxTraceIDLength bounds a trace ID accepted from a client header.
	MaxTraceIDLength = 64
)

var fallbackCounter atomic.Uint32

// SetTraceID adds a freshly generated trace ID to the context.
func SetTraceID(ctx context.Context) context.Context {
	return WithTraceID(ctx, generateTraceID())
}

// WithTraceID adds traceID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID returns the trace ID in ctx, or "" when there is none.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// WithSession stores the authenticated session in the context.
func WithSession(ctx context.Context, s *auth.Session) context.Context {
	return context.WithValue(ctx, SessionContextKey, s)
}

// SessionFromContext returns the authenticated session, if any.
func SessionFromContext(ctx context.Context) (*auth.Session, bool) {
	s, ok := ctx.Value(SessionContextKey).(*auth.Session)
	if !ok || s == nil {
		return nil, false
	}
	return s, true
}

// generateTraceID returns 16 random bytes as hex. When crypto/rand fails it
// falls back to a time and counter based ID, never a static value.
func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	n, err := rand.Read(b)
	if err != nil || n != TraceIDLength {
		slog.Error("failed to generate secure random trace ID",
			slog.Any("error", err),
			slog.Int("bytes_read", n),
			slog.String("fallback", "time-based generation"))
		return generateFallbackTraceID()
	}
	return hex.EncodeToString(b)
}

func generateFallbackTraceID() string {
	id := make([]byte, TraceIDLength)
	binary.BigEndian.PutUint64(id[:8], uint64(time.Now().UnixNano()))
	binary.BigEndian.PutUint32(id[8:12], fallbackCounter.Add(1))
	binary.BigEndian.PutUint32(id[12:16], uint32(time.Now().Unix()))
	return hex.EncodeToString(id)
}
