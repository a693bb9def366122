package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phrazzld/teamboard/internal/api/shared"
	"github.com/phrazzld/teamboard/internal/platform/logger"
	"github.com/stretchr/testify/assert"
)

func TestTraceMiddleware(t *testing.T) {
	var buf strings.Builder
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var seenTrace string
	handler := TraceMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenTrace = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("generates a trace id", func(t *testing.T) {
		buf.Reset()
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/board", nil))

		assert.Len(t, seenTrace, 32)
		assert.Equal(t, seenTrace, rec.Header().Get(TraceHeader))
		assert.Equal(t, http.StatusTeapot, rec.Code)
		out := buf.String()
		assert.Contains(t, out, "msg=\"inside handler\" trace_id="+seenTrace)
		assert.Contains(t, out, "status=418")
	})

	t.Run("reuses a well-formed incoming trace id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/board", nil)
		req.Header.Set(TraceHeader, "toast-42")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, "toast-42", seenTrace)
		assert.Equal(t, "toast-42", rec.Header().Get(TraceHeader))
	})

	t.Run("replaces a malformed incoming trace id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/board", nil)
		req.Header.Set(TraceHeader, "bad id\nwith newline")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Len(t, seenTrace, 32)
	})
}

func TestValidTraceID(t *testing.T) {
	assert.True(t, validTraceID("abc-123_x.y"))
	assert.False(t, validTraceID(""))
	assert.False(t, validTraceID(strings.Repeat("a", shared.MaxTraceIDLength+1)))
	assert.False(t, validTraceID("a b"))
}
