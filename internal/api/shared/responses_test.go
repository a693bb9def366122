package shared

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phrazzld/teamboard/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requestWithLog returns a request whose context carries a debug-level text
// logger writing to the returned buffer, plus a trace ID.
func requestWithLog(t *testing.T) (*http.Request, *strings.Builder) {
	t.Helper()
	var buf strings.Builder
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	ctx := logger.WithLogger(WithTraceID(req.Context(), "test-trace-id"), log)
	return req.WithContext(ctx), &buf
}

func TestRespondWithJSON(t *testing.T) {
	t.Run("object", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()
		RespondWithJSON(w, req, http.StatusCreated, map[string]interface{}{"id": "5", "count": 2})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "5", body["id"])
		assert.Equal(t, float64(2), body["count"])
	})

	t.Run("nil", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()
		RespondWithJSON(w, req, http.StatusOK, nil)
		assert.Equal(t, "null\n", w.Body.String())
	})
}

func TestRespondWithJSONEncodingError(t *testing.T) {
	req, logBuf := requestWithLog(t)
	w := httptest.NewRecorder()

	RespondWithJSON(w, req, http.StatusOK, map[string]interface{}{"bad": make(chan int)})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, logBuf.String(), "failed to encode JSON response")
}

func TestRespondNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	RespondNoContent(w)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestRespondWithError(t *testing.T) {
	req, _ := requestWithLog(t)
	w := httptest.NewRecorder()

	RespondWithError(w, req, http.StatusBadRequest, "Invalid request")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Invalid request", body.Error)
	assert.Equal(t, "test-trace-id", body.TraceID)
	assert.NotContains(t, w.Body.String(), "400", "code is not serialized")
}

func TestRespondWithErrorNoTraceID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	RespondWithError(w, req, http.StatusUnauthorized, "Unauthorized")

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Unauthorized", body.Error)
	assert.Empty(t, body.TraceID)
}

func TestRespondWithErrorAndLog(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		message   string
		err       error
		elevate   bool
		wantLevel string
	}{
		{"server error", http.StatusInternalServerError, "Internal server error", errors.New("db down"), false, "ERROR"},
		{"upstream outage", http.StatusBadGateway, "Service temporarily unavailable", errors.New("dial tcp"), false, "WARN"},
		{"client error", http.StatusBadRequest, "Bad request", errors.New("invalid input"), false, "DEBUG"},
		{"elevated client error", http.StatusUnauthorized, "Invalid credentials", errors.New("bad password"), true, "WARN"},
		{"rate limited", http.StatusTooManyRequests, "Too many requests", errors.New("limit"), false, "WARN"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, logBuf := requestWithLog(t)
			w := httptest.NewRecorder()

			if tc.elevate {
				RespondWithErrorAndLog(w, req, tc.status, tc.message, tc.err, WithElevatedLogLevel())
			} else {
				RespondWithErrorAndLog(w, req, tc.status, tc.message, tc.err)
			}

			assert.Equal(t, tc.status, w.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.message, body.Error)
			assert.Equal(t, "test-trace-id", body.TraceID)
			assert.NotContains(t, w.Body.String(), tc.err.Error(), "raw errors never reach the client")

			out := logBuf.String()
			assert.Contains(t, out, "level="+tc.wantLevel)
			assert.Contains(t, out, "trace_id=test-trace-id")
			assert.Contains(t, out, "error_type=")
		})
	}
}

func TestWithElevatedLogLevel(t *testing.T) {
	opts := responseOptions{}
	WithElevatedLogLevel()(&opts)
	assert.True(t, opts.elevateLogLevel)
}
