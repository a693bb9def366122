package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/teamboard/internal/api/middleware"
	"github.com/phrazzld/teamboard/internal/api/shared"
	"github.com/phrazzld/teamboard/internal/backend/memory"
	"github.com/phrazzld/teamboard/internal/config"
	"github.com/phrazzld/teamboard/internal/events"
	"github.com/phrazzld/teamboard/internal/notify"
	platmem "github.com/phrazzld/teamboard/internal/platform/memory"
	"github.com/phrazzld/teamboard/internal/service"
	"github.com/phrazzld/teamboard/internal/service/auth"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecret   = "api-test-secret-with-at-least-32-characters"
	testPassword = "welcome123"
)

var testBoardConfig = config.BoardConfig{
	EmailDomain:     "@ust.com",
	DefaultPassword: testPassword,
	CacheTTLSeconds: 0,
	WorkloadLimit:   6,
}

// testServer is the full API stack over the seeded in-memory backend.
type testServer struct {
	router        http.Handler
	backend       *memory.Backend
	hub           *notify.Hub
	notifications service.NotificationService
	auditStore    *platmem.AuditStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	jwtSvc, err := auth.NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60})
	require.NoError(t, err)
	seed, err := memory.DefaultSeed()
	require.NoError(t, err)
	mem, err := memory.New(seed, memory.Options{
		JWT:             jwtSvc,
		Passwords:       auth.NewBcryptVerifier(bcrypt.MinCost),
		DefaultPassword: testPassword,
		Logger:          log,
	})
	require.NoError(t, err)

	emitter := events.NewInMemoryEventEmitter(log, nil)
	auditStore := platmem.NewAuditStore()
	emitter.RegisterHandler(events.NewAuditHandler(auditStore, log))
	hub := notify.NewHub(log)
	notifications, err := service.NewNotificationService(platmem.NewNotificationStore(), nil, hub, log)
	require.NoError(t, err)
	emitter.RegisterHandler(notifications)

	board, err := service.NewBoardService(mem, emitter, testBoardConfig, log)
	require.NoError(t, err)
	directory, err := service.NewDirectoryService(mem, emitter, testBoardConfig, log)
	require.NoError(t, err)
	authSvc, err := service.NewAuthService(mem, jwtSvc, board, emitter, log)
	require.NoError(t, err)
	analytics, err := service.NewAnalyticsService(board, mem, testBoardConfig, log)
	require.NoError(t, err)
	audit, err := service.NewAuditService(auditStore, log)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware(log))
	RegisterRoutes(r, Handlers{
		Auth:          NewAuthHandler(authSvc, log),
		Tasks:         NewTaskHandler(board, log),
		Directory:     NewDirectoryHandler(directory, log),
		Notifications: NewNotificationHandler(notifications, hub, log),
		Reports:       NewReportHandler(analytics, audit, log),
	}, middleware.NewAuthMiddleware(authSvc))

	return &testServer{
		router:        r,
		backend:       mem,
		hub:           hub,
		notifications: notifications,
		auditStore:    auditStore,
	}
}

// do sends a request with an optional bearer token and JSON body.
func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		if raw, ok := body.(string); ok {
			reader = bytes.NewBufferString(raw)
		} else {
			data, err := json.Marshal(body)
			require.NoError(t, err)
			reader = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// login signs a seeded employee in and returns the access token.
func (s *testServer) login(t *testing.T, employeeID int) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"employee_id": strconv.Itoa(employeeID),
		"password":    testPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp LoginResponse
	decode(t, rec, &resp)
	return resp.AccessToken
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var body shared.ErrorResponse
	decode(t, rec, &body)
	return body
}

// requestWithSession builds a request carrying a session, bypassing the
// authentication middleware.
func requestWithSession(method, path string, body io.Reader, s *auth.Session) *http.Request {
	req := httptest.NewRequest(method, path, body)
	return req.WithContext(shared.WithSession(context.Background(), s))
}
