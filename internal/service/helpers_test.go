package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/teamboard/internal/backend"
	"github.com/phrazzld/teamboard/internal/backend/memory"
	"github.com/phrazzld/teamboard/internal/config"
	"github.com/phrazzld/teamboard/internal/domain"
	"github.com/phrazzld/teamboard/internal/events"
	"github.com/phrazzld/teamboard/internal/service/auth"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecret   = "service-test-secret-with-at-least-32-chars"
	testPassword = "welcome123"
)

// Seeded employees.
const (
	adminID    = 1
	managerID  = 2
	developer3 = 3
	developer4 = 4
)

var testNow = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

var testBoardConfig = config.BoardConfig{
	EmailDomain:     "@ust.com",
	DefaultPassword: testPassword,
	CacheTTLSeconds: 60,
	WorkloadLimit:   6,
}

// recorder collects emitted events.
type recorder struct {
	mu     sync.Mutex
	events []*events.BoardEvent
}

func (r *recorder) HandleEvent(ctx context.Context, event *events.BoardEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) ofType(typ events.EventType) []*events.BoardEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*events.BoardEvent
	for _, e := range r.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// flakyBackend lets tests fail individual backend calls.
type flakyBackend struct {
	backend.Backend
	updateErr      error
	addRemarkErr   error
	listRemarksErr error
	updateCalls    int
}

func (f *flakyBackend) UpdateTask(
	ctx context.Context,
	token, id string,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	f.updateCalls++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.Backend.UpdateTask(ctx, token, id, patch)
}

func (f *flakyBackend) AddRemark(ctx context.Context, token, taskID, content string) (*domain.Remark, error) {
	if f.addRemarkErr != nil {
		return nil, f.addRemarkErr
	}
	return f.Backend.AddRemark(ctx, token, taskID, content)
}

func (f *flakyBackend) ListRemarks(ctx context.Context, token, taskID string) ([]domain.Remark, error) {
	if f.listRemarksErr != nil {
		return nil, f.listRemarksErr
	}
	return f.Backend.ListRemarks(ctx, token, taskID)
}

type testEnv struct {
	backend  *flakyBackend
	jwt      auth.JWTService
	emitter  *events.InMemoryEventEmitter
	recorder *recorder
	board    *boardService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	jwtSvc, err := auth.NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60})
	require.NoError(t, err)

	seed, err := memory.DefaultSeed()
	require.NoError(t, err)
	mem, err := memory.New(seed, memory.Options{
		JWT:             jwtSvc,
		Passwords:       auth.NewBcryptVerifier(bcrypt.MinCost),
		DefaultPassword: testPassword,
		Now:             func() time.Time { return testNow },
	})
	require.NoError(t, err)

	flaky := &flakyBackend{Backend: mem}
	emitter := events.NewInMemoryEventEmitter(nil, nil)
	rec := &recorder{}
	emitter.RegisterHandler(rec)

	svc, err := NewBoardService(flaky, emitter, testBoardConfig, nil)
	require.NoError(t, err)
	board := svc.(*boardService)
	board.now = func() time.Time { return testNow }

	return &testEnv{backend: flaky, jwt: jwtSvc, emitter: emitter, recorder: rec, board: board}
}

// session signs the seeded employee in.
func (e *testEnv) session(t *testing.T, employeeID int) auth.Session {
	t.Helper()
	ctx := context.Background()
	res, err := e.backend.Login(ctx, employeeID, testPassword)
	require.NoError(t, err)
	claims, err := e.jwt.ValidateToken(ctx, res.AccessToken)
	require.NoError(t, err)
	return auth.NewSession(res.AccessToken, claims)
}

func taskIDs(tasks []domain.Task) []string {
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}
