package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/phrazzld/teamboard/internal/domain"
	"github.com/phrazzld/teamboard/internal/jobs"
	"github.com/phrazzld/teamboard/internal/platform/memory"
	"github.com/phrazzld/teamboard/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testActor = domain.Actor{EmployeeID: "2", Roles: []domain.Role{domain.RoleManager}}

// MockEventHandler records the events it receives.
type MockEventHandler struct {
	mu           sync.Mutex
	HandledCount int
	LastEvent    *BoardEvent
	HandlerError error
}

func (m *MockEventHandler) HandleEvent(ctx context.Context, event *BoardEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HandledCount++
	m.LastEvent = event
	return m.HandlerError
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewTaskEvent_CopiesTask(t *testing.T) {
	task := domain.Task{ID: "7", Title: "Original", Remarks: []domain.Remark{{Content: "a"}}}
	event := NewTaskEvent(TaskCreated, testActor, task)
	task.Remarks[0].Content = "changed"
	task.Title = "Changed"

	assert.Equal(t, "Original", event.Task.Title)
	assert.Equal(t, "a", event.Task.Remarks[0].Content)
	assert.Equal(t, domain.EntityTask, event.EntityType)
	assert.Equal(t, "7", event.EntityID)
}

func TestAuditAction(t *testing.T) {
	move := NewMoveEvent(testActor, domain.Task{ID: "1"}, domain.StatusToDo, domain.StatusInProgress, "")
	assert.Equal(t, domain.ActionMoveTask, move.AuditAction())
	assert.Equal(t, domain.StatusToDo, move.From)

	remark := NewRemarkEvent(testActor, domain.Task{ID: "1"}, "hi")
	assert.Equal(t, domain.ActionCreateRemark, remark.AuditAction())

	user := NewEntityEvent(UserDeleted, testActor, domain.EntityUser, "5")
	assert.Equal(t, domain.ActionDeleteUser, user.AuditAction())

	unknown := &BoardEvent{Type: "something.else"}
	assert.Empty(t, unknown.AuditAction())
}

func TestInMemoryEventEmitter(t *testing.T) {
	event := NewTaskEvent(TaskCreated, testActor, domain.Task{ID: "1"})

	t.Run("no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(discardLogger(), nil)
		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
	})

	t.Run("every handler runs and first error is returned", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(discardLogger(), nil)
		ok := &MockEventHandler{}
		failing := &MockEventHandler{HandlerError: errors.New("handler error")}
		failing2 := &MockEventHandler{HandlerError: errors.New("second error")}
		emitter.RegisterHandler(failing)
		emitter.RegisterHandler(ok)
		emitter.RegisterHandler(failing2)

		err := emitter.EmitEvent(context.Background(), event)
		require.Error(t, err)
		assert.Equal(t, "handler error", err.Error())
		assert.Equal(t, 1, ok.HandledCount)
		assert.Equal(t, 1, failing2.HandledCount)
		assert.Same(t, event, ok.LastEvent)
	})

	t.Run("asynchronous dispatch through runner", func(t *testing.T) {
		runner := jobs.NewRunner(jobs.Config{WorkerCount: 2, QueueSize: 10}, discardLogger())
		runner.Start()

		emitter := NewInMemoryEventEmitter(discardLogger(), runner)
		h1 := &MockEventHandler{HandlerError: errors.New("ignored")}
		h2 := &MockEventHandler{}
		emitter.RegisterHandler(h1)
		emitter.RegisterHandler(h2)

		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
		require.NoError(t, runner.Stop(context.Background()))

		assert.Equal(t, 1, h1.HandledCount)
		assert.Equal(t, 1, h2.HandledCount)
	})
}

func TestAuditHandler(t *testing.T) {
	ctx := context.Background()
	audit := memory.NewAuditStore()
	handler := NewAuditHandler(audit, discardLogger())

	require.NoError(t, handler.HandleEvent(ctx, NewMoveEvent(testActor, domain.Task{ID: "4"}, domain.StatusReview, domain.StatusDone, "")))
	require.NoError(t, handler.HandleEvent(ctx, &BoardEvent{Type: "ignored"}))
	// Missing actor is skipped, not failed.
	require.NoError(t, handler.HandleEvent(ctx, NewEntityEvent(UserCreated, domain.Actor{}, domain.EntityUser, "5")))

	entries, err := audit.List(ctx, store.AuditFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionMoveTask, entries[0].Action)
	assert.Equal(t, "4", entries[0].EntityID)
	assert.Equal(t, "2", entries[0].PerformedBy)
}
