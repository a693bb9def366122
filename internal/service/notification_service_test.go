package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/teamboard/internal/domain"
	"github.com/phrazzld/teamboard/internal/events"
	"github.com/phrazzld/teamboard/internal/platform/memory"
	"github.com/phrazzld/teamboard/internal/platform/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (p *capturePublisher) Publish(n domain.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, n)
}

var (
	manager   = domain.Actor{EmployeeID: "2", Name: "Marcus Lee", Roles: []domain.Role{domain.RoleManager}}
	developer = domain.Actor{EmployeeID: "3", Name: "Priya Nair", Roles: []domain.Role{domain.RoleDeveloper}}
)

func sampleTask() domain.Task {
	return domain.Task{
		ID:         "4",
		Title:      "Review board permissions",
		CreatedBy:  "2",
		AssignedTo: "3",
		Reviewer:   "2",
		Priority:   domain.PriorityHigh,
		Status:     domain.StatusReview,
	}
}

func TestNotificationsFor(t *testing.T) {
	t.Run("status change notifies actor, assignee and reviewer once each", func(t *testing.T) {
		event := events.NewMoveEvent(developer, sampleTask(), domain.StatusInProgress, domain.StatusReview, "")
		batch, err := notificationsFor(event)
		require.NoError(t, err)

		require.Len(t, batch, 2)
		assert.Equal(t, "3", batch[0].Recipient)
		assert.Equal(t, "2", batch[1].Recipient)
		for _, n := range batch {
			assert.Equal(t, domain.NotificationStatusChanged, n.Type)
			assert.Equal(t, "Task Status Updated", n.Title)
			assert.Equal(t, `"Review board permissions" moved to REVIEW`, n.Message)
			assert.Equal(t, "4", n.TaskID)
		}
	})

	t.Run("completion", func(t *testing.T) {
		task := sampleTask()
		task.Status = domain.StatusDone
		batch, err := notificationsFor(events.NewMoveEvent(manager, task, domain.StatusReview, domain.StatusDone, ""))
		require.NoError(t, err)
		require.NotEmpty(t, batch)
		assert.Equal(t, domain.NotificationTaskCompleted, batch[0].Type)
		assert.Equal(t, "Task Completed!", batch[0].Title)
		assert.Equal(t, `"Review board permissions" moved to DONE`, batch[0].Message)
	})

	t.Run("assignment", func(t *testing.T) {
		event := events.NewTaskEvent(events.TaskCreated, manager, sampleTask())
		event.Assigned = true
		batch, err := notificationsFor(event)
		require.NoError(t, err)
		require.Len(t, batch, 1)
		assert.Equal(t, "3", batch[0].Recipient)
		assert.Equal(t, domain.NotificationTaskAssigned, batch[0].Type)
		assert.Equal(t, `You have been assigned "Review board permissions"`, batch[0].Message)
	})

	t.Run("remark", func(t *testing.T) {
		batch, err := notificationsFor(events.NewRemarkEvent(manager, sampleTask(), "Looks good"))
		require.NoError(t, err)
		require.Len(t, batch, 2)
		assert.Equal(t, domain.NotificationRemarkAdded, batch[0].Type)
		assert.Equal(t, `Marcus Lee added a comment on "Review board permissions"`, batch[0].Message)
	})

	t.Run("events without a task notify nobody", func(t *testing.T) {
		batch, err := notificationsFor(events.NewEntityEvent(events.EmployeeCreated, manager, domain.EntityEmployee, "9"))
		require.NoError(t, err)
		assert.Empty(t, batch)
	})

	t.Run("plain update notifies nobody", func(t *testing.T) {
		batch, err := notificationsFor(events.NewTaskEvent(events.TaskUpdated, manager, sampleTask()))
		require.NoError(t, err)
		assert.Empty(t, batch)
	})
}

func TestRecipients(t *testing.T) {
	assert.Equal(t, []string{"2", "3"}, recipients("2", "EMP003", "", "002", "3"))
	assert.Empty(t, recipients("", ""))
}

func TestNotificationService_Feed(t *testing.T) {
	ctx := context.Background()
	pub := &capturePublisher{}
	svc, err := NewNotificationService(memory.NewNotificationStore(), nil, pub, nil)
	require.NoError(t, err)

	event := events.NewMoveEvent(developer, sampleTask(), domain.StatusInProgress, domain.StatusReview, "")
	require.NoError(t, svc.HandleEvent(ctx, event))
	assert.Len(t, pub.sent, 2)

	list, err := svc.List(ctx, "EMP003", 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Read)

	count, err := svc.UnreadCount(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, svc.MarkRead(ctx, "3", list[0].ID))
	count, err = svc.UnreadCount(ctx, "3")
	require.NoError(t, err)
	assert.Zero(t, count)

	err = svc.MarkRead(ctx, "2", list[0].ID)
	assert.ErrorIs(t, err, ErrNotificationNotFound, "cannot mark someone else's notification")

	err = svc.MarkRead(ctx, "3", uuid.New())
	assert.ErrorIs(t, err, ErrNotificationNotFound)

	changed, err := svc.MarkAllRead(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
}

func TestNotificationService_HandleEventInTransaction(t *testing.T) {
	ctx := context.Background()
	insert := regexp.QuoteMeta("INSERT INTO notifications")

	t.Run("commits the batch", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin()
		mock.ExpectExec(insert).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(insert).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		pub := &capturePublisher{}
		svc, err := NewNotificationService(postgres.NewPostgresNotificationStore(db, nil), db, pub, nil)
		require.NoError(t, err)

		event := events.NewRemarkEvent(developer, sampleTask(), "Done with the docs")
		require.NoError(t, svc.HandleEvent(ctx, event))
		assert.Len(t, pub.sent, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back and publishes nothing on failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin()
		mock.ExpectExec(insert).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(insert).WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		pub := &capturePublisher{}
		svc, err := NewNotificationService(postgres.NewPostgresNotificationStore(db, nil), db, pub, nil)
		require.NoError(t, err)

		event := events.NewRemarkEvent(developer, sampleTask(), "Done with the docs")
		err = svc.HandleEvent(ctx, event)
		require.Error(t, err)
		var serviceErr *ServiceError
		assert.ErrorAs(t, err, &serviceErr)
		assert.Empty(t, pub.sent)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestNewNotificationService_NilStore(t *testing.T) {
	_, err := NewNotificationService(nil, nil, nil, nil)
	assert.Error(t, err)
}
