package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/teamboard/internal/domain"
	"github.com/phrazzld/teamboard/internal/events"
	"github.com/phrazzld/teamboard/internal/platform/logger"
	"github.com/phrazzld/teamboard/internal/store"
)

// DefaultNotificationLimit is the feed length returned when no limit is given.
const DefaultNotificationLimit = 50

// Publisher pushes a stored notification to live subscribers.
type Publisher interface {
	Publish(n domain.Notification)
}

// NotificationService serves each user's notification feed and turns board
// events into notifications.
type NotificationService interface {
	events.EventHandler

	// List returns the recipient's notifications, newest first.
	List(ctx context.Context, recipient string, limit int) ([]domain.Notification, error)

	// UnreadCount returns how many notifications the recipient has not read.
	UnreadCount(ctx context.Context, recipient string) (int, error)

	// MarkRead marks one of the recipient's notifications read.
	MarkRead(ctx context.Context, recipient string, id uuid.UUID) error

	// MarkAllRead marks the whole feed read and returns how many changed.
	MarkAllRead(ctx context.Context, recipient string) (int, error)
}

type notificationService struct {
	store     store.NotificationStore
	db        *sql.DB
	publisher Publisher
	logger    *slog.Logger
}

var _ NotificationService = (*notificationService)(nil)

// NewNotificationService creates a NotificationService. db may be nil when
// the store is not database backed; publisher may be nil to disable live
// delivery.
func NewNotificationService(
	notificationStore store.NotificationStore,
	db *sql.DB,
	publisher Publisher,
	logger *slog.Logger,
) (NotificationService, error) {
	if notificationStore == nil {
		return nil, fmt.Errorf("notification store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &notificationService{
		store:     notificationStore,
		db:        db,
		publisher: publisher,
		logger:    logger.With(slog.String("component", "notification_service")),
	}, nil
}

func (s *notificationService) List(ctx context.Context, recipient string, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	list, err := s.store.ListByRecipient(ctx, domain.CanonicalID(recipient), limit)
	if err != nil {
		return nil, NewServiceError("notification", "List", "failed to list notifications", err)
	}
	return list, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, recipient string) (int, error) {
	n, err := s.store.CountUnread(ctx, domain.CanonicalID(recipient))
	if err != nil {
		return 0, NewServiceError("notification", "UnreadCount", "failed to count notifications", err)
	}
	return n, nil
}

func (s *notificationService) MarkRead(ctx context.Context, recipient string, id uuid.UUID) error {
	if err := s.store.MarkRead(ctx, domain.CanonicalID(recipient), id); err != nil {
		return NewServiceError("notification", "MarkRead", "failed to mark notification read", err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, recipient string) (int, error) {
	n, err := s.store.MarkAllRead(ctx, domain.CanonicalID(recipient))
	if err != nil {
		return 0, NewServiceError("notification", "MarkAllRead", "failed to mark notifications read", err)
	}
	return n, nil
}

// HandleEvent creates the notifications an event calls for and pushes them
// to connected clients once stored.
func (s *notificationService) HandleEvent(ctx context.Context, event *events.BoardEvent) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	batch, err := notificationsFor(event)
	if err != nil {
		log.Error("failed to build notifications",
			slog.String("event_type", string(event.Type)),
			slog.String("error", err.Error()))
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	save := func(ctx context.Context, ns store.NotificationStore) error {
		for _, n := range batch {
			if err := ns.Create(ctx, n); err != nil {
				return err
			}
		}
		return nil
	}

	if s.db != nil {
		err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
			return save(ctx, s.store.WithTx(tx))
		})
	} else {
		err = save(ctx, s.store)
	}
	if err != nil {
		log.Error("failed to store notifications",
			slog.String("event_type", string(event.Type)),
			slog.String("error", err.Error()))
		return NewServiceError("notification", "HandleEvent", "failed to store notifications", err)
	}

	if s.publisher != nil {
		for _, n := range batch {
			s.publisher.Publish(*n)
		}
	}
	log.Debug("notifications created",
		slog.String("event_type", string(event.Type)),
		slog.Int("count", len(batch)))
	return nil
}

// notificationsFor builds the notifications for a board event. Events that
// notify nobody yield an empty batch.
func notificationsFor(event *events.BoardEvent) ([]*domain.Notification, error) {
	if event.Task == nil {
		return nil, nil
	}
	task := event.Task

	type message struct {
		recipients []string
		typ        domain.NotificationType
		title      string
		text       string
	}
	var messages []message

	if event.Assigned && task.AssignedTo != "" {
		messages = append(messages, message{
			recipients: []string{task.AssignedTo},
			typ:        domain.NotificationTaskAssigned,
			title:      "New Task Assigned",
			text:       fmt.Sprintf("You have been assigned %q", task.Title),
		})
	}

	switch event.Type {
	case events.TaskMoved:
		m := message{
			recipients: recipients(event.Actor.EmployeeID, task.AssignedTo, task.Reviewer),
			typ:        domain.NotificationStatusChanged,
			title:      "Task Status Updated",
			text:       fmt.Sprintf("%q moved to %s", task.Title, event.To.Label()),
		}
		if event.To == domain.StatusDone {
			m.typ = domain.NotificationTaskCompleted
			m.title = "Task Completed!"
		}
		messages = append(messages, m)
	case events.RemarkAdded:
		name := event.Actor.Name
		if name == "" {
			name = domain.UnknownAuthor
		}
		messages = append(messages, message{
			recipients: recipients(event.Actor.EmployeeID, task.AssignedTo, task.Reviewer),
			typ:        domain.NotificationRemarkAdded,
			title:      "New Comment",
			text:       fmt.Sprintf("%s added a comment on %q", name, task.Title),
		})
	}

	var batch []*domain.Notification
	for _, m := range messages {
		for _, r := range m.recipients {
			n, err := domain.NewNotification(domain.CanonicalID(r), m.typ, m.title, m.text, task.ID)
			if err != nil {
				return nil, err
			}
			batch = append(batch, n)
		}
	}
	return batch, nil
}

// recipients returns the distinct non-empty ids in canonical form, in order.
func recipients(ids ...string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		dup := false
		for _, seen := range out {
			if domain.SameID(seen, id) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, domain.CanonicalID(id))
		}
	}
	return out
}
