package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/teamboard/internal/domain"
)

// NotificationStore persists the per-recipient notification feed.
type NotificationStore interface {
	// Create saves a new notification. The notification is validated first;
	// invalid input yields an error wrapping ErrInvalidEntity.
	Create(ctx context.Context, n *domain.Notification) error

	// ListByRecipient returns up to limit notifications for recipient,
	// newest first. A non-positive limit returns them all.
	ListByRecipient(ctx context.Context, recipient string, limit int) ([]domain.Notification, error)

	// CountUnread returns how many of recipient's notifications are unread.
	CountUnread(ctx context.Context, recipient string) (int, error)

	// MarkRead marks one of recipient's notifications as read. It returns
	// ErrNotificationNotFound when the id is unknown or belongs to someone
	// else. Marking an already read notification succeeds.
	MarkRead(ctx context.Context, recipient string, id uuid.UUID) error

	// MarkAllRead marks every unread notification of recipient as read and
	// returns how many changed.
	MarkAllRead(ctx context.Context, recipient string) (int, error)

	// WithTx returns a NotificationStore bound to tx.
	WithTx(tx *sql.Tx) NotificationStore
}
