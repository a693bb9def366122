package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/teamboard/internal/domain"
	"github.com/phrazzld/teamboard/internal/platform/logger"
	"github.com/phrazzld/teamboard/internal/store"
)

// PostgresNotificationStore implements the store.NotificationStore interface
// using a PostgreSQL database as the storage backend.
type PostgresNotificationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresNotificationStore creates a notification store over db, which
// may be a connection pool or a transaction. If logger is nil, a default
// logger will be used.
func NewPostgresNotificationStore(db store.DBTX, logger *slog.Logger) *PostgresNotificationStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresNotificationStore{
		db:     db,
		logger: logger.With(slog.String("component", "notification_store")),
	}
}

// Ensure PostgresNotificationStore implements store.NotificationStore interface
var _ store.NotificationStore = (*PostgresNotificationStore)(nil)

// Create implements store.NotificationStore.Create
func (s *PostgresNotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := n.Validate(); err != nil {
		log.Warn("notification validation failed during create",
			slog.String("error", err.Error()),
			slog.String("notification_id", n.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO notifications (id, recipient, type, title, message, task_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		n.ID,
		n.Recipient,
		string(n.Type),
		n.Title,
		n.Message,
		sql.NullString{String: n.TaskID, Valid: n.TaskID != ""},
		n.Read,
		n.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create notification",
			slog.String("error", err.Error()),
			slog.String("notification_id", n.ID.String()),
			slog.String("recipient", n.Recipient))
		return MapError(err)
	}

	log.Debug("notification created",
		slog.String("notification_id", n.ID.String()),
		slog.String("recipient", n.Recipient),
		slog.String("type", string(n.Type)))
	return nil
}

// ListByRecipient implements store.NotificationStore.ListByRecipient
func (s *PostgresNotificationStore) ListByRecipient(
	ctx context.Context,
	recipient string,
	limit int,
) ([]domain.Notification, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, recipient, type, title, message, task_id, read, created_at
		FROM notifications
		WHERE recipient = $1
		ORDER BY created_at DESC, id
	`
	args := []any{recipient}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list notifications",
			slog.String("error", err.Error()),
			slog.String("recipient", recipient))
		return nil, MapError(err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			log.Error("failed to close rows", slog.String("error", cerr.Error()))
		}
	}()

	notifications := make([]domain.Notification, 0)
	for rows.Next() {
		var (
			n      domain.Notification
			typ    string
			taskID sql.NullString
		)
		if err := rows.Scan(&n.ID, &n.Recipient, &typ, &n.Title, &n.Message, &taskID, &n.Read, &n.CreatedAt); err != nil {
			log.Error("failed to scan notification row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		n.Type = domain.NotificationType(typ)
		n.TaskID = taskID.String
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating notification rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return notifications, nil
}

// CountUnread implements store.NotificationStore.CountUnread
func (s *PostgresNotificationStore) CountUnread(ctx context.Context, recipient string) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient = $1 AND NOT read`,
		recipient,
	).Scan(&count)
	if err != nil {
		log.Error("failed to count unread notifications",
			slog.String("error", err.Error()),
			slog.String("recipient", recipient))
		return 0, MapError(err)
	}
	return count, nil
}

// MarkRead implements store.NotificationStore.MarkRead
func (s *PostgresNotificationStore) MarkRead(ctx context.Context, recipient string, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND recipient = $2`,
		id, recipient,
	)
	if err != nil {
		log.Error("failed to mark notification read",
			slog.String("error", err.Error()),
			slog.String("notification_id", id.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrNotificationNotFound); err != nil {
		log.Debug("notification not found for recipient",
			slog.String("notification_id", id.String()),
			slog.String("recipient", recipient))
		return err
	}
	return nil
}

// MarkAllRead implements store.NotificationStore.MarkAllRead
func (s *PostgresNotificationStore) MarkAllRead(ctx context.Context, recipient string) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE recipient = $1 AND NOT read`,
		recipient,
	)
	if err != nil {
		log.Error("failed to mark all notifications read",
			slog.String("error", err.Error()),
			slog.String("recipient", recipient))
		return 0, MapError(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(rows), nil
}

// WithTx implements store.NotificationStore.WithTx
func (s *PostgresNotificationStore) WithTx(tx *sql.Tx) store.NotificationStore {
	return &PostgresNotificationStore{db: tx, logger: s.logger}
}
