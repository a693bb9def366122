package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/teamboard/internal/domain"
	"github.com/phrazzld/teamboard/internal/platform/logger"
	"github.com/phrazzld/teamboard/internal/store"
)

// defaultAuditLimit caps audit queries that do not set a limit.
const defaultAuditLimit = 200

// PostgresAuditStore implements the store.AuditStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAuditStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAuditStore creates an audit store over db.
func NewPostgresAuditStore(db store.DBTX, logger *slog.Logger) *PostgresAuditStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresAuditStore{
		db:     db,
		logger: logger.With(slog.String("component", "audit_store")),
	}
}

// Ensure PostgresAuditStore implements store.AuditStore interface
var _ store.AuditStore = (*PostgresAuditStore)(nil)

// Create implements store.AuditStore.Create
func (s *PostgresAuditStore) Create(ctx context.Context, entry *domain.AuditEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, action, entity_type, entity_id, performed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		entry.ID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.PerformedBy,
		entry.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create audit entry",
			slog.String("error", err.Error()),
			slog.String("action", entry.Action),
			slog.String("entity_type", entry.EntityType))
		return MapError(err)
	}
	return nil
}

// List implements store.AuditStore.List
func (s *PostgresAuditStore) List(ctx context.Context, filter store.AuditFilter) ([]domain.AuditEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		conditions []string
		args       []any
	)
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("entity_type", filter.EntityType)
	add("entity_id", filter.EntityID)
	add("performed_by", filter.PerformedBy)

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultAuditLimit
	}

	var query strings.Builder
	query.WriteString("SELECT id, action, entity_type, entity_id, performed_by, created_at FROM audit_log")
	if len(conditions) > 0 {
		query.WriteString(" WHERE ")
		query.WriteString(strings.Join(conditions, " AND "))
	}
	args = append(args, limit)
	fmt.Fprintf(&query, " ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		log.Error("failed to list audit entries", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			log.Error("failed to close rows", slog.String("error", cerr.Error()))
		}
	}()

	entries := make([]domain.AuditEntry, 0)
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.EntityType, &e.EntityID, &e.PerformedBy, &e.CreatedAt); err != nil {
			log.Error("failed to scan audit row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return entries, nil
}

// WithTx implements store.AuditStore.WithTx
func (s *PostgresAuditStore) WithTx(tx *sql.Tx) store.AuditStore {
	return &PostgresAuditStore{db: tx, logger: s.logger}
}
