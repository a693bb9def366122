package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/teamboard/internal/domain"
)

// AuditFilter narrows an audit query. Empty fields match everything.
type AuditFilter struct {
	EntityType  string
	EntityID    string
	PerformedBy string
	Limit       int
}

// AuditStore persists the dashboard's action log.
type AuditStore interface {
	// Create appends an entry.
	Create(ctx context.Context, entry *domain.AuditEntry) error

	// List returns matching entries, newest first.
	List(ctx context.Context, filter AuditFilter) ([]domain.AuditEntry, error)

	// WithTx returns an AuditStore bound to tx.
	WithTx(tx *sql.Tx) AuditStore
}
