package memory

import (
	"context"
	"database/sql"
	"sync"

	"github.com/phrazzld/teamboard/internal/domain"
	"github.com/phrazzld/teamboard/internal/store"
)

// maxAuditEntries bounds the in-memory log; the oldest entries are dropped.
const maxAuditEntries = 10000

// AuditStore keeps the audit trail in memory.
type AuditStore struct {
	mu      sync.RWMutex
	entries []domain.AuditEntry
}

// Ensure AuditStore implements store.AuditStore interface
var _ store.AuditStore = (*AuditStore)(nil)

// NewAuditStore returns an empty store.
func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

// Create implements store.AuditStore.Create
func (s *AuditStore) Create(ctx context.Context, entry *domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *entry)
	if len(s.entries) > maxAuditEntries {
		s.entries = s.entries[len(s.entries)-maxAuditEntries:]
	}
	return nil
}

// List implements store.AuditStore.List
func (s *AuditStore) List(ctx context.Context, filter store.AuditFilter) ([]domain.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.AuditEntry, 0)
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if filter.EntityType != "" && e.EntityType != filter.EntityType {
			continue
		}
		if filter.EntityID != "" && !domain.SameID(e.EntityID, filter.EntityID) && e.EntityID != filter.EntityID {
			continue
		}
		if filter.PerformedBy != "" && !domain.SameID(e.PerformedBy, filter.PerformedBy) {
			continue
		}
		out = append(out, e)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// WithTx returns the store itself; memory writes are applied immediately.
func (s *AuditStore) WithTx(tx *sql.Tx) store.AuditStore {
	return s
}
