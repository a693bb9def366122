package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/teamboard/internal/domain"
	"github.com/phrazzld/teamboard/internal/store"
)

// NotificationStore keeps notifications in memory, grouped by recipient.
type NotificationStore struct {
	mu    sync.RWMutex
	byRcp map[string][]domain.Notification
}

// Ensure NotificationStore implements store.NotificationStore interface
var _ store.NotificationStore = (*NotificationStore)(nil)

// NewNotificationStore returns an empty store.
func NewNotificationStore() *NotificationStore {
	return &NotificationStore{byRcp: make(map[string][]domain.Notification)}
}

// Create implements store.NotificationStore.Create
func (s *NotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	if err := n.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	key := domain.CanonicalID(n.Recipient)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byRcp[key] {
		if existing.ID == n.ID {
			return fmt.Errorf("%w: notification %s", store.ErrDuplicate, n.ID)
		}
	}
	s.byRcp[key] = append(s.byRcp[key], *n)
	return nil
}

// ListByRecipient implements store.NotificationStore.ListByRecipient
func (s *NotificationStore) ListByRecipient(
	ctx context.Context,
	recipient string,
	limit int,
) ([]domain.Notification, error) {
	s.mu.RLock()
	src := s.byRcp[domain.CanonicalID(recipient)]
	list := make([]domain.Notification, len(src))
	copy(list, src)
	s.mu.RUnlock()

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// CountUnread implements store.NotificationStore.CountUnread
func (s *NotificationStore) CountUnread(ctx context.Context, recipient string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, n := range s.byRcp[domain.CanonicalID(recipient)] {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

// MarkRead implements store.NotificationStore.MarkRead
func (s *NotificationStore) MarkRead(ctx context.Context, recipient string, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.byRcp[domain.CanonicalID(recipient)]
	for i := range list {
		if list[i].ID == id {
			list[i].Read = true
			return nil
		}
	}
	return store.ErrNotificationNotFound
}

// MarkAllRead implements store.NotificationStore.MarkAllRead
func (s *NotificationStore) MarkAllRead(ctx context.Context, recipient string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := 0
	list := s.byRcp[domain.CanonicalID(recipient)]
	for i := range list {
		if !list[i].Read {
			list[i].Read = true
			changed++
		}
	}
	return changed, nil
}

// WithTx returns the store itself; memory writes are applied immediately.
func (s *NotificationStore) WithTx(tx *sql.Tx) store.NotificationStore {
	return s
}
