package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/teamboard/internal/domain"
	"github.com/phrazzld/teamboard/internal/platform/logger"
	"github.com/phrazzld/teamboard/internal/store"
)

// AuditHandler records audited events in the audit store.
type AuditHandler struct {
	store  store.AuditStore
	logger *slog.Logger
}

// Ensure AuditHandler implements EventHandler interface
var _ EventHandler = (*AuditHandler)(nil)

// NewAuditHandler creates a handler writing to s.
func NewAuditHandler(s store.AuditStore, logger *slog.Logger) *AuditHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditHandler{store: s, logger: logger.With("component", "audit_handler")}
}

// HandleEvent implements EventHandler.
func (h *AuditHandler) HandleEvent(ctx context.Context, event *BoardEvent) error {
	action := event.AuditAction()
	if action == "" {
		return nil
	}
	log := logger.FromContextOrDefault(ctx, h.logger)

	entry, err := domain.NewAuditEntry(action, event.EntityType,
		domain.CanonicalID(event.EntityID), domain.CanonicalID(event.Actor.EmployeeID))
	if err != nil {
		log.Warn("skipping invalid audit entry",
			"error", err,
			"event_id", event.ID,
			"event_type", event.Type)
		return nil
	}
	entry.CreatedAt = event.CreatedAt

	if err := h.store.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to record %s: %w", action, err)
	}
	log.Debug("audit entry recorded",
		"action", action,
		"entity_type", entry.EntityType,
		"entity_id", entry.EntityID)
	return nil
}
