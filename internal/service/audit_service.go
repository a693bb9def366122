package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/teamboard/internal/domain"
	"github.com/phrazzld/teamboard/internal/service/auth"
	"github.com/phrazzld/teamboard/internal/store"
)

// AuditService exposes the audit trail to administrators.
type AuditService interface {
	List(ctx context.Context, s auth.Session, filter store.AuditFilter) ([]domain.AuditEntry, error)
}

type auditService struct {
	store  store.AuditStore
	logger *slog.Logger
}

var _ AuditService = (*auditService)(nil)

// NewAuditService creates an AuditService.
func NewAuditService(auditStore store.AuditStore, logger *slog.Logger) (AuditService, error) {
	if auditStore == nil {
		return nil, fmt.Errorf("audit store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &auditService{
		store:  auditStore,
		logger: logger.With(slog.String("component", "audit_service")),
	}, nil
}

func (a *auditService) List(
	ctx context.Context,
	s auth.Session,
	filter store.AuditFilter,
) ([]domain.AuditEntry, error) {
	if err := requireRole(s, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if filter.EntityID != "" {
		filter.EntityID = domain.CanonicalID(filter.EntityID)
	}
	if filter.PerformedBy != "" {
		filter.PerformedBy = domain.CanonicalID(filter.PerformedBy)
	}
	entries, err := a.store.List(ctx, filter)
	if err != nil {
		return nil, NewServiceError("audit", "List", "failed to list audit entries", err)
	}
	return entries, nil
}
