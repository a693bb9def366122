package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Audit actions recorded for dashboard operations.
const (
	ActionLogin          = "LOGIN"
	ActionCreateTask     = "CREATE_TASK"
	ActionUpdateTask     = "UPDATE_TASK"
	ActionMoveTask       = "MOVE_TASK"
	ActionDeleteTask     = "DELETE_TASK"
	ActionCreateRemark   = "CREATE_REMARK"
	ActionCreateEmployee = "CREATE_EMPLOYEE"
	ActionUpdateEmployee = "UPDATE_EMPLOYEE"
	ActionDeleteEmployee = "DELETE_EMPLOYEE"
	ActionCreateUser     = "CREATE_USER"
	ActionUpdateUser     = "UPDATE_USER"
	ActionDeleteUser     = "DELETE_USER"
	ActionChangePassword = "CHANGE_PASSWORD"
)

// Audit entity types.
const (
	EntityTask     = "TASK"
	EntityEmployee = "EMPLOYEE"
	EntityUser     = "USER"
)

// AuditEntry records who did what to which entity.
type AuditEntry struct {
	ID          uuid.UUID `json:"id"`
	Action      string    `json:"action"`
	EntityType  string    `json:"entity_type"`
	EntityID    string    `json:"entity_id"`
	PerformedBy string    `json:"performed_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewAuditEntry creates an audit entry timestamped now.
func NewAuditEntry(action, entityType, entityID, performedBy string) (*AuditEntry, error) {
	e := &AuditEntry{
		ID:          uuid.New(),
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		PerformedBy: performedBy,
		CreatedAt:   time.Now().UTC(),
	}
	if strings.TrimSpace(action) == "" || strings.TrimSpace(entityType) == "" {
		return nil, fmt.Errorf("%w: audit action and entity type are required", ErrValidation)
	}
	if strings.TrimSpace(performedBy) == "" {
		return nil, fmt.Errorf("%w: audit actor is required", ErrValidation)
	}
	return e, nil
}
