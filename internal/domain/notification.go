package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies a dashboard notification.
type NotificationType string

const (
	NotificationTaskAssigned  NotificationType = "TASK_ASSIGNED"
	NotificationStatusChanged NotificationType = "STATUS_CHANGED"
	NotificationTaskCompleted NotificationType = "TASK_COMPLETED"
	NotificationRemarkAdded   NotificationType = "REMARK_ADDED"
)

// Valid reports whether t is a known notification type.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTaskAssigned, NotificationStatusChanged,
		NotificationTaskCompleted, NotificationRemarkAdded:
		return true
	}
	return false
}

// Notification is a message shown to one recipient in the dashboard.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	Recipient string           `json:"recipient"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	TaskID    string           `json:"task_id,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewNotification creates an unread notification and validates it.
func NewNotification(
	recipient string,
	typ NotificationType,
	title, message, taskID string,
) (*Notification, error) {
	n := &Notification{
		ID:        uuid.New(),
		Recipient: recipient,
		Type:      typ,
		Title:     title,
		Message:   message,
		TaskID:    taskID,
		CreatedAt: time.Now().UTC(),
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}

// Validate checks the notification's fields.
func (n *Notification) Validate() error {
	if n.ID == uuid.Nil {
		return ErrInvalidID
	}
	if strings.TrimSpace(n.Recipient) == "" {
		return fmt.Errorf("%w: recipient is required", ErrValidation)
	}
	if !n.Type.Valid() {
		return fmt.Errorf("%w: unknown notification type %q", ErrValidation, n.Type)
	}
	if strings.TrimSpace(n.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}
