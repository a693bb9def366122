package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/teamboard/internal/domain"
)

// EventType names something that happened on the dashboard.
type EventType string

const (
	TaskCreated     EventType = "task.created"
	TaskUpdated     EventType = "task.updated"
	TaskMoved       EventType = "task.moved"
	TaskDeleted     EventType = "task.deleted"
	RemarkAdded     EventType = "remark.added"
	EmployeeCreated EventType = "employee.created"
	EmployeeUpdated EventType = "employee.updated"
	EmployeeDeleted EventType = "employee.deleted"
	UserCreated     EventType = "user.created"
	UserUpdated     EventType = "user.updated"
	UserDeleted     EventType = "user.deleted"
	UserLoggedIn    EventType = "user.logged_in"
	PasswordChanged EventType = "user.password_changed"
)

// BoardEvent describes one dashboard action.
type BoardEvent struct {
	ID    uuid.UUID
	Type  EventType
	Actor domain.Actor

	// Task is a snapshot of the task after the action, for task events.
	Task *domain.Task
	// From and To are the columns of a move.
	From domain.TaskStatus
	To   domain.TaskStatus
	// Remark is the text of a new remark or of the remark sent with a move.
	Remark string
	// Assigned is set when the action gave the task a new assignee.
	Assigned bool

	// EntityType and EntityID identify the affected record.
	EntityType string
	EntityID   string

	CreatedAt time.Time
}

func newEvent(typ EventType, actor domain.Actor, entityType, entityID string) *BoardEvent {
	return &BoardEvent{
		ID:         uuid.New(),
		Type:       typ,
		Actor:      actor,
		EntityType: entityType,
		EntityID:   entityID,
		CreatedAt:  time.Now().UTC(),
	}
}

// NewTaskEvent creates an event about task. The task is copied.
func NewTaskEvent(typ EventType, actor domain.Actor, task domain.Task) *BoardEvent {
	e := newEvent(typ, actor, domain.EntityTask, task.ID)
	snapshot := task.Clone()
	e.Task = &snapshot
	return e
}

// NewMoveEvent creates a TaskMoved event.
func NewMoveEvent(actor domain.Actor, task domain.Task, from, to domain.TaskStatus, remark string) *BoardEvent {
	e := NewTaskEvent(TaskMoved, actor, task)
	e.From = from
	e.To = to
	e.Remark = remark
	return e
}

// NewRemarkEvent creates a RemarkAdded event.
func NewRemarkEvent(actor domain.Actor, task domain.Task, remark string) *BoardEvent {
	e := NewTaskEvent(RemarkAdded, actor, task)
	e.Remark = remark
	return e
}

// NewEntityEvent creates an event about an employee or user record.
func NewEntityEvent(typ EventType, actor domain.Actor, entityType, entityID string) *BoardEvent {
	return newEvent(typ, actor, entityType, entityID)
}

// AuditAction returns the audit action recorded for the event, or "" when
// the event is not audited.
func (e *BoardEvent) AuditAction() string {
	switch e.Type {
	case TaskCreated:
		return domain.ActionCreateTask
	case TaskUpdated:
		return domain.ActionUpdateTask
	case TaskMoved:
		return domain.ActionMoveTask
	case TaskDeleted:
		return domain.ActionDeleteTask
	case RemarkAdded:
		return domain.ActionCreateRemark
	case EmployeeCreated:
		return domain.ActionCreateEmployee
	case EmployeeUpdated:
		return domain.ActionUpdateEmployee
	case EmployeeDeleted:
		return domain.ActionDeleteEmployee
	case UserCreated:
		return domain.ActionCreateUser
	case UserUpdated:
		return domain.ActionUpdateUser
	case UserDeleted:
		return domain.ActionDeleteUser
	case UserLoggedIn:
		return domain.ActionLogin
	case PasswordChanged:
		return domain.ActionChangePassword
	default:
		return ""
	}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *BoardEvent) error
}

// HandlerFunc adapts a function to the EventHandler interface.
type HandlerFunc func(ctx context.Context, event *BoardEvent) error

// HandleEvent implements EventHandler.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *BoardEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *BoardEvent) error
}
