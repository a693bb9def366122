package domain

import (
	"strings"
	"time"
)

// Task is a unit of work tracked on the kanban board.
type Task struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	CreatedBy       string     `json:"created_by"`
	AssignedTo      string     `json:"assigned_to,omitempty"`
	AssignedBy      string     `json:"assigned_by,omitempty"`
	AssignedAt      *time.Time `json:"assigned_at,omitempty"`
	UpdatedBy       string     `json:"updated_by,omitempty"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
	Priority        Priority   `json:"priority"`
	Status          TaskStatus `json:"status"`
	Reviewer        string     `json:"reviewer,omitempty"`
	ExpectedClosure time.Time  `json:"expected_closure"`
	ActualClosure   *time.Time `json:"actual_closure,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	Remarks         []Remark   `json:"remarks"`
}

// Validate checks the fields every stored task must carry.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if !t.Priority.Valid() {
		return ErrInvalidPriority
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	if t.ExpectedClosure.IsZero() {
		return ErrMissingClosure
	}
	return nil
}

// IsOverdue reports whether the task missed its expected closure without
// being finished.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.Status != StatusDone && !t.ExpectedClosure.IsZero() && t.ExpectedClosure.Before(now)
}

// Clone returns a deep copy of the task, safe to mutate independently.
func (t Task) Clone() Task {
	c := t
	c.AssignedAt = cloneTime(t.AssignedAt)
	c.UpdatedAt = cloneTime(t.UpdatedAt)
	c.ActualClosure = cloneTime(t.ActualClosure)
	if t.Remarks != nil {
		c.Remarks = make([]Remark, len(t.Remarks))
		copy(c.Remarks, t.Remarks)
	}
	return c
}

// TaskPatch is a partial update of a task. Nil fields are left unchanged.
type TaskPatch struct {
	Title           *string     `json:"title,omitempty"`
	Description     *string     `json:"description,omitempty"`
	Priority        *Priority   `json:"priority,omitempty"`
	Status          *TaskStatus `json:"status,omitempty"`
	AssignedTo      *string     `json:"assigned_to,omitempty"`
	Reviewer        *string     `json:"reviewer,omitempty"`
	ExpectedClosure *time.Time  `json:"expected_closure,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.Status == nil && p.AssignedTo == nil && p.Reviewer == nil &&
		p.ExpectedClosure == nil
}

// Validate checks the fields present in the patch.
func (p TaskPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrEmptyTitle
	}
	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		return ErrEmptyDescription
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return ErrInvalidPriority
	}
	if p.Status != nil && !p.Status.Valid() {
		return ErrInvalidStatus
	}
	if p.AssignedTo != nil {
		if _, err := NormalizeID(*p.AssignedTo); err != nil {
			return err
		}
	}
	if p.Reviewer != nil {
		if _, err := NormalizeID(*p.Reviewer); err != nil {
			return err
		}
	}
	return nil
}

// Apply writes the patch onto t on behalf of actorID. Reassignment records
// who assigned the task and when; finishing a task records its closure.
func (p TaskPatch) Apply(t *Task, actorID string, now time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.AssignedTo != nil && !SameID(*p.AssignedTo, t.AssignedTo) {
		t.AssignedTo = *p.AssignedTo
		t.AssignedBy = actorID
		t.AssignedAt = timePtr(now)
	}
	if p.Reviewer != nil {
		t.Reviewer = *p.Reviewer
	}
	if p.ExpectedClosure != nil {
		t.ExpectedClosure = *p.ExpectedClosure
	}
	if p.Status != nil && *p.Status != t.Status {
		t.Status = *p.Status
		if t.Status == StatusDone {
			t.ActualClosure = timePtr(now)
		}
	}
	t.UpdatedBy = actorID
	t.UpdatedAt = timePtr(now)
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
