package kanban

import (
	"errors"
	"fmt"
	"strings"

	"github.com/phrazzld/teamboard/internal/domain"
)

var (
	// ErrTransitionNotAllowed is returned when the actor may not move the task
	// between the requested columns.
	ErrTransitionNotAllowed = errors.New("status transition not allowed")

	// ErrRemarkRequired is returned when a task is sent back from review
	// without an explanation.
	ErrRemarkRequired = errors.New("a remark is required to send a task back")
)

// Allowed reports whether actor may move task from one column to another.
// The first matching rule decides: admins may make any move; developers may
// only advance their own tasks up to review; reviewers and managers may
// settle tasks in review, and managers may also advance tasks up to review.
func Allowed(actor domain.Actor, task domain.Task, from, to domain.TaskStatus) bool {
	if actor.Has(domain.RoleAdmin) {
		return true
	}

	if actor.Has(domain.RoleDeveloper) {
		if !actor.Is(task.AssignedTo) {
			return false
		}
		return isAdvance(from, to)
	}

	isReviewer := actor.Is(task.Reviewer)
	isManager := actor.Has(domain.RoleManager)
	if isReviewer || isManager {
		if from == domain.StatusReview && (to == domain.StatusInProgress || to == domain.StatusDone) {
			return true
		}
		if isManager && isAdvance(from, to) {
			return true
		}
	}

	return false
}

// isAdvance covers the two forward steps below review.
func isAdvance(from, to domain.TaskStatus) bool {
	return (from == domain.StatusToDo && to == domain.StatusInProgress) ||
		(from == domain.StatusInProgress && to == domain.StatusReview)
}

// RequiresRemark reports whether a move needs an accompanying remark.
func RequiresRemark(from, to domain.TaskStatus) bool {
	return from == domain.StatusReview && to == domain.StatusInProgress
}

// CheckMove validates moving task to the given column with the given remark.
// A move to the task's current column is not checked here; callers treat it
// as a no-op.
func CheckMove(actor domain.Actor, task domain.Task, to domain.TaskStatus, remark string) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, to)
	}
	from := task.Status
	if !Allowed(actor, task, from, to) {
		return fmt.Errorf("%w: %s to %s", ErrTransitionNotAllowed, from, to)
	}
	if RequiresRemark(from, to) && strings.TrimSpace(remark) == "" {
		return ErrRemarkRequired
	}
	return nil
}

// Targets lists the columns the actor may move task into.
func Targets(actor domain.Actor, task domain.Task) []domain.TaskStatus {
	var targets []domain.TaskStatus
	for _, to := range domain.Statuses {
		if to != task.Status && Allowed(actor, task, task.Status, to) {
			targets = append(targets, to)
		}
	}
	return targets
}
