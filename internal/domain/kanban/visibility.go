package kanban

import "github.com/phrazzld/teamboard/internal/domain"

// Visible reports whether actor may see task on the board. Admins see
// everything, managers see tasks they created, assigned, review or work on,
// and everyone else sees the tasks assigned to them.
func Visible(actor domain.Actor, task domain.Task) bool {
	switch {
	case actor.Has(domain.RoleAdmin):
		return true
	case actor.Has(domain.RoleManager):
		return actor.Is(task.CreatedBy) ||
			actor.Is(task.AssignedBy) ||
			actor.Is(task.Reviewer) ||
			actor.Is(task.AssignedTo)
	default:
		return actor.Is(task.AssignedTo)
	}
}

// VisibleTasks returns the tasks actor may see, in their original order.
func VisibleTasks(actor domain.Actor, tasks []domain.Task) []domain.Task {
	visible := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if Visible(actor, t) {
			visible = append(visible, t)
		}
	}
	return visible
}
