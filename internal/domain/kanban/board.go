package kanban

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/phrazzld/teamboard/internal/domain"
)

// Status filter values besides the task statuses themselves.
const (
	FilterAll     = "ALL"
	FilterOverdue = "OVERDUE"
)

// Filter narrows the board to matching tasks.
type Filter struct {
	Search string `json:"search,omitempty"`
	Status string `json:"status"`
}

// ParseFilter builds a Filter from query values. An empty status means ALL.
func ParseFilter(search, status string) (Filter, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if status == "" {
		status = FilterAll
	}
	if status != FilterAll && status != FilterOverdue && !domain.TaskStatus(status).Valid() {
		return Filter{}, fmt.Errorf("%w: unknown status filter %q", domain.ErrValidation, status)
	}
	return Filter{Search: strings.TrimSpace(search), Status: status}, nil
}

// Matches reports whether task passes the filter at time now.
func (f Filter) Matches(task domain.Task, now time.Time) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(task.Title), q) &&
			!strings.Contains(strings.ToLower(task.Description), q) {
			return false
		}
	}
	switch f.Status {
	case "", FilterAll:
		return true
	case FilterOverdue:
		return task.IsOverdue(now)
	default:
		return string(task.Status) == f.Status
	}
}

// Column is one status lane of the board.
type Column struct {
	Status domain.TaskStatus `json:"status"`
	Label  string            `json:"label"`
	Count  int               `json:"count"`
	Tasks  []domain.Task     `json:"tasks"`
}

// Board is the laid-out kanban view for one actor.
type Board struct {
	Columns []Column `json:"columns"`
	Total   int      `json:"total"`
	Filter  Filter   `json:"filter"`
}

// BuildBoard lays out the tasks actor can see that pass the filter, one
// column per status in board order, each sorted by priority.
func BuildBoard(actor domain.Actor, tasks []domain.Task, f Filter, now time.Time) Board {
	byStatus := make(map[domain.TaskStatus][]domain.Task, len(domain.Statuses))
	total := 0
	for _, t := range tasks {
		if !Visible(actor, t) || !f.Matches(t, now) {
			continue
		}
		byStatus[t.Status] = append(byStatus[t.Status], t)
		total++
	}

	board := Board{Columns: make([]Column, 0, len(domain.Statuses)), Total: total, Filter: f}
	for _, status := range domain.Statuses {
		col := byStatus[status]
		if col == nil {
			col = []domain.Task{}
		}
		SortByPriority(col)
		board.Columns = append(board.Columns, Column{
			Status: status,
			Label:  status.Label(),
			Count:  len(col),
			Tasks:  col,
		})
	}
	return board
}

// SortByPriority orders tasks HIGH, MEDIUM, LOW, then unknown, keeping the
// existing order within a priority.
func SortByPriority(tasks []domain.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Priority.Rank() < tasks[j].Priority.Rank()
	})
}
