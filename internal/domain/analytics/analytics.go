// Package analytics computes the dashboard's summary figures from the tasks
// and employees an actor can see.
package analytics

import (
	"math"
	"time"

	"github.com/phrazzld/teamboard/internal/domain"
	"github.com/phrazzld/teamboard/internal/domain/kanban"
)

// DefaultWorkloadLimit is the number of employees listed in the workload
// breakdown when no limit is given.
const DefaultWorkloadLimit = 6

// StatusCounts counts tasks per board column.
type StatusCounts struct {
	ToDo       int `json:"todo"`
	InProgress int `json:"in_progress"`
	Review     int `json:"review"`
	Done       int `json:"done"`
}

// PriorityCounts counts tasks per priority.
type PriorityCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Totals holds the headline figures.
type Totals struct {
	Tasks          int     `json:"tasks"`
	Completed      int     `json:"completed"`
	InProgress     int     `json:"in_progress"`
	Overdue        int     `json:"overdue"`
	Employees      int     `json:"employees"`
	CompletionRate float64 `json:"completion_rate"`
}

// Workload is one employee's share of the visible tasks.
type Workload struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Assigned   int    `json:"assigned"`
	Completed  int    `json:"completed"`
}

// Summary is the analytics view for one actor.
type Summary struct {
	Totals     Totals         `json:"totals"`
	ByStatus   StatusCounts   `json:"by_status"`
	ByPriority PriorityCounts `json:"by_priority"`
	Workload   []Workload     `json:"workload"`
	MyTasks    int            `json:"my_tasks"`
}

// Compute summarizes the tasks visible to actor. employees is the directory
// scope for the workload breakdown; limit caps its length.
func Compute(
	actor domain.Actor,
	tasks []domain.Task,
	employees []domain.Employee,
	now time.Time,
	limit int,
) Summary {
	if limit <= 0 {
		limit = DefaultWorkloadLimit
	}

	visible := kanban.VisibleTasks(actor, tasks)
	var s Summary

	for _, t := range visible {
		switch t.Status {
		case domain.StatusToDo:
			s.ByStatus.ToDo++
		case domain.StatusInProgress:
			s.ByStatus.InProgress++
		case domain.StatusReview:
			s.ByStatus.Review++
		case domain.StatusDone:
			s.ByStatus.Done++
		}
		switch t.Priority {
		case domain.PriorityHigh:
			s.ByPriority.High++
		case domain.PriorityMedium:
			s.ByPriority.Medium++
		case domain.PriorityLow:
			s.ByPriority.Low++
		}
		if t.IsOverdue(now) {
			s.Totals.Overdue++
		}
		if actor.Is(t.AssignedTo) {
			s.MyTasks++
		}
	}

	s.Totals.Tasks = len(visible)
	s.Totals.Completed = s.ByStatus.Done
	s.Totals.InProgress = s.ByStatus.InProgress
	s.Totals.Employees = len(employees)
	s.Totals.CompletionRate = CompletionRate(s.ByStatus.Done, len(visible))

	s.Workload = make([]Workload, 0, min(limit, len(employees)))
	for i, e := range employees {
		if i >= limit {
			break
		}
		w := Workload{EmployeeID: e.ID, Name: e.Name}
		for _, t := range visible {
			if domain.SameID(t.AssignedTo, e.ID) {
				w.Assigned++
				if t.Status == domain.StatusDone {
					w.Completed++
				}
			}
		}
		s.Workload = append(s.Workload, w)
	}

	return s
}

// CompletionRate is done/total as a percentage rounded to one decimal place.
func CompletionRate(done, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(done)/float64(total)*1000) / 10
}
