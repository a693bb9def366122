package kanban

import (
	"testing"
	"time"

	"github.com/phrazzld/teamboard/internal/domain"
	"github.com/stretchr/testify/assert"
)

var (
	admin     = domain.Actor{EmployeeID: "1", Roles: []domain.Role{domain.RoleAdmin}}
	manager   = domain.Actor{EmployeeID: "2", Roles: []domain.Role{domain.RoleManager}}
	developer = domain.Actor{EmployeeID: "3", Roles: []domain.Role{domain.RoleDeveloper}}
	stranger  = domain.Actor{EmployeeID: "9", Roles: []domain.Role{domain.RoleDeveloper}}
	reviewer  = domain.Actor{EmployeeID: "4"}
)

func boardTask(status domain.TaskStatus) domain.Task {
	return domain.Task{
		ID:              "10",
		Title:           "Ship login page",
		Description:     "Build and test the login form",
		CreatedBy:       "2",
		AssignedTo:      "EMP003",
		AssignedBy:      "2",
		Reviewer:        "4",
		Priority:        domain.PriorityMedium,
		Status:          status,
		ExpectedClosure: time.Date(2025, time.June, 1, 23, 59, 59, 0, time.UTC),
	}
}

func TestAllowed(t *testing.T) {
	const (
		todo   = domain.StatusToDo
		prog   = domain.StatusInProgress
		review = domain.StatusReview
		done   = domain.StatusDone
	)

	tests := []struct {
		name  string
		actor domain.Actor
		from  domain.TaskStatus
		to    domain.TaskStatus
		want  bool
	}{
		{"admin any move", admin, done, todo, true},
		{"admin skip ahead", admin, todo, done, true},

		{"developer starts own task", developer, todo, prog, true},
		{"developer submits own task", developer, prog, review, true},
		{"developer cannot finish", developer, review, done, false},
		{"developer cannot go back", developer, prog, todo, false},
		{"developer cannot skip", developer, todo, review, false},
		{"developer not assignee", stranger, todo, prog, false},

		{"reviewer approves", reviewer, review, done, true},
		{"reviewer sends back", reviewer, review, prog, true},
		{"reviewer cannot start", reviewer, todo, prog, false},

		{"manager approves", manager, review, done, true},
		{"manager sends back", manager, review, prog, true},
		{"manager starts", manager, todo, prog, true},
		{"manager submits", manager, prog, review, true},
		{"manager cannot reopen", manager, done, review, false},
		{"manager cannot skip to done", manager, prog, done, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Allowed(tc.actor, boardTask(tc.from), tc.from, tc.to))
		})
	}
}

func TestAllowedDeveloperWhoReviews(t *testing.T) {
	// The developer rule decides before the reviewer rule.
	dev := domain.Actor{EmployeeID: "4", Roles: []domain.Role{domain.RoleDeveloper}}
	task := boardTask(domain.StatusReview)
	assert.False(t, Allowed(dev, task, domain.StatusReview, domain.StatusDone))
}

func TestCheckMove(t *testing.T) {
	t.Run("send back needs remark", func(t *testing.T) {
		err := CheckMove(reviewer, boardTask(domain.StatusReview), domain.StatusInProgress, "  ")
		assert.ErrorIs(t, err, ErrRemarkRequired)
	})

	t.Run("send back with remark", func(t *testing.T) {
		err := CheckMove(reviewer, boardTask(domain.StatusReview), domain.StatusInProgress, "needs tests")
		assert.NoError(t, err)
	})

	t.Run("denied", func(t *testing.T) {
		err := CheckMove(stranger, boardTask(domain.StatusToDo), domain.StatusInProgress, "")
		assert.ErrorIs(t, err, ErrTransitionNotAllowed)
	})

	t.Run("unknown target", func(t *testing.T) {
		err := CheckMove(admin, boardTask(domain.StatusToDo), "ARCHIVED", "")
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	})
}

func TestTargets(t *testing.T) {
	assert.Equal(t,
		[]domain.TaskStatus{domain.StatusInProgress},
		Targets(developer, boardTask(domain.StatusToDo)))
	assert.Equal(t,
		[]domain.TaskStatus{domain.StatusInProgress, domain.StatusDone},
		Targets(reviewer, boardTask(domain.StatusReview)))
	assert.Empty(t, Targets(stranger, boardTask(domain.StatusToDo)))
	assert.Len(t, Targets(admin, boardTask(domain.StatusToDo)), 3)
}

func TestRequiresRemark(t *testing.T) {
	assert.True(t, RequiresRemark(domain.StatusReview, domain.StatusInProgress))
	assert.False(t, RequiresRemark(domain.StatusReview, domain.StatusDone))
	assert.False(t, RequiresRemark(domain.StatusInProgress, domain.StatusReview))
}
