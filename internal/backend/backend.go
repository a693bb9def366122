package backend

import (
	"context"
	"time"

	"github.com/phrazzld/teamboard/internal/domain"
)

// LoginResult is the backend's answer to a successful login.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	FirstLogin  bool   `json:"is_first_login"`
}

// NewTask is the data needed to create a task.
type NewTask struct {
	Title           string
	Description     string
	Priority        domain.Priority
	ExpectedClosure time.Time
	AssignedTo      string
	Reviewer        string
}

// EmployeeUpdate is a partial update of an employee. Nil fields are left
// unchanged; an empty ManagerID clears the manager.
type EmployeeUpdate struct {
	Name        *string
	Designation *string
	ManagerID   *string
}

// NewUser is the data needed to create a sign-in account for an employee.
// An empty Password lets the backend apply its default.
type NewUser struct {
	EmployeeID string
	Role       domain.Role
	Password   string
}

// UserUpdate is a partial update of a user account.
type UserUpdate struct {
	Role   *domain.Role
	Status *domain.UserStatus
}

// AuthBackend covers sign-in and password management.
type AuthBackend interface {
	Login(ctx context.Context, employeeID int, password string) (*LoginResult, error)
	ChangePassword(ctx context.Context, token, currentPassword, newPassword string) error
	ForgotPassword(ctx context.Context, employeeID int) (resetToken string, err error)
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
}

// TaskBackend covers tasks and their remarks. Every call runs with the
// caller's bearer token, so the backend applies its own authorization.
type TaskBackend interface {
	ListTasks(ctx context.Context, token string) ([]domain.Task, error)
	CreateTask(ctx context.Context, token string, task NewTask) (*domain.Task, error)
	UpdateTask(ctx context.Context, token, id string, patch domain.TaskPatch) (*domain.Task, error)
	DeleteTask(ctx context.Context, token, id string) error
	ListRemarks(ctx context.Context, token, taskID string) ([]domain.Remark, error)
	AddRemark(ctx context.Context, token, taskID, content string) (*domain.Remark, error)
}

// DirectoryBackend covers employees and user accounts.
type DirectoryBackend interface {
	ListEmployees(ctx context.Context, token string) ([]domain.Employee, error)
	MyTeam(ctx context.Context, token string) ([]domain.Employee, error)
	GetEmployee(ctx context.Context, token, id string) (*domain.Employee, error)
	CreateEmployee(ctx context.Context, token string, employee domain.Employee) (*domain.Employee, error)
	UpdateEmployee(ctx context.Context, token, id string, update EmployeeUpdate) (*domain.Employee, error)
	DeleteEmployee(ctx context.Context, token, id string) error

	ListUsers(ctx context.Context, token string) ([]domain.User, error)
	CreateUser(ctx context.Context, token string, user NewUser) (*domain.User, error)
	UpdateUser(ctx context.Context, token, id string, update UserUpdate) (*domain.User, error)
	DeleteUser(ctx context.Context, token, id string) error
}

// Backend is the full upstream surface.
type Backend interface {
	AuthBackend
	TaskBackend
	DirectoryBackend
}
