package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/phrazzld/teamboard/internal/backend"
	"github.com/phrazzld/teamboard/internal/domain"
)

// LoginRequest defines the payload for the login endpoint. The employee id
// may be given as "1" or "EMP001".
type LoginRequest struct {
	EmployeeID string `json:"employee_id" validate:"required,employee_id"`
	Password   string `json:"password"    validate:"required,max=72"`
}

// LoginResponse is returned on successful sign-in.
type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	TokenType    string       `json:"token_type"`
	IsFirstLogin bool         `json:"is_first_login"`
	ExpiresAt    string       `json:"expires_at,omitempty"`
	User         domain.Actor `json:"user"`
}

// ChangePasswordRequest defines the payload for changing one's own password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=6,max=72"`
}

// ForgotPasswordRequest starts a password reset.
type ForgotPasswordRequest struct {
	EmployeeID string `json:"employee_id" validate:"required,employee_id"`
}

// ForgotPasswordResponse carries the single-use reset token.
type ForgotPasswordResponse struct {
	ResetToken string `json:"reset_token"`
	Message    string `json:"message"`
}

// ResetPasswordRequest completes a password reset.
type ResetPasswordRequest struct {
	Token       string `json:"token"        validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
}

// MessageResponse is a plain confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	Title           string `json:"title"            validate:"required,max=200"`
	Description     string `json:"description"      validate:"required,max=5000"`
	Priority        string `json:"priority"         validate:"omitempty,priority"`
	ExpectedClosure string `json:"expected_closure" validate:"required"`
	AssignedTo      string `json:"assigned_to"      validate:"required,employee_id"`
	Reviewer        string `json:"reviewer"         validate:"required,employee_id"`
}

// ToNewTask converts the request, parsing the closure date.
func (r CreateTaskRequest) ToNewTask() (backend.NewTask, error) {
	closure, err := domain.ParseClosure(r.ExpectedClosure)
	if err != nil {
		return backend.NewTask{}, err
	}
	return backend.NewTask{
		Title:           r.Title,
		Description:     r.Description,
		Priority:        domain.Priority(r.Priority),
		ExpectedClosure: closure,
		AssignedTo:      r.AssignedTo,
		Reviewer:        r.Reviewer,
	}, nil
}

// UpdateTaskRequest defines the payload for a partial task update. Absent
// fields are left unchanged.
type UpdateTaskRequest struct {
	Title           *string `json:"title"            validate:"omitempty,min=1,max=200"`
	Description     *string `json:"description"      validate:"omitempty,min=1,max=5000"`
	Priority        *string `json:"priority"         validate:"omitempty,priority"`
	Status          *string `json:"status"           validate:"omitempty,task_status"`
	AssignedTo      *string `json:"assigned_to"      validate:"omitempty,employee_id"`
	Reviewer        *string `json:"reviewer"         validate:"omitempty,employee_id"`
	ExpectedClosure *string `json:"expected_closure"`
}

// ToPatch converts the request into a task patch.
func (r UpdateTaskRequest) ToPatch() (domain.TaskPatch, error) {
	p := domain.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		AssignedTo:  r.AssignedTo,
		Reviewer:    r.Reviewer,
	}
	if r.Priority != nil {
		pr := domain.Priority(*r.Priority)
		p.Priority = &pr
	}
	if r.Status != nil {
		st := domain.TaskStatus(*r.Status)
		p.Status = &st
	}
	if r.ExpectedClosure != nil {
		closure, err := domain.ParseClosure(*r.ExpectedClosure)
		if err != nil {
			return domain.TaskPatch{}, err
		}
		p.ExpectedClosure = &closure
	}
	return p, nil
}

// MoveTaskRequest moves a task to another board column. Status is matched
// case-insensitively.
type MoveTaskRequest struct {
	Status string `json:"status" validate:"required"`
	Remark string `json:"remark" validate:"max=2000"`
}

// AddRemarkRequest defines the payload for commenting on a task.
type AddRemarkRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// TaskListResponse wraps a list of tasks.
type TaskListResponse struct {
	Tasks []domain.Task `json:"tasks"`
	Count int           `json:"count"`
}

// CreateEmployeeRequest defines the payload for adding an employee.
type CreateEmployeeRequest struct {
	Name        string `json:"name"        validate:"required,max=100"`
	Email       string `json:"email"       validate:"required,email"`
	Designation string `json:"designation" validate:"required,max=100"`
	ManagerID   string `json:"mgr_id"`
	Department  string `json:"department"  validate:"max=100"`
	Avatar      string `json:"avatar"      validate:"omitempty,url"`
}

// ToEmployee converts the request into an employee record.
func (r CreateEmployeeRequest) ToEmployee() domain.Employee {
	return domain.Employee{
		Name:        r.Name,
		Email:       r.Email,
		Designation: r.Designation,
		ManagerID:   r.ManagerID,
		Department:  r.Department,
		Avatar:      r.Avatar,
	}
}

// UpdateEmployeeRequest defines a partial employee update. An empty or "0"
// mgr_id removes the manager.
type UpdateEmployeeRequest struct {
	Name        *string `json:"name"        validate:"omitempty,min=1,max=100"`
	Designation *string `json:"designation" validate:"omitempty,min=1,max=100"`
	ManagerID   *string `json:"mgr_id"`
}

// Validate rejects an update that changes nothing.
func (r *UpdateEmployeeRequest) Validate() error {
	if r.Name == nil && r.Designation == nil && r.ManagerID == nil {
		return fmt.Errorf("%w: no fields to update", domain.ErrValidation)
	}
	return nil
}

// ToUpdate converts the request.
func (r UpdateEmployeeRequest) ToUpdate() backend.EmployeeUpdate {
	return backend.EmployeeUpdate{Name: r.Name, Designation: r.Designation, ManagerID: r.ManagerID}
}

// TeamResponse lists a manager's direct reports.
type TeamResponse struct {
	ManagerID string            `json:"mgr_id"`
	Team      []domain.Employee `json:"team"`
}

// CreateUserRequest defines the payload for creating a sign-in account. An
// empty password applies the default one.
type CreateUserRequest struct {
	EmployeeID string `json:"e_id"     validate:"required,employee_id"`
	Role       string `json:"role"     validate:"required"`
	Password   string `json:"password" validate:"omitempty,min=6,max=72"`
}

// ToNewUser converts the request, accepting the role in any case.
func (r CreateUserRequest) ToNewUser() (backend.NewUser, error) {
	role, err := domain.ParseRole(r.Role)
	if err != nil {
		return backend.NewUser{}, err
	}
	return backend.NewUser{EmployeeID: r.EmployeeID, Role: role, Password: r.Password}, nil
}

// UpdateUserRequest changes a user's role or status.
type UpdateUserRequest struct {
	Role   *string `json:"role"`
	Status *string `json:"status"`
}

// ToUpdate converts the request, accepting values in any case.
func (r UpdateUserRequest) ToUpdate() (backend.UserUpdate, error) {
	var u backend.UserUpdate
	if r.Role == nil && r.Status == nil {
		return u, fmt.Errorf("%w: no fields to update", domain.ErrValidation)
	}
	if r.Role != nil {
		role, err := domain.ParseRole(*r.Role)
		if err != nil {
			return u, err
		}
		u.Role = &role
	}
	if r.Status != nil {
		st, err := domain.ParseUserStatus(*r.Status)
		if err != nil {
			return u, err
		}
		u.Status = &st
	}
	return u, nil
}

// NotificationListResponse is a page of the caller's notification feed.
type NotificationListResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	Unread        int                   `json:"unread"`
}

// UnreadCountResponse carries the caller's unread notification count.
type UnreadCountResponse struct {
	Count int `json:"count"`
}

// MarkAllReadResponse reports how many notifications were marked read.
type MarkAllReadResponse struct {
	Updated int `json:"updated"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

func parseStatus(s string) (domain.TaskStatus, error) {
	return domain.ParseTaskStatus(strings.ReplaceAll(strings.TrimSpace(s), " ", "_"))
}
