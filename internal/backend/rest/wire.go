package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/teamboard/internal/domain"
)

// flexID decodes identifiers the backend sends as numbers, strings, null or
// Mongo-style {"$oid": "..."} objects.
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*id = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexID(s)
	case data[0] == '{':
		var oid struct {
			OID string `json:"$oid"`
		}
		if err := json.Unmarshal(data, &oid); err != nil {
			return err
		}
		*id = flexID(oid.OID)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*id = flexID(n.String())
	}
	return nil
}

func (id flexID) String() string {
	return strings.TrimSpace(string(id))
}

// flexTime decodes the backend's timestamps, which usually lack a zone.
type flexTime struct {
	time.Time
	Valid bool
}

func (t *flexTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = flexTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if strings.TrimSpace(s) == "" {
		*t = flexTime{}
		return nil
	}
	parsed, err := domain.ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = flexTime{Time: parsed, Valid: true}
	return nil
}

func (t flexTime) ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func firstID(ids ...flexID) string {
	for _, id := range ids {
		if s := id.String(); s != "" {
			return s
		}
	}
	return ""
}

// wireID converts a dashboard identifier to the backend's integer form.
func wireID(id string) (int, error) {
	return domain.NormalizeID(id)
}

type wireEmployee struct {
	EID         flexID   `json:"e_id"`
	ID          flexID   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Designation string   `json:"designation"`
	ManagerID   flexID   `json:"mgr_id"`
	Department  string   `json:"department"`
	Avatar      string   `json:"profile_picture"`
	CreatedAt   flexTime `json:"created_at"`
}

func (w wireEmployee) toDomain() domain.Employee {
	return domain.Employee{
		ID:          firstID(w.EID, w.ID),
		Name:        w.Name,
		Email:       w.Email,
		Designation: w.Designation,
		ManagerID:   domain.NormalizeManagerID(w.ManagerID.String()),
		Department:  w.Department,
		Avatar:      w.Avatar,
		CreatedAt:   w.CreatedAt.Time,
	}
}

type wireUser struct {
	EID               flexID        `json:"e_id"`
	Role              string        `json:"role"`
	Roles             []string      `json:"roles"`
	Status            string        `json:"status"`
	PasswordChangedAt flexTime      `json:"password_changed_at"`
	CreatedAt         flexTime      `json:"created_at"`
	UpdatedAt         flexTime      `json:"updated_at"`
	Employee          *wireEmployee `json:"employee"`
}

func (w wireUser) toDomain() domain.User {
	u := domain.User{
		EmployeeID:        w.EID.String(),
		Status:            domain.UserStatus(strings.ToUpper(w.Status)),
		PasswordChangedAt: w.PasswordChangedAt.ptr(),
		CreatedAt:         w.CreatedAt.Time,
		UpdatedAt:         w.UpdatedAt.Time,
	}
	names := w.Roles
	if w.Role != "" {
		names = append([]string{w.Role}, names...)
	}
	for _, name := range names {
		if r, err := domain.ParseRole(name); err == nil && !u.HasRole(r) {
			u.Roles = append(u.Roles, r)
		}
	}
	if w.Employee != nil {
		e := w.Employee.toDomain()
		u.Employee = &e
	}
	return u
}

type wireTask struct {
	TID             flexID   `json:"t_id"`
	ID              flexID   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Priority        string   `json:"priority"`
	Status          string   `json:"status"`
	CreatedBy       flexID   `json:"created_by"`
	AssignedTo      flexID   `json:"assigned_to"`
	AssignedBy      flexID   `json:"assigned_by"`
	AssignedAt      flexTime `json:"assigned_at"`
	UpdatedBy       flexID   `json:"updated_by"`
	UpdatedAt       flexTime `json:"updated_at"`
	Reviewer        flexID   `json:"reviewer"`
	ExpectedClosure flexTime `json:"expected_closure"`
	ActualClosure   flexTime `json:"actual_closure"`
	CreatedAt       flexTime `json:"created_at"`
}

func (w wireTask) toDomain() domain.Task {
	return domain.Task{
		ID:              firstID(w.TID, w.ID),
		Title:           w.Title,
		Description:     w.Description,
		CreatedBy:       w.CreatedBy.String(),
		AssignedTo:      w.AssignedTo.String(),
		AssignedBy:      w.AssignedBy.String(),
		AssignedAt:      w.AssignedAt.ptr(),
		UpdatedBy:       w.UpdatedBy.String(),
		UpdatedAt:       w.UpdatedAt.ptr(),
		Priority:        domain.Priority(strings.ToUpper(w.Priority)),
		Status:          domain.TaskStatus(strings.ToUpper(w.Status)),
		Reviewer:        w.Reviewer.String(),
		ExpectedClosure: w.ExpectedClosure.Time,
		ActualClosure:   w.ActualClosure.ptr(),
		CreatedAt:       w.CreatedAt.Time,
		Remarks:         []domain.Remark{},
	}
}

type wireRemark struct {
	ID          flexID   `json:"id"`
	MongoID     flexID   `json:"_id"`
	RemarkID    flexID   `json:"remark_id"`
	TaskID      flexID   `json:"task_id"`
	Comment     string   `json:"comment"`
	Content     string   `json:"content"`
	CommentedBy flexID   `json:"commented_by"`
	UserID      flexID   `json:"user_id"`
	UserName    string   `json:"user_name"`
	FileID      string   `json:"file_id"`
	Attachment  string   `json:"attachment"`
	CreatedAt   flexTime `json:"created_at"`
}

func (w wireRemark) toDomain() domain.Remark {
	content := w.Content
	if content == "" {
		content = w.Comment
	}
	return domain.Remark{
		ID:         firstID(w.RemarkID, w.ID, w.MongoID),
		TaskID:     w.TaskID.String(),
		UserID:     firstID(w.CommentedBy, w.UserID),
		UserName:   w.UserName,
		Content:    content,
		CreatedAt:  w.CreatedAt.Time,
		Attachment: w.Attachment,
		FileID:     w.FileID,
	}
}

// taskPatchBody renders a patch as the backend's partial-update payload.
func taskPatchBody(patch domain.TaskPatch) (map[string]any, error) {
	body := make(map[string]any)
	if patch.Title != nil {
		body["title"] = *patch.Title
	}
	if patch.Description != nil {
		body["description"] = *patch.Description
	}
	if patch.Priority != nil {
		body["priority"] = string(*patch.Priority)
	}
	if patch.Status != nil {
		body["status"] = string(*patch.Status)
	}
	if patch.AssignedTo != nil {
		id, err := wireID(*patch.AssignedTo)
		if err != nil {
			return nil, err
		}
		body["assigned_to"] = id
	}
	if patch.Reviewer != nil {
		id, err := wireID(*patch.Reviewer)
		if err != nil {
			return nil, err
		}
		body["reviewer"] = id
	}
	if patch.ExpectedClosure != nil {
		body["expected_closure"] = patch.ExpectedClosure.UTC().Format(time.RFC3339)
	}
	return body, nil
}

// optionalID renders an identifier as an integer, or nil when it is empty.
func optionalID(id string) (any, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}
	n, err := wireID(id)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
