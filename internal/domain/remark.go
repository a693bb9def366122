package domain

import (
	"strings"
	"time"
)

// UnknownAuthor is shown for remarks whose author cannot be resolved.
const UnknownAuthor = "Unknown"

// Remark is a comment left on a task.
type Remark struct {
	ID         string    `json:"id"`
	TaskID     string    `json:"task_id"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	Attachment string    `json:"attachment,omitempty"`
	FileID     string    `json:"file_id,omitempty"`
}

// Validate checks the remark has content and a task.
func (r *Remark) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return ErrEmptyContent
	}
	if strings.TrimSpace(r.TaskID) == "" {
		return ErrInvalidID
	}
	return nil
}

// ResolveAuthor fills UserName from the directory, keeping an existing name
// when the directory has no match and falling back to UnknownAuthor.
func (r *Remark) ResolveAuthor(employees []Employee) {
	if name := EmployeeName(employees, r.UserID); name != "" {
		r.UserName = name
		return
	}
	if strings.TrimSpace(r.UserName) == "" {
		r.UserName = UnknownAuthor
	}
}
