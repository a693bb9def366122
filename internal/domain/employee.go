package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// Employee is a person in the organisation directory.
type Employee struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Designation string    `json:"designation"`
	ManagerID   string    `json:"mgr_id,omitempty"`
	Department  string    `json:"department,omitempty"`
	Avatar      string    `json:"avatar,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NormalizeManagerID maps the "no manager" encodings ("", "0") to "".
func NormalizeManagerID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	if n, err := NormalizeID(id); err == nil && n == 0 {
		return ""
	}
	return id
}

// Validate checks the employee's required fields. The email must be a
// well-formed address ending with emailDomain (e.g. "@ust.com").
func (e *Employee) Validate(emailDomain string) error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if err := ValidateEmail(e.Email, emailDomain); err != nil {
		return err
	}
	if strings.TrimSpace(e.Designation) == "" {
		return fmt.Errorf("%w: designation cannot be empty", ErrValidation)
	}
	return nil
}

// ValidateEmail checks that email is an address within emailDomain.
func ValidateEmail(email, emailDomain string) error {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	if emailDomain != "" && !strings.HasSuffix(strings.ToLower(email), strings.ToLower(emailDomain)) {
		return fmt.Errorf("%w: email must end with %s", ErrInvalidEmail, emailDomain)
	}
	return nil
}

// EmployeeName returns the name of the employee with the given id, or ""
// when the directory has no match.
func EmployeeName(employees []Employee, id string) string {
	for _, e := range employees {
		if SameID(e.ID, id) {
			return e.Name
		}
	}
	return ""
}
