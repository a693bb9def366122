package domain

import (
	"time"
)

// User is a sign-in account attached to an employee.
type User struct {
	EmployeeID        string     `json:"e_id"`
	Roles             []Role     `json:"roles"`
	Status            UserStatus `json:"status"`
	PasswordChangedAt *time.Time `json:"password_changed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	Employee          *Employee  `json:"employee,omitempty"`
}

// HasRole reports whether the user carries role r.
func (u *User) HasRole(r Role) bool {
	return hasRole(u.Roles, r)
}

// FirstLogin reports whether the user has never changed the initial password.
func (u *User) FirstLogin() bool {
	return u.PasswordChangedAt == nil
}

// Validate checks the user's fields.
func (u *User) Validate() error {
	if _, err := NormalizeID(u.EmployeeID); err != nil {
		return err
	}
	if len(u.Roles) == 0 {
		return ErrInvalidRole
	}
	for _, r := range u.Roles {
		if !r.Valid() {
			return ErrInvalidRole
		}
	}
	if !u.Status.Valid() {
		return ErrInvalidUserStatus
	}
	return nil
}

// Actor is the signed-in identity on whose behalf an operation runs.
type Actor struct {
	EmployeeID string `json:"e_id"`
	Name       string `json:"name,omitempty"`
	Roles      []Role `json:"roles"`
}

// Has reports whether the actor carries role r.
func (a Actor) Has(r Role) bool {
	return hasRole(a.Roles, r)
}

// HasAny reports whether the actor carries at least one of roles.
func (a Actor) HasAny(roles ...Role) bool {
	for _, r := range roles {
		if a.Has(r) {
			return true
		}
	}
	return false
}

// Is reports whether id identifies the actor.
func (a Actor) Is(id string) bool {
	return SameID(a.EmployeeID, id)
}

func hasRole(roles []Role, r Role) bool {
	for _, have := range roles {
		if have == r {
			return true
		}
	}
	return false
}
