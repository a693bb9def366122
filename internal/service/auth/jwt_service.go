package auth

import (
	"context"
	"time"

	"github.com/phrazzld/teamboard/internal/domain"
)

// JWTService issues and validates the bearer tokens shared with the upstream
// backend. Tokens carry the employee id and role.
type JWTService interface {
	// GenerateToken creates a signed access token for the employee.
	GenerateToken(ctx context.Context, employeeID string, role domain.Role) (string, error)

	// ValidateToken checks the token's signature and lifetime and returns
	// its claims.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims are the validated contents of an access token.
type Claims struct {
	EmployeeID string
	Role       domain.Role
	IssuedAt   time.Time
	ExpiresAt  time.Time
	ID         string
}

// Actor converts the claims into the acting identity.
func (c *Claims) Actor() domain.Actor {
	return domain.Actor{EmployeeID: c.EmployeeID, Roles: []domain.Role{c.Role}}
}

// Session is an authenticated caller: the raw token forwarded upstream and
// the identity it proves.
type Session struct {
	Token     string
	Actor     domain.Actor
	ExpiresAt time.Time
}

// NewSession builds a session from a validated token.
func NewSession(token string, claims *Claims) Session {
	return Session{Token: token, Actor: claims.Actor(), ExpiresAt: claims.ExpiresAt}
}
