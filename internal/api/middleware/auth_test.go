package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/teamboard/internal/api/shared"
	"github.com/phrazzld/teamboard/internal/domain"
	"github.com/phrazzld/teamboard/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authenticatorFunc func(ctx context.Context, token string) (*auth.Session, error)

func (f authenticatorFunc) Authenticate(ctx context.Context, token string) (*auth.Session, error) {
	return f(ctx, token)
}

func sessionFor(id string, role domain.Role) *auth.Session {
	return &auth.Session{
		Token: "token-" + id,
		Actor: domain.Actor{EmployeeID: id, Roles: []domain.Role{role}},
	}
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		authHeader string
		authErr    error
		wantStatus int
		wantError  string
	}{
		{name: "valid token", authHeader: "Bearer good", wantStatus: http.StatusOK},
		{name: "lowercase scheme", authHeader: "bearer good", wantStatus: http.StatusOK},
		{name: "missing header", wantStatus: http.StatusUnauthorized, wantError: "Authorization header required"},
		{name: "no scheme", authHeader: "good", wantStatus: http.StatusUnauthorized, wantError: "Invalid authorization format"},
		{name: "basic scheme", authHeader: "Basic Zm9vOmJhcg==", wantStatus: http.StatusUnauthorized, wantError: "Invalid authorization format"},
		{name: "empty token", authHeader: "Bearer ", wantStatus: http.StatusUnauthorized, wantError: "Invalid authorization format"},
		{name: "expired token", authHeader: "Bearer old", authErr: auth.ErrExpiredToken, wantStatus: http.StatusUnauthorized, wantError: "Token expired"},
		{name: "invalid token", authHeader: "Bearer forged", authErr: auth.ErrInvalidToken, wantStatus: http.StatusUnauthorized, wantError: "Invalid token"},
		{name: "token from the future", authHeader: "Bearer early", authErr: auth.ErrTokenNotYetValid, wantStatus: http.StatusUnauthorized, wantError: "Invalid token"},
		{name: "unexpected failure", authHeader: "Bearer good", authErr: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantError: "Authentication error"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var gotToken string
			mw := NewAuthMiddleware(authenticatorFunc(func(_ context.Context, token string) (*auth.Session, error) {
				gotToken = token
				if tc.authErr != nil {
					return nil, tc.authErr
				}
				return sessionFor("3", domain.RoleDeveloper), nil
			}))

			var captured *auth.Session
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				captured, _ = GetSession(r)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/board", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rec := httptest.NewRecorder()
			mw.Authenticate(next).ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantStatus == http.StatusOK {
				require.NotNil(t, captured)
				assert.Equal(t, "3", captured.Actor.EmployeeID)
				assert.Equal(t, "good", gotToken)
			} else {
				assert.Nil(t, captured)
				assert.Contains(t, rec.Body.String(), tc.wantError)
			}
		})
	}
}

func TestNewAuthMiddleware_NilAuthenticator(t *testing.T) {
	assert.Panics(t, func() { NewAuthMiddleware(nil) })
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	guarded := RequireRole(domain.RoleAdmin, domain.RoleManager)(ok)

	tests := []struct {
		name       string
		session    *auth.Session
		wantStatus int
	}{
		{"admin", sessionFor("1", domain.RoleAdmin), http.StatusNoContent},
		{"manager", sessionFor("2", domain.RoleManager), http.StatusNoContent},
		{"developer", sessionFor("3", domain.RoleDeveloper), http.StatusForbidden},
		{"anonymous", nil, http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/tasks", nil)
			if tc.session != nil {
				req = req.WithContext(shared.WithSession(req.Context(), tc.session))
			}
			rec := httptest.NewRecorder()
			guarded.ServeHTTP(rec, req)
			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}
