package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/teamboard/internal/api/shared"
	"github.com/phrazzld/teamboard/internal/domain"
	"github.com/phrazzld/teamboard/internal/platform/logger"
	"github.com/phrazzld/teamboard/internal/service/auth"
)

// Authenticator turns a bearer token into a session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Session, error)
}

// AuthMiddleware provides bearer token authentication for routes.
type AuthMiddleware struct {
	authenticator Authenticator
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(authenticator Authenticator) *AuthMiddleware {
	if authenticator == nil {
		// ALLOW-PANIC: router construction cannot continue without an authenticator
		panic("authenticator cannot be nil")
	}
	return &AuthMiddleware{authenticator: authenticator}
}

// Authenticate validates the Authorization header and stores the caller's
// session in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		scheme, token, found := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		session, err := m.authenticator.Authenticate(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Token expired", err)
			case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenNotYetValid):
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid token", err,
					shared.WithElevatedLogLevel())
			default:
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
			}
			return
		}

		ctx := shared.WithSession(r.Context(), session)
		log := logger.FromContext(ctx).With(slog.String("employee_id", session.Actor.EmployeeID))
		ctx = logger.WithLogger(ctx, log)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole rejects callers that carry none of roles with 403. It must run
// after Authenticate.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := shared.SessionFromContext(r.Context())
			if !ok {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
				return
			}
			if !session.Actor.HasAny(roles...) {
				logger.FromContext(r.Context()).Info("role check failed",
					slog.Any("required", roles),
					slog.Any("roles", session.Actor.Roles),
					slog.String("path", r.URL.Path))
				shared.RespondWithError(w, r, http.StatusForbidden, "You do not have permission to perform this action")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetSession returns the session stored by Authenticate.
func GetSession(r *http.Request) (*auth.Session, bool) {
	return shared.SessionFromContext(r.Context())
}
