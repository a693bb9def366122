package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/teamboard/internal/api/shared"
	"github.com/phrazzld/teamboard/internal/domain"
	"github.com/phrazzld/teamboard/internal/platform/logger"
	"github.com/phrazzld/teamboard/internal/service/auth"
)

// requireSession returns the caller's session. It writes a 401 and returns
// false when the authentication middleware did not run.
func requireSession(w http.ResponseWriter, r *http.Request) (auth.Session, bool) {
	s, ok := shared.SessionFromContext(r.Context())
	if !ok {
		logger.FromContext(r.Context()).Warn("session not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return auth.Session{}, false
	}
	return *s, true
}

// pathID returns the numeric path parameter name in canonical form, so
// "EMP004" and "4" address the same record. It writes a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := chi.URLParam(r, name)
	if _, err := domain.NormalizeID(raw); err != nil {
		logger.FromContext(r.Context()).Debug("invalid path parameter",
			slog.String("param_name", name),
			slog.String("value", raw))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid "+name)
		return "", false
	}
	return domain.CanonicalID(raw), true
}

// pathUUID parses a UUID path parameter. It writes a 400 on failure.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// decodeRequest decodes and validates the JSON body into v, which must be a
// pointer. It writes a 400 and returns false on failure.
func decodeRequest(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		msg := "Invalid request format"
		if errors.Is(err, shared.ErrEmptyBody) {
			msg = "Request body is required"
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, msg, err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}

// queryInt reads a non-negative integer query parameter, returning def when
// it is absent. It writes a 400 when the value is malformed.
func queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return n, true
}
