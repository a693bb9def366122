package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/teamboard/internal/api/shared"
	"github.com/phrazzld/teamboard/internal/backend"
	"github.com/phrazzld/teamboard/internal/domain"
	"github.com/phrazzld/teamboard/internal/domain/kanban"
	"github.com/phrazzld/teamboard/internal/service"
	"github.com/phrazzld/teamboard/internal/service/auth"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes so that
// internal error types never decide the response on their own.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, backend.ErrUnauthorized):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, backend.ErrForbidden),
		errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, kanban.ErrTransitionNotAllowed):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrNotificationNotFound),
		errors.Is(err, backend.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, backend.ErrConflict):
		return http.StatusConflict

	case errors.Is(err, kanban.ErrRemarkRequired):
		return http.StatusUnprocessableEntity

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, backend.ErrBadRequest),
		errors.Is(err, shared.ErrEmptyBody):
		return http.StatusBadRequest

	case errors.Is(err, backend.ErrUnavailable):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a message for err that is safe to show to the
// caller.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid employee ID or password"
	case errors.Is(err, backend.ErrUnauthorized):
		return "Your session has expired. Please sign in again"

	case errors.Is(err, kanban.ErrTransitionNotAllowed):
		return "You are not allowed to move this task to that status"
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, backend.ErrForbidden),
		errors.Is(err, domain.ErrUnauthorized):
		return "You do not have permission to perform this action"

	case errors.Is(err, service.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, service.ErrNotificationNotFound):
		return "Notification not found"
	case errors.Is(err, backend.ErrNotFound):
		return detailOr(err, "Resource not found")

	case errors.Is(err, backend.ErrConflict):
		return detailOr(err, "Resource already exists")

	case errors.Is(err, kanban.ErrRemarkRequired):
		return "A remark is required when sending a task back"

	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.Is(err, domain.ErrValidation):
		return validationMessage(err)
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, backend.ErrBadRequest):
		return detailOr(err, "Invalid request")

	case errors.Is(err, backend.ErrUnavailable):
		return "The task service is temporarily unavailable. Please try again"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the mapped status and safe message for err. A
// non-empty fallback replaces the generic message on 500 responses.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

// validationMessage turns a domain validation error into a sentence. Domain
// validation messages are written for users, so only the generic prefix is
// dropped.
func validationMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, domain.ErrValidation.Error()+": "); i >= 0 {
		msg = msg[i+len(domain.ErrValidation.Error())+2:]
	}
	if msg == "" || msg == domain.ErrValidation.Error() {
		return "Validation error"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

func detailOr(err error, fallback string) string {
	if detail := strings.TrimSpace(backend.Detail(err)); detail != "" {
		return detail
	}
	return fallback
}

// SanitizeValidationError describes the first failed field of a request
// validation error without exposing struct internals.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}
	if errors.Is(err, domain.ErrValidation) {
		return validationMessage(err)
	}
	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof", "task_status", "priority", "role", "user_status":
		return "invalid value"
	case "employee_id":
		return "invalid employee ID"
	default:
		return "validation failed"
	}
}
