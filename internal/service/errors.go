package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/teamboard/internal/backend"
	"github.com/phrazzld/teamboard/internal/domain"
	"github.com/phrazzld/teamboard/internal/domain/kanban"
	"github.com/phrazzld/teamboard/internal/store"
)

// Common service errors.
var (
	// ErrForbidden indicates the actor's role does not permit the operation.
	// API layer should map this to HTTP 403 Forbidden.
	ErrForbidden = errors.New("operation not permitted")

	// ErrTaskNotFound indicates the task is not on the actor's board.
	// API layer should map this to HTTP 404 Not Found.
	ErrTaskNotFound = errors.New("task not found")

	// ErrNotificationNotFound indicates the notification does not exist for
	// the caller.
	ErrNotificationNotFound = errors.New("notification not found")
)

// ServiceError wraps an unexpected failure with the operation that hit it.
type ServiceError struct {
	Service   string
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError wraps err. Expected conditions (service sentinels, domain
// validation and kanban guard errors) are returned unwrapped.
func NewServiceError(service, operation, message string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrForbidden),
		errors.Is(err, ErrTaskNotFound),
		errors.Is(err, ErrNotificationNotFound),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, kanban.ErrTransitionNotAllowed),
		errors.Is(err, kanban.ErrRemarkRequired):
		return err
	case errors.Is(err, store.ErrNotificationNotFound):
		return ErrNotificationNotFound
	}
	return &ServiceError{Service: service, Operation: operation, Message: message, Err: err}
}

// IsBackendUnavailable reports whether err means the upstream could not be
// reached, as opposed to the upstream rejecting the call.
func IsBackendUnavailable(err error) bool {
	return errors.Is(err, backend.ErrUnavailable)
}
