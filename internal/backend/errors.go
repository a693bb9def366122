package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// Errors returned by backend implementations. Upstream HTTP failures are
// reported as *APIError values that unwrap to one of these.
var (
	ErrBadRequest         = errors.New("backend rejected the request")
	ErrUnauthorized       = errors.New("backend authentication failed")
	ErrForbidden          = errors.New("backend denied access")
	ErrNotFound           = errors.New("backend entity not found")
	ErrConflict           = errors.New("backend entity already exists")
	ErrUnavailable        = errors.New("backend unavailable")
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
)

// APIError is a non-2xx response from the upstream backend.
type APIError struct {
	StatusCode int
	Detail     string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Detail)
}

// Unwrap maps the status code to the matching sentinel error.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.StatusCode == http.StatusForbidden:
		return ErrForbidden
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusConflict:
		return ErrConflict
	case e.StatusCode >= 500:
		return ErrUnavailable
	case e.StatusCode >= 400:
		return ErrBadRequest
	default:
		return nil
	}
}

// Detail returns the upstream's explanation for err, if it carries one.
func Detail(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}
