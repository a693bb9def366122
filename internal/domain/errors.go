package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidEmail is returned when an email address is malformed or
	// outside the organisation's domain.
	ErrInvalidEmail = fmt.Errorf("%w: invalid email", ErrValidation)

	ErrInvalidRole       = fmt.Errorf("%w: invalid role", ErrValidation)
	ErrInvalidStatus     = fmt.Errorf("%w: invalid task status", ErrValidation)
	ErrInvalidPriority   = fmt.Errorf("%w: invalid priority", ErrValidation)
	ErrInvalidUserStatus = fmt.Errorf("%w: invalid user status", ErrValidation)
	ErrInvalidDate       = fmt.Errorf("%w: invalid date", ErrValidation)

	// ErrEmptyContent is returned when required text content is blank.
	ErrEmptyContent = fmt.Errorf("%w: content cannot be empty", ErrValidation)

	ErrEmptyTitle       = fmt.Errorf("%w: title cannot be empty", ErrValidation)
	ErrEmptyDescription = fmt.Errorf("%w: description cannot be empty", ErrValidation)
	ErrEmptyName        = fmt.Errorf("%w: name cannot be empty", ErrValidation)
	ErrMissingClosure   = fmt.Errorf("%w: expected closure date is required", ErrValidation)
	ErrMissingAssignee  = fmt.Errorf("%w: assignee is required", ErrValidation)
	ErrMissingReviewer  = fmt.Errorf("%w: reviewer is required", ErrValidation)

	// ErrUnauthorized is returned when the acting user lacks the role or
	// relationship required for an operation.
	ErrUnauthorized = errors.New("unauthorized operation")
)
