package auth

import "errors"

// Authentication errors.
var (
	// ErrInvalidToken is returned when a token is malformed, signed with the
	// wrong key or missing required claims.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a token's exp claim is in the past.
	ErrExpiredToken = errors.New("token expired")

	// ErrTokenNotYetValid is returned when a token's nbf or iat claim is in
	// the future beyond the allowed clock skew.
	ErrTokenNotYetValid = errors.New("token not yet valid")

	// ErrPasswordMismatch is returned when a password does not match its hash.
	ErrPasswordMismatch = errors.New("password does not match")
)
