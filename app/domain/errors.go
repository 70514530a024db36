package domain

import "errors"

// Domain validation errors
var (
	ErrEmptyAuthID        = errors.New("external auth ID is required")
	ErrEmptyAuthProvider  = errors.New("auth provider is required")
	ErrInvalidEmailFormat = errors.New("invalid email format")
)
