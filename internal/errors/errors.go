package errors

import (
	"errors"
	"fmt"
)

// Common error types for the SeniorInteract auth core
var (
	// Identifier errors
	ErrInvalidFormat = errors.New("invalid identifier format")

	// Storage errors
	ErrStorageWriteFailed = errors.New("storage write failed")
	ErrCorruptedRecord    = errors.New("corrupted session record")
	ErrQuotaExceeded      = errors.New("storage quota exceeded")

	// Registration and login validation errors
	ErrRequiredFields   = errors.New("required fields missing")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrPasswordTooShort = errors.New("password too short")
	ErrInvalidRUT       = errors.New("invalid rut")

	// Authentication errors
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrUserNotFound           = errors.New("user not found")
	ErrEmailAlreadyRegistered = errors.New("email already registered")

	// Token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Provider errors
	ErrConnection          = errors.New("connection error")
	ErrProviderUnavailable = errors.New("auth provider unavailable")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New returns an error that formats as the given text
func New(text string) error {
	return errors.New(text)
}
