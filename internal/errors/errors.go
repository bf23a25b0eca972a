package errors

import (
	"errors"
	"fmt"
)

// Common error types for the identity service
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is deactivated")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrTooManyLogins      = errors.New("too many login attempts")

	// Token errors
	ErrInvalidToken          = errors.New("invalid token")
	ErrInvalidTokenType      = errors.New("invalid token type")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired refresh token")

	// Verification errors
	ErrForbidden          = errors.New("forbidden")
	ErrVerificationLocked = errors.New("verification locked for 24 hours due to multiple failed attempts")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
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
