// Package common provides shared constants, types, and utilities
// used across the Remote Manager application.
package common

import "errors"

// Sentinel errors for connection and profile operations.
// These can be checked with errors.Is() for proper error handling.
var (
	// Session errors.
	ErrAlreadyConnected = errors.New("connection already in progress")
	ErrConnectionFailed = errors.New("connection failed")
	ErrTimeout          = errors.New("operation timed out")
	ErrCancelled        = errors.New("operation cancelled")

	// Profile errors.
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidProfile  = errors.New("invalid profile data")

	// Credential errors.
	ErrInvalidCredential = errors.New("invalid credential data")
	ErrCredentialStorage = errors.New("failed to store credentials")

	// Bridge errors.
	ErrBridgeUnavailable = errors.New("native bridge not available")

	// Configuration errors.
	ErrConfigLoad = errors.New("failed to load configuration")
	ErrConfigSave = errors.New("failed to save configuration")
)

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
