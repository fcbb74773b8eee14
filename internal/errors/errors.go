// Package errors provides standardized domain errors that express business intent
// rather than infrastructure details. Use cases return these errors (usually wrapped)
// and handlers map them to HTTP status codes and CLI exit messages.
package errors

import (
	"errors"
	"fmt"
)

// Standard domain errors shared by every module.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a conflict with existing data.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the request lacks valid administrative credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller was denied authorization for the requested action.
	ErrForbidden = errors.New("forbidden")

	// ErrUnavailable indicates a backing dependency (database, bucket, keeper) failed.
	// Callers may retry operations that fail with this error.
	ErrUnavailable = errors.New("unavailable")

	// ErrDispatch indicates an authorized action failed while being executed downstream.
	// It must never be confused with ErrForbidden.
	ErrDispatch = errors.New("dispatch failed")
)

// New creates a new error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
