// Package errors provides centralized sentinel errors for focusdeck.
//
// Sentinels allow callers to categorize failures with errors.Is().
// This package MUST NOT import any other internal packages.
package errors

import "errors"

var (
	// ErrEmptyTitle indicates a task title was empty after trimming.
	ErrEmptyTitle = errors.New("task title cannot be empty")

	// ErrInvalidTimestamp indicates a value could not be normalized to
	// an ISO-8601 instant, or fell outside the accepted range.
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// ErrNotSignedIn indicates an operation that requires a user ran
	// without one. Local-only mode swallows this for optional sync.
	ErrNotSignedIn = errors.New("not signed in")

	// ErrEmailTaken indicates a sign-up with an already registered email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrUserNotFound indicates a sign-in for an unregistered email.
	ErrUserNotFound = errors.New("user not found")

	// ErrUnknownAvatar indicates an avatar id outside the fixed set.
	ErrUnknownAvatar = errors.New("unknown avatar")
)
