package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrStateConflict means the stored booking no longer holds the expected
	// state when a conditional transition was written.
	ErrStateConflict = errors.New("booking state changed concurrently")

	ErrLockHeld = errors.New("room is locked by another booking request")

	ErrInvalidQuoteToken = errors.New("quote token is invalid or expired")
)
