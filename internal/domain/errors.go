package domain

import "errors"

// Errors raised by entity validation and lifecycle rules. The ports package
// re-exports them alongside the infrastructure error taxonomy.
var (
	ErrInvalidInput = errors.New("invalid request parameters or format")

	// ErrAlreadyClosed is returned when a close is attempted on a trade
	// that has already reached its terminal state.
	ErrAlreadyClosed = errors.New("trade is already closed")
)
