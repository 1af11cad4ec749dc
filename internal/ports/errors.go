package ports

import (
	"errors"

	"cryptoLedger/internal/domain"
)

// Standard application-level errors.
// Adapters should wrap underlying infrastructure errors with these standard errors.
// Validation and lifecycle errors originate in the domain package and are
// re-exported here so callers deal with a single taxonomy.
var (
	// General Errors
	ErrUnknown      = errors.New("unknown error occurred")
	ErrInvalidInput = domain.ErrInvalidInput

	// ErrNotFound covers both "no such record" and "record owned by another
	// user". The two cases must stay indistinguishable to callers so trade
	// ids cannot be enumerated across accounts.
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyClosed is returned when a close is attempted on a trade
	// that has already reached its terminal state.
	ErrAlreadyClosed = domain.ErrAlreadyClosed

	// Auth Errors
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrPermissionDenied   = errors.New("permission denied")

	// Database Specific Errors
	ErrDuplicateEntry = errors.New("database record already exists")
	ErrDBConnection   = errors.New("database connection error")
	ErrQueryFailed    = errors.New("database query failed")
	ErrUpdateFailed   = errors.New("database update failed")
)
