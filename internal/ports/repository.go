package ports

import (
	"context"

	"cryptoLedger/internal/domain"
)

// TradeRepository defines the interface for storing and retrieving trades.
//
// Every operation except FindAllTrades is scoped to an owner: no call ever
// returns or mutates a record belonging to a different user than the one
// supplied. This is the single most important invariant of the store.
type TradeRepository interface {
	// Insert saves a new trade and returns its assigned ID.
	Insert(ctx context.Context, trade *domain.Trade) (int64, error)
	// FindByOwner retrieves the trades owned by a user, most recent first,
	// optionally filtered by status. Returns an empty slice when the user
	// has no matching trades.
	FindByOwner(ctx context.Context, ownerID int64, status *domain.TradeStatus) ([]*domain.Trade, error)
	// FindByIDAndOwner retrieves a trade by id only if it is owned by the
	// given user. Returns nil, nil when no owned trade matches.
	FindByIDAndOwner(ctx context.Context, id, ownerID int64) (*domain.Trade, error)
	// UpdateForOwner loads the owned trade, applies the mutator, and
	// persists the result in a single transaction. Returns nil, nil without
	// side effects when no owned trade matches. A mutator error aborts the
	// transaction and is returned unchanged.
	UpdateForOwner(ctx context.Context, id, ownerID int64, mutate func(*domain.Trade) error) (*domain.Trade, error)
	// FindAllTrades retrieves every trade in the system, most recent first.
	// This bypasses the owner filter and must only back the privileged
	// admin listing.
	FindAllTrades(ctx context.Context) ([]*domain.Trade, error)
}

// UserRepository defines the interface for storing and retrieving user accounts.
type UserRepository interface {
	// CreateUser saves a new user and returns its assigned ID.
	// Inserting a duplicate username fails with ErrDuplicateEntry.
	CreateUser(ctx context.Context, user *domain.User) (int64, error)
	// FindUserByUsername retrieves a user by username.
	// Returns nil, nil if not found.
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindUserByID retrieves a user by its unique ID.
	// Returns nil, nil if not found.
	FindUserByID(ctx context.Context, id int64) (*domain.User, error)
}
