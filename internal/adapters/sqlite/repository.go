package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"cryptoLedger/internal/domain"
	"cryptoLedger/internal/ports"
)

// Repository implements the ports.TradeRepository and ports.UserRepository interfaces using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/trade_ledger.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Open database connection
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on") // WAL mode for better concurrency
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close() // Close the connection if ping fails
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Set connection pool settings (important for SQLite)
	db.SetMaxOpenConns(1) // SQLite handles concurrency internally, but Go driver benefits from limiting connections
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Database schema initialized/verified")

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
// NOTE: This is a basic approach. A proper migration tool is recommended for production.
//
// Monetary columns are stored as TEXT holding canonical decimal strings so
// values never pass through binary floating point on their way to or from
// the database.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		hashed_password TEXT NOT NULL,
		is_admin INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id),
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		entry_price TEXT NOT NULL,
		quantity TEXT NOT NULL,
		status TEXT NOT NULL,
		exit_price TEXT DEFAULT NULL,
		realized_pnl TEXT DEFAULT NULL,
		opened_at TIMESTAMP NOT NULL,
		closed_at TIMESTAMP DEFAULT NULL
	);
	-- Add indexes for common lookups
	CREATE INDEX IF NOT EXISTS idx_trades_user_status ON trades (user_id, status);
	CREATE INDEX IF NOT EXISTS idx_trades_user_opened_at ON trades (user_id, opened_at);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// --- TradeRepository Implementation ---

const tradeColumns = `id, user_id, symbol, side, entry_price, quantity, status, exit_price, realized_pnl, opened_at, closed_at`

// Insert saves a new trade and returns its assigned ID.
func (r *Repository) Insert(ctx context.Context, trade *domain.Trade) (int64, error) {
	const query = `
	INSERT INTO trades (user_id, symbol, side, entry_price, quantity, status, opened_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		trade.UserID, trade.Symbol, trade.Side,
		trade.EntryPrice.String(), trade.Quantity.String(),
		trade.Status, trade.OpenedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert trade for symbol %s: %w", trade.Symbol, wrapDBErr(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for trade %s: %w", trade.Symbol, err)
	}
	trade.ID = id // Update the domain object with the ID
	r.logger.Debug(ctx, "Trade created", map[string]interface{}{"tradeID": id, "symbol": trade.Symbol})
	return id, nil
}

// FindByOwner retrieves the trades owned by a user, most recent first,
// optionally filtered by status.
func (r *Repository) FindByOwner(ctx context.Context, ownerID int64, status *domain.TradeStatus) ([]*domain.Trade, error) {
	query := `
	SELECT ` + tradeColumns + `
	FROM trades
	WHERE user_id = ?`
	args := []interface{}{ownerID}

	if status != nil {
		query += ` AND status = ?`
		args = append(args, *status)
	}
	query += ` ORDER BY opened_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades for user %d: %w", ownerID, wrapDBErr(err))
	}
	defer rows.Close()

	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade during FindByOwner: %w", err)
		}
		trades = append(trades, trade)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w", err)
	}
	return trades, nil
}

// FindByIDAndOwner retrieves a trade by id only if it is owned by the given user.
func (r *Repository) FindByIDAndOwner(ctx context.Context, id, ownerID int64) (*domain.Trade, error) {
	const query = `
	SELECT ` + tradeColumns + `
	FROM trades
	WHERE id = ? AND user_id = ?`

	row := r.db.QueryRowContext(ctx, query, id, ownerID)
	trade, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not an error, just not found
		}
		return nil, fmt.Errorf("failed to query trade %d for user %d: %w", id, ownerID, wrapDBErr(err))
	}
	return trade, nil
}

// UpdateForOwner loads the owned trade, applies the mutator, and persists
// the lifecycle fields in a single transaction. Returns nil, nil without
// side effects when no owned trade matches.
//
// The UPDATE predicate re-checks the status read inside the transaction, so
// two concurrent closes against a shared store cannot both transition the
// same row: one commits, the other sees zero affected rows.
func (r *Repository) UpdateForOwner(ctx context.Context, id, ownerID int64, mutate func(*domain.Trade) error) (*domain.Trade, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction for trade %d: %w", id, wrapDBErr(err))
	}
	defer tx.Rollback()

	const selectQuery = `
	SELECT ` + tradeColumns + `
	FROM trades
	WHERE id = ? AND user_id = ?`

	row := tx.QueryRowContext(ctx, selectQuery, id, ownerID)
	trade, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not an error, just not found
		}
		return nil, fmt.Errorf("failed to query trade %d for update: %w", id, wrapDBErr(err))
	}

	statusBefore := trade.Status
	if err := mutate(trade); err != nil {
		return nil, err // Mutator rejected the transition; nothing persisted
	}

	// Entry data is append-only history: only lifecycle fields are ever
	// written back.
	const updateQuery = `
	UPDATE trades
	SET status = ?, exit_price = ?, realized_pnl = ?, closed_at = ?
	WHERE id = ? AND user_id = ? AND status = ?`

	result, err := tx.ExecContext(ctx, updateQuery,
		trade.Status, decimalToNull(trade.ExitPrice), decimalToNull(trade.RealizedPnL),
		timeToNull(trade.ClosedAt), id, ownerID, statusBefore)
	if err != nil {
		return nil, fmt.Errorf("failed to update trade %d: %w", id, wrapDBErr(err))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected for trade %d: %w", id, err)
	}
	if rowsAffected == 0 {
		// Lost a race with a concurrent transition on the same row.
		return nil, fmt.Errorf("trade %d changed concurrently: %w", id, ports.ErrUpdateFailed)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit update for trade %d: %w", id, wrapDBErr(err))
	}
	r.logger.Debug(ctx, "Trade updated", map[string]interface{}{"tradeID": id, "status": trade.Status})
	return trade, nil
}

// FindAllTrades retrieves every trade in the system, most recent first.
// Backs the privileged admin listing only.
func (r *Repository) FindAllTrades(ctx context.Context) ([]*domain.Trade, error) {
	const query = `
	SELECT ` + tradeColumns + `
	FROM trades
	ORDER BY opened_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query all trades: %w", wrapDBErr(err))
	}
	defer rows.Close()

	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade during FindAllTrades: %w", err)
		}
		trades = append(trades, trade)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w", err)
	}
	return trades, nil
}

// --- UserRepository Implementation ---

// CreateUser saves a new user and returns its assigned ID.
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) (int64, error) {
	const query = `
	INSERT INTO users (username, hashed_password, is_admin, created_at)
	VALUES (?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		user.Username, user.HashedPassword, user.IsAdmin, user.CreatedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return 0, fmt.Errorf("username %q is already taken: %w", user.Username, ports.ErrDuplicateEntry)
		}
		return 0, fmt.Errorf("failed to insert user %q: %w", user.Username, wrapDBErr(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for user %q: %w", user.Username, err)
	}
	user.ID = id
	r.logger.Debug(ctx, "User created", map[string]interface{}{"userID": id})
	return id, nil
}

// FindUserByUsername retrieves a user by username.
func (r *Repository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `
	SELECT id, username, hashed_password, is_admin, created_at
	FROM users
	WHERE username = ?`

	row := r.db.QueryRowContext(ctx, query, username)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not an error, just not found
		}
		return nil, fmt.Errorf("failed to query user by username: %w", wrapDBErr(err))
	}
	return user, nil
}

// FindUserByID retrieves a user by its unique ID.
func (r *Repository) FindUserByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `
	SELECT id, username, hashed_password, is_admin, created_at
	FROM users
	WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not an error, just not found
		}
		return nil, fmt.Errorf("failed to query user by ID %d: %w", id, wrapDBErr(err))
	}
	return user, nil
}

// --- Helper Scan Functions ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanTrade scans a row into a domain.Trade struct.
func scanTrade(s scanner) (*domain.Trade, error) {
	t := &domain.Trade{}
	var (
		side        string
		status      string
		entryPrice  string
		quantity    string
		exitPrice   sql.NullString
		realizedPnL sql.NullString
		closedAt    sql.NullTime
	)
	err := s.Scan(
		&t.ID, &t.UserID, &t.Symbol, &side, &entryPrice, &quantity,
		&status, &exitPrice, &realizedPnL, &t.OpenedAt, &closedAt)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	t.Side = domain.Side(side)
	t.Status = domain.TradeStatus(status)

	if t.EntryPrice, err = decimal.NewFromString(entryPrice); err != nil {
		return nil, fmt.Errorf("invalid entry_price %q for trade %d: %w", entryPrice, t.ID, err)
	}
	if t.Quantity, err = decimal.NewFromString(quantity); err != nil {
		return nil, fmt.Errorf("invalid quantity %q for trade %d: %w", quantity, t.ID, err)
	}
	if exitPrice.Valid {
		exit, err := decimal.NewFromString(exitPrice.String)
		if err != nil {
			return nil, fmt.Errorf("invalid exit_price %q for trade %d: %w", exitPrice.String, t.ID, err)
		}
		t.ExitPrice = &exit
	}
	if realizedPnL.Valid {
		pnl, err := decimal.NewFromString(realizedPnL.String)
		if err != nil {
			return nil, fmt.Errorf("invalid realized_pnl %q for trade %d: %w", realizedPnL.String, t.ID, err)
		}
		t.RealizedPnL = &pnl
	}
	if closedAt.Valid {
		closed := closedAt.Time
		t.ClosedAt = &closed
	}
	return t, nil
}

// scanUser scans a row into a domain.User struct.
func scanUser(s scanner) (*domain.User, error) {
	u := &domain.User{}
	err := s.Scan(&u.ID, &u.Username, &u.HashedPassword, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	return u, nil
}

// decimalToNull converts an optional decimal to its nullable TEXT form.
func decimalToNull(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

// timeToNull converts an optional timestamp to its nullable column form.
func timeToNull(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// wrapDBErr tags infrastructure failures with the standard store sentinel so
// callers can treat them as a generic internal failure.
func wrapDBErr(err error) error {
	return fmt.Errorf("%v: %w", err, ports.ErrQueryFailed)
}
