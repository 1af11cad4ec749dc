package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoLedger/internal/domain"
	"cryptoLedger/internal/ports"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "trade-ledger-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	repo, err := NewRepository(Config{
		DBPath: dbPath,
		Logger: &mockLogger{},
	})
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		os.RemoveAll(tmpDir)
	}

	return repo, cleanup
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return v
}

func createTestUser(t *testing.T, repo *Repository, username string) *domain.User {
	t.Helper()
	user := &domain.User{
		Username:       username,
		HashedPassword: "not-a-real-hash",
		CreatedAt:      time.Now().UTC(),
	}
	_, err := repo.CreateUser(context.Background(), user)
	require.NoError(t, err)
	return user
}

func newOpenTrade(t *testing.T, userID int64, symbol string, openedAt time.Time) *domain.Trade {
	t.Helper()
	trade, err := domain.NewTrade(userID, symbol, domain.Buy,
		mustDecimal(t, "50000"), mustDecimal(t, "0.5"), openedAt)
	require.NoError(t, err)
	return trade
}

func TestRepository_InsertAndFindByOwner(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	alice := createTestUser(t, repo, "alice")
	bob := createTestUser(t, repo, "bob")

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	first := newOpenTrade(t, alice.ID, "BTC/USDT", base)
	second := newOpenTrade(t, alice.ID, "ETH/USDT", base.Add(time.Minute))
	foreign := newOpenTrade(t, bob.ID, "SOL/USDT", base.Add(2*time.Minute))

	for _, trade := range []*domain.Trade{first, second, foreign} {
		id, err := repo.Insert(ctx, trade)
		require.NoError(t, err)
		assert.NotZero(t, id)
	}

	// Most recent first, scoped to the owner.
	trades, err := repo.FindByOwner(ctx, alice.ID, nil)
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "ETH/USDT", trades[0].Symbol)
	assert.Equal(t, "BTC/USDT", trades[1].Symbol)

	// Stored decimals survive the TEXT round trip exactly.
	assert.True(t, trades[1].EntryPrice.Equal(mustDecimal(t, "50000")))
	assert.True(t, trades[1].Quantity.Equal(mustDecimal(t, "0.5")))

	// Status filter.
	open := domain.StatusOpen
	closed := domain.StatusClosed
	openTrades, err := repo.FindByOwner(ctx, alice.ID, &open)
	require.NoError(t, err)
	assert.Len(t, openTrades, 2)
	closedTrades, err := repo.FindByOwner(ctx, alice.ID, &closed)
	require.NoError(t, err)
	assert.Len(t, closedTrades, 0)
}

func TestRepository_FindByIDAndOwner(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	alice := createTestUser(t, repo, "alice")
	bob := createTestUser(t, repo, "bob")

	trade := newOpenTrade(t, alice.ID, "BTC/USDT", time.Now().UTC())
	_, err := repo.Insert(ctx, trade)
	require.NoError(t, err)

	found, err := repo.FindByIDAndOwner(ctx, trade.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, trade.ID, found.ID)

	// Another user's id behaves exactly like a missing record.
	foreign, err := repo.FindByIDAndOwner(ctx, trade.ID, bob.ID)
	require.NoError(t, err)
	assert.Nil(t, foreign)

	missing, err := repo.FindByIDAndOwner(ctx, 9999, alice.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepository_UpdateForOwner(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	alice := createTestUser(t, repo, "alice")
	bob := createTestUser(t, repo, "bob")

	trade := newOpenTrade(t, alice.ID, "BTC/USDT", time.Now().UTC())
	_, err := repo.Insert(ctx, trade)
	require.NoError(t, err)

	t.Run("close transition is persisted", func(t *testing.T) {
		closedAt := time.Now().UTC()
		updated, err := repo.UpdateForOwner(ctx, trade.ID, alice.ID, func(tr *domain.Trade) error {
			return tr.Close(mustDecimal(t, "60000"), closedAt)
		})
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, domain.StatusClosed, updated.Status)

		stored, err := repo.FindByIDAndOwner(ctx, trade.ID, alice.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, domain.StatusClosed, stored.Status)
		require.NotNil(t, stored.ExitPrice)
		require.NotNil(t, stored.RealizedPnL)
		require.NotNil(t, stored.ClosedAt)
		assert.True(t, stored.ExitPrice.Equal(mustDecimal(t, "60000")))
		assert.True(t, stored.RealizedPnL.Equal(mustDecimal(t, "5000")))
	})

	t.Run("second close fails without touching the record", func(t *testing.T) {
		_, err := repo.UpdateForOwner(ctx, trade.ID, alice.ID, func(tr *domain.Trade) error {
			return tr.Close(mustDecimal(t, "70000"), time.Now().UTC())
		})
		assert.ErrorIs(t, err, ports.ErrAlreadyClosed)

		stored, err := repo.FindByIDAndOwner(ctx, trade.ID, alice.ID)
		require.NoError(t, err)
		assert.True(t, stored.ExitPrice.Equal(mustDecimal(t, "60000")))
	})

	t.Run("foreign owner gets no record and no side effects", func(t *testing.T) {
		updated, err := repo.UpdateForOwner(ctx, trade.ID, bob.ID, func(tr *domain.Trade) error {
			t.Fatal("mutator must not run for foreign records")
			return nil
		})
		require.NoError(t, err)
		assert.Nil(t, updated)
	})

	t.Run("mutator error aborts the transaction", func(t *testing.T) {
		open := newOpenTrade(t, alice.ID, "ETH/USDT", time.Now().UTC())
		_, err := repo.Insert(ctx, open)
		require.NoError(t, err)

		boom := errors.New("boom")
		_, err = repo.UpdateForOwner(ctx, open.ID, alice.ID, func(tr *domain.Trade) error {
			tr.Status = domain.StatusClosed
			return boom
		})
		assert.ErrorIs(t, err, boom)

		stored, err := repo.FindByIDAndOwner(ctx, open.ID, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusOpen, stored.Status)
	})
}

func TestRepository_FindAllTrades(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	alice := createTestUser(t, repo, "alice")
	bob := createTestUser(t, repo, "bob")

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	_, err := repo.Insert(ctx, newOpenTrade(t, alice.ID, "BTC/USDT", base))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, newOpenTrade(t, bob.ID, "ETH/USDT", base.Add(time.Minute)))
	require.NoError(t, err)

	trades, err := repo.FindAllTrades(ctx)
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "ETH/USDT", trades[0].Symbol)
	assert.Equal(t, "BTC/USDT", trades[1].Symbol)
}

func TestRepository_Users(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	alice := createTestUser(t, repo, "alice")

	t.Run("duplicate username is rejected", func(t *testing.T) {
		_, err := repo.CreateUser(ctx, &domain.User{
			Username:       "alice",
			HashedPassword: "hash",
			CreatedAt:      time.Now().UTC(),
		})
		assert.ErrorIs(t, err, ports.ErrDuplicateEntry)
	})

	t.Run("find by username", func(t *testing.T) {
		found, err := repo.FindUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, alice.ID, found.ID)

		missing, err := repo.FindUserByUsername(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("find by id", func(t *testing.T) {
		found, err := repo.FindUserByID(ctx, alice.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "alice", found.Username)

		missing, err := repo.FindUserByID(ctx, 404)
		require.NoError(t, err)
		assert.Nil(t, missing)
	})
}
