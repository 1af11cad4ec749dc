package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"cryptoLedger/internal/analytics"
	"cryptoLedger/internal/domain"
	"cryptoLedger/internal/ports"
)

// LedgerService orchestrates trade lifecycle and portfolio analytics for
// authenticated owners. Every operation is scoped to the requesting user:
// a trade id that is not owned by the requester behaves exactly as if it
// did not exist.
type LedgerService struct {
	logger ports.Logger
	trades ports.TradeRepository
	now    func() time.Time
}

// NewLedgerService creates a new ledger service instance.
func NewLedgerService(logger ports.Logger, trades ports.TradeRepository) (*LedgerService, error) {
	if logger == nil || trades == nil {
		return nil, fmt.Errorf("missing required dependencies for LedgerService")
	}
	return &LedgerService{
		logger: logger,
		trades: trades,
		now:    time.Now,
	}, nil
}

// CreateTrade validates the input and opens a new position for the owner.
// Validation failures wrap ports.ErrInvalidInput.
func (s *LedgerService) CreateTrade(ctx context.Context, ownerID int64, symbol string, side domain.Side, entryPrice, quantity decimal.Decimal) (*domain.Trade, error) {
	trade, err := domain.NewTrade(ownerID, symbol, side, entryPrice, quantity, s.now())
	if err != nil {
		return nil, err
	}

	if _, err := s.trades.Insert(ctx, trade); err != nil {
		s.logger.Error(ctx, err, "Failed to persist new trade", map[string]interface{}{"userID": ownerID, "symbol": trade.Symbol})
		return nil, fmt.Errorf("failed to persist trade: %w", err)
	}
	s.logger.Info(ctx, "Trade opened", map[string]interface{}{
		"tradeID": trade.ID,
		"userID":  ownerID,
		"symbol":  trade.Symbol,
		"side":    trade.Side,
	})
	return trade, nil
}

// ListTrades returns the owner's trades, most recent first, optionally
// filtered by status.
func (s *LedgerService) ListTrades(ctx context.Context, ownerID int64, status *domain.TradeStatus) ([]*domain.Trade, error) {
	trades, err := s.trades.FindByOwner(ctx, ownerID, status)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to list trades", map[string]interface{}{"userID": ownerID})
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	return trades, nil
}

// GetTrade returns one of the owner's trades by id. Fails with
// ports.ErrNotFound when no owned trade matches, whether the id is unknown
// or belongs to another user.
func (s *LedgerService) GetTrade(ctx context.Context, ownerID, tradeID int64) (*domain.Trade, error) {
	trade, err := s.trades.FindByIDAndOwner(ctx, tradeID, ownerID)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to fetch trade", map[string]interface{}{"userID": ownerID})
		return nil, fmt.Errorf("failed to fetch trade: %w", err)
	}
	if trade == nil {
		return nil, fmt.Errorf("trade %d: %w", tradeID, ports.ErrNotFound)
	}
	return trade, nil
}

// CloseTrade closes one of the owner's open trades at the given exit price,
// fixing its realized P&L. The transition is atomic: concurrent closes of
// the same trade resolve to exactly one success, the other observing
// ports.ErrAlreadyClosed.
func (s *LedgerService) CloseTrade(ctx context.Context, ownerID, tradeID int64, exitPrice decimal.Decimal) (*domain.Trade, error) {
	if !domain.IsPositive(exitPrice) {
		return nil, fmt.Errorf("exit price must be positive: %w", ports.ErrInvalidInput)
	}

	closedAt := s.now()
	trade, err := s.trades.UpdateForOwner(ctx, tradeID, ownerID, func(t *domain.Trade) error {
		return t.Close(exitPrice, closedAt)
	})
	if err != nil {
		if errors.Is(err, ports.ErrAlreadyClosed) || errors.Is(err, ports.ErrInvalidInput) {
			return nil, err
		}
		s.logger.Error(ctx, err, "Failed to close trade", map[string]interface{}{"userID": ownerID})
		return nil, fmt.Errorf("failed to close trade: %w", err)
	}
	if trade == nil {
		return nil, fmt.Errorf("trade %d: %w", tradeID, ports.ErrNotFound)
	}

	s.logger.Info(ctx, "Trade closed", map[string]interface{}{
		"tradeID":     trade.ID,
		"userID":      ownerID,
		"realizedPnL": trade.RealizedPnL.String(),
	})
	return trade, nil
}

// PortfolioSummary computes aggregate performance statistics over the
// owner's current trade set. The summary is computed fresh on every call.
func (s *LedgerService) PortfolioSummary(ctx context.Context, ownerID int64) (analytics.Summary, error) {
	trades, err := s.trades.FindByOwner(ctx, ownerID, nil)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to load trades for summary", map[string]interface{}{"userID": ownerID})
		return analytics.Summary{}, fmt.Errorf("failed to load trades for summary: %w", err)
	}
	return analytics.Summarize(trades), nil
}

// ListAllTrades returns every trade in the system, most recent first.
// Only privileged requesters may call it; everyone else gets
// ports.ErrPermissionDenied.
func (s *LedgerService) ListAllTrades(ctx context.Context, requesterIsAdmin bool) ([]*domain.Trade, error) {
	if !requesterIsAdmin {
		return nil, fmt.Errorf("admin privileges required: %w", ports.ErrPermissionDenied)
	}
	trades, err := s.trades.FindAllTrades(ctx)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to list all trades")
		return nil, fmt.Errorf("failed to list all trades: %w", err)
	}
	return trades, nil
}
