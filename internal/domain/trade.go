package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Trade represents a single discretionary trading position owned by a user.
//
// A trade starts OPEN and transitions to CLOSED exactly once. Exit price
// and realized P&L are set at close time and never recomputed afterward.
type Trade struct {
	ID          int64            // Unique identifier (assigned by the store)
	UserID      int64            // Owner; immutable after creation
	Symbol      string           // Trading pair in BASE/QUOTE form (e.g. "BTC/USDT")
	Side        Side             // BUY (long) or SELL (short); fixed at creation
	EntryPrice  decimal.Decimal  // Price the position was opened at; > 0
	Quantity    decimal.Decimal  // Position size in base currency; > 0
	Status      TradeStatus      // OPEN or CLOSED
	ExitPrice   *decimal.Decimal // Set once at close; nil while OPEN
	RealizedPnL *decimal.Decimal // Fixed at close; nil while OPEN
	OpenedAt    time.Time        // When the position was opened
	ClosedAt    *time.Time       // When the position was closed; nil while OPEN
}

// IsOpen checks if the trade status is open.
func (t *Trade) IsOpen() bool {
	return t.Status == StatusOpen
}

// NewTrade validates the input and builds a new OPEN trade for the given
// owner. The symbol is normalized to upper case. Validation failures wrap
// ErrInvalidInput.
func NewTrade(userID int64, symbol string, side Side, entryPrice, quantity decimal.Decimal, now time.Time) (*Trade, error) {
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if !side.IsValid() {
		return nil, fmt.Errorf("unknown trade side %q: %w", side, ErrInvalidInput)
	}
	if !IsPositive(entryPrice) {
		return nil, fmt.Errorf("entry price must be positive: %w", ErrInvalidInput)
	}
	if !IsPositive(quantity) {
		return nil, fmt.Errorf("quantity must be positive: %w", ErrInvalidInput)
	}

	return &Trade{
		UserID:     userID,
		Symbol:     normalized,
		Side:       side,
		EntryPrice: RoundMoney(entryPrice),
		Quantity:   RoundMoney(quantity),
		Status:     StatusOpen,
		OpenedAt:   now.UTC(),
	}, nil
}

// NormalizeSymbol validates a trading pair symbol and returns its canonical
// upper-case form. The expected format is BASE/QUOTE with exactly one
// separator and alphabetic segments on both sides (e.g. "BTC/USDT").
func NormalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return "", fmt.Errorf("symbol %q must be in BASE/QUOTE form: %w", symbol, ErrInvalidInput)
	}
	for _, part := range parts {
		if part == "" || !isAlpha(part) {
			return "", fmt.Errorf("symbol %q must be in BASE/QUOTE form: %w", symbol, ErrInvalidInput)
		}
	}
	return s, nil
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// CalculatePnL computes the realized profit or loss of closing this trade
// at the given exit price.
//
//	BUY  (long):  (exitPrice - entryPrice) * quantity
//	SELL (short): (entryPrice - exitPrice) * quantity
//
// The multiplication runs at full precision; only the final result is
// rounded to the canonical scale, so very small quantities never underflow
// to a zero P&L.
func (t *Trade) CalculatePnL(exitPrice decimal.Decimal) decimal.Decimal {
	var diff decimal.Decimal
	if t.Side == Buy {
		diff = exitPrice.Sub(t.EntryPrice)
	} else {
		diff = t.EntryPrice.Sub(exitPrice)
	}
	return RoundMoney(diff.Mul(t.Quantity))
}

// Close transitions the trade to CLOSED at the given exit price, fixing the
// realized P&L and the close timestamp. Closing an already closed trade
// fails with ErrAlreadyClosed; the recorded exit data is untouched.
func (t *Trade) Close(exitPrice decimal.Decimal, now time.Time) error {
	if t.Status == StatusClosed {
		return fmt.Errorf("trade %d: %w", t.ID, ErrAlreadyClosed)
	}
	if !IsPositive(exitPrice) {
		return fmt.Errorf("exit price must be positive: %w", ErrInvalidInput)
	}

	exit := RoundMoney(exitPrice)
	pnl := t.CalculatePnL(exit)
	closedAt := now.UTC()

	t.ExitPrice = &exit
	t.RealizedPnL = &pnl
	t.ClosedAt = &closedAt
	t.Status = StatusClosed
	return nil
}
