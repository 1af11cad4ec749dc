package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoLedger/internal/domain"
)

func closedTrade(t *testing.T, pnl string) *domain.Trade {
	t.Helper()
	v, err := decimal.NewFromString(pnl)
	require.NoError(t, err)
	return &domain.Trade{Status: domain.StatusClosed, RealizedPnL: &v}
}

func openTrade() *domain.Trade {
	return &domain.Trade{Status: domain.StatusOpen}
}

func TestSummarize(t *testing.T) {
	t.Run("empty trade set", func(t *testing.T) {
		s := Summarize(nil)
		assert.Equal(t, 0, s.OpenPositions)
		assert.Equal(t, 0, s.ClosedPositions)
		assert.Equal(t, 0, s.WinningTrades)
		assert.Equal(t, 0, s.LosingTrades)
		assert.Equal(t, 0.0, s.WinRate)
		assert.True(t, s.TotalRealizedPnL.IsZero())
	})

	t.Run("no closed trades yields zero win rate", func(t *testing.T) {
		s := Summarize([]*domain.Trade{openTrade(), openTrade()})
		assert.Equal(t, 2, s.OpenPositions)
		assert.Equal(t, 0, s.ClosedPositions)
		assert.Equal(t, 0.0, s.WinRate)
	})

	t.Run("zero pnl counts as neither win nor loss", func(t *testing.T) {
		s := Summarize([]*domain.Trade{
			closedTrade(t, "50"),
			closedTrade(t, "-20"),
			closedTrade(t, "0"),
			openTrade(),
		})
		assert.Equal(t, 1, s.OpenPositions)
		assert.Equal(t, 3, s.ClosedPositions)
		assert.Equal(t, 1, s.WinningTrades)
		assert.Equal(t, 1, s.LosingTrades)
		assert.True(t, s.TotalRealizedPnL.Equal(decimal.NewFromInt(30)), "got %s", s.TotalRealizedPnL)
		assert.Equal(t, 50.0, s.WinRate)
	})

	t.Run("win rate is rounded to two decimals", func(t *testing.T) {
		s := Summarize([]*domain.Trade{
			closedTrade(t, "10"),
			closedTrade(t, "-5"),
			closedTrade(t, "-5"),
		})
		// 1/3 winners
		assert.Equal(t, 33.33, s.WinRate)
	})

	t.Run("pnl is accumulated as decimals", func(t *testing.T) {
		s := Summarize([]*domain.Trade{
			closedTrade(t, "0.1"),
			closedTrade(t, "0.2"),
		})
		want, err := decimal.NewFromString("0.3")
		require.NoError(t, err)
		assert.True(t, s.TotalRealizedPnL.Equal(want), "got %s", s.TotalRealizedPnL)
	})
}
