package analytics

import (
	"math"

	"github.com/shopspring/decimal"

	"cryptoLedger/internal/domain"
)

// Summary holds aggregate performance statistics for one user's trade set.
type Summary struct {
	TotalRealizedPnL decimal.Decimal // Sum of realized P&L over closed trades
	OpenPositions    int             // Trades still OPEN
	ClosedPositions  int             // Trades that reached CLOSED
	WinningTrades    int             // Closed trades with P&L > 0
	LosingTrades     int             // Closed trades with P&L < 0
	WinRate          float64         // WinningTrades / ClosedPositions * 100, 0 when nothing closed
}

// Summarize computes performance statistics over a set of trades.
//
// The computation is pure: it reflects exactly the trades passed in, with
// no cached state. P&L is accumulated as decimals, never as binary floats.
// A closed trade with zero P&L counts as neither a win nor a loss.
func Summarize(trades []*domain.Trade) Summary {
	s := Summary{TotalRealizedPnL: decimal.Zero}

	for _, trade := range trades {
		if trade.Status != domain.StatusClosed {
			s.OpenPositions++
			continue
		}
		s.ClosedPositions++
		if trade.RealizedPnL == nil {
			// A closed trade always carries its P&L; tolerate a damaged
			// record rather than skewing the win counters.
			continue
		}
		s.TotalRealizedPnL = s.TotalRealizedPnL.Add(*trade.RealizedPnL)
		switch trade.RealizedPnL.Sign() {
		case 1:
			s.WinningTrades++
		case -1:
			s.LosingTrades++
		}
	}

	if s.ClosedPositions > 0 {
		rate := float64(s.WinningTrades) / float64(s.ClosedPositions) * 100
		s.WinRate = math.Round(rate*100) / 100
	}
	return s
}
