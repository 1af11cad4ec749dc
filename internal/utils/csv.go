package utils

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"cryptoLedger/internal/domain"
)

func WriteTradesToCSV(trades []*domain.Trade, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	writer.Write([]string{"id", "user_id", "symbol", "side", "entry_price", "quantity", "status", "exit_price", "realized_pnl", "opened_at", "closed_at"})

	for _, t := range trades {
		exitPrice, realizedPnL, closedAt := "", "", ""
		if t.ExitPrice != nil {
			exitPrice = t.ExitPrice.String()
		}
		if t.RealizedPnL != nil {
			realizedPnL = t.RealizedPnL.String()
		}
		if t.ClosedAt != nil {
			closedAt = t.ClosedAt.Format(time.RFC3339)
		}
		writer.Write([]string{
			strconv.FormatInt(t.ID, 10),
			strconv.FormatInt(t.UserID, 10),
			t.Symbol,
			string(t.Side),
			t.EntryPrice.String(),
			t.Quantity.String(),
			string(t.Status),
			exitPrice,
			realizedPnL,
			t.OpenedAt.Format(time.RFC3339),
			closedAt,
		})
	}
	return writer.Error()
}
