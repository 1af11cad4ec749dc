package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"cryptoLedger/internal/adapters/logger"
	"cryptoLedger/internal/adapters/sqlite"
	"cryptoLedger/internal/analytics"
	"cryptoLedger/internal/domain"
	"cryptoLedger/internal/utils"
)

// export_trades dumps the trade ledger to CSV and prints per-user
// performance totals. Offline reporting tool, reads the same database
// the server writes.
func main() {
	dbPath := flag.String("db", "./data/trade_ledger.db", "path to the SQLite database")
	outPath := flag.String("out", "trades_export.csv", "path of the CSV file to write")
	userID := flag.Int64("user", 0, "restrict the export to one user id (0 = all users)")
	flag.Parse()

	zapLogger, err := logger.NewZapLogger(logger.ParseLevel("WARN"))
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx := context.Background()
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: *dbPath, Logger: zapLogger})
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer repo.Close()

	var trades []*domain.Trade
	if *userID > 0 {
		trades, err = repo.FindByOwner(ctx, *userID, nil)
	} else {
		trades, err = repo.FindAllTrades(ctx)
	}
	if err != nil {
		log.Fatalf("Error loading trades: %v", err)
	}

	if err := utils.WriteTradesToCSV(trades, *outPath); err != nil {
		log.Fatalf("Error writing CSV: %v", err)
	}
	fmt.Printf("Wrote %d trades to %s\n\n", len(trades), *outPath)

	printUserTotals(trades)
}

// printUserTotals prints one summary row per user.
func printUserTotals(trades []*domain.Trade) {
	byUser := make(map[int64][]*domain.Trade)
	var order []int64
	for _, t := range trades {
		if _, seen := byUser[t.UserID]; !seen {
			order = append(order, t.UserID)
		}
		byUser[t.UserID] = append(byUser[t.UserID], t)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "User\tOpen\tClosed\tWins\tLosses\tWinRate\tTotalPnL\t")
	for _, id := range order {
		s := analytics.Summarize(byUser[id])
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%.2f\t%s\t\n",
			id,
			s.OpenPositions,
			s.ClosedPositions,
			s.WinningTrades,
			s.LosingTrades,
			s.WinRate,
			s.TotalRealizedPnL.String(),
		)
	}
	w.Flush()
}
