package main

import (
	"context"
	"errors"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cryptoLedger/config"
	"cryptoLedger/internal/adapters/logger"
	"cryptoLedger/internal/adapters/sqlite"
	"cryptoLedger/internal/api"
	"cryptoLedger/internal/app"
	"cryptoLedger/internal/auth"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger, err := logger.NewZapLogger(logger.ParseLevel(cfg.LogLevel))
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel})

	// 3. Initialize Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize database repository")
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing database repository")
		}
	}()

	// 4. Initialize Services
	tokenSigner := auth.JWT{Secret: []byte(cfg.JWTSecret), TokenTTL: cfg.TokenTTL}

	ledgerService, err := app.NewLedgerService(appLogger, repo)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize ledger service")
		log.Fatalf("FATAL: Failed to initialize ledger service: %v", err)
	}
	authService, err := app.NewAuthService(appLogger, repo, tokenSigner, cfg.BcryptCost)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize auth service")
		log.Fatalf("FATAL: Failed to initialize auth service: %v", err)
	}

	// 5. Assemble the HTTP Server
	router := api.NewRouter(api.NewHandler(ledgerService, authService), tokenSigner)
	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLogger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
		cancel()
	}()

	go func() {
		appLogger.Info(ctx, "HTTP server listening", map[string]interface{}{"addr": cfg.ListenAddr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error(ctx, err, "HTTP server exited with error")
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, err, "HTTP server shutdown failed")
	}
	appLogger.Info(context.Background(), "Application finished gracefully.")
}
