package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bankdash/internal/amqp"
	"bankdash/internal/cli"
	"bankdash/internal/core"
	apphttp "bankdash/internal/http"
	"bankdash/internal/ledger"
	"bankdash/internal/ledger/memory"
	"bankdash/internal/services"
	"bankdash/internal/session"

	"github.com/shopspring/decimal"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	var (
		fetcher  ledger.TransactionFetcher
		accounts ledger.AccountReader
		users    ledger.UserStore
		store    services.TransactionStore
		closeFn  func() error
	)

	switch cfg.DataBackend {
	case "sqlite":
		repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
		fetcher, accounts, users, store = repo, repo, repo, repo
		closeFn = repo.Close
		logger.Info("Initialized sqlite backend", "path", cfg.SQLiteDBPath)
	default:
		mem := memory.NewSeeded(demoRecords())
		fetcher, accounts, users, store = mem, mem, mem, mem
		logger.Info("Initialized memory backend with demo data")
	}

	// The export publisher is optional; without a broker writes still land
	// in the store and the worker's periodic sweep handles the rest.
	var publisher services.ExportPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	txs := services.NewTransactionService(store, accounts, publisher)
	sessions := session.NewStore(cfg.SessionTTL)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:     ":" + cfg.Port,
		Fetcher:  fetcher,
		Accounts: accounts,
		Users:    users,
		Txs:      txs,
		Sessions: sessions,
		TopN:     cfg.TopCounterparties,
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if closeFn != nil {
			if err := closeFn(); err != nil {
				logger.Error("Store close error", "error", err)
			}
		}
		cancel()
	}()

	logger.Info("Starting bankdash server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

// demoRecords is the seed working set for the in-memory backend, loosely
// a month of activity on the demo checking account.
func demoRecords() []core.TransactionRecord {
	amt := decimal.RequireFromString
	day := core.NewDate

	return []core.TransactionRecord{
		{AccountID: "acc-1", OccurredAt: day(2025, 11, 1), Counterparty: "Payroll Inc", Category: "Income", Amount: amt("3250.00"), Direction: core.Credit, Status: core.StatusCompleted, Description: "Monthly salary"},
		{AccountID: "acc-1", OccurredAt: day(2025, 11, 2), Counterparty: "Whole Foods Market", Category: "Groceries", Amount: amt("156.32"), Direction: core.Debit, Status: core.StatusCompleted},
		{AccountID: "acc-1", OccurredAt: day(2025, 11, 3), Counterparty: "Shell", Category: "Gas", Amount: amt("48.50"), Direction: core.Debit, Status: core.StatusCompleted},
		{AccountID: "acc-1", OccurredAt: day(2025, 11, 5), Counterparty: "Netflix", Category: "Entertainment", Amount: amt("15.49"), Direction: core.Debit, Status: core.StatusCompleted, Description: "Subscription"},
		{AccountID: "acc-1", OccurredAt: day(2025, 11, 7), Counterparty: "Starbucks", Category: "Food & Drink", Amount: amt("6.75"), Direction: core.Debit, Status: core.StatusCompleted},
		{AccountID: "acc-3", OccurredAt: day(2025, 11, 8), Counterparty: "Amazon", Category: "Shopping", Amount: amt("89.99"), Direction: core.Debit, Status: core.StatusPending},
		{AccountID: "acc-1", OccurredAt: day(2025, 11, 10), Counterparty: "Electric Company", Category: "Utilities", Amount: amt("134.20"), Direction: core.Debit, Status: core.StatusCompleted, Description: "November bill"},
		{AccountID: "acc-2", OccurredAt: day(2025, 11, 12), Counterparty: "Interest", Category: "Income", Amount: amt("12.41"), Direction: core.Credit, Status: core.StatusCompleted},
		{AccountID: "acc-1", OccurredAt: day(2025, 11, 15), Counterparty: "Rent LLC", Category: "Housing", Amount: amt("1800.00"), Direction: core.Debit, Status: core.StatusCompleted, Description: "November rent"},
		{AccountID: "acc-1", OccurredAt: day(2025, 11, 16), Counterparty: "", Category: "Misc", Amount: amt("23.00"), Direction: core.Debit, Status: core.StatusCompleted, Description: "ATM withdrawal"},
		{AccountID: "acc-1", OccurredAt: day(2025, 11, 18), Counterparty: "Trader Joe's", Category: "Groceries", Amount: amt("92.18"), Direction: core.Debit, Status: core.StatusCompleted},
		{AccountID: "acc-1", OccurredAt: day(2025, 11, 20), Counterparty: "Acme Consulting", Category: "Income", Amount: amt("450.00"), Direction: core.Credit, Status: core.StatusCompleted, Description: "Side project"},
	}
}
