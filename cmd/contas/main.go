package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"contas/internal/amqp"
	"contas/internal/config"
	"contas/internal/fx"
	apphttp "contas/internal/http"
	applog "contas/internal/log"
	"contas/internal/services"
	"contas/internal/storage"
	"contas/internal/storage/memory"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	applog.Setup()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	var (
		store storage.Store
		ready func(context.Context) error
	)
	switch cfg.DataBackend {
	case "memory":
		store = memory.New()
		slog.Info("Initialized memory backend", "backend", cfg.DataBackend)
	default:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			slog.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		store = repo
		ready = repo.Ping
		slog.Info("Initialized SQLite backend", "backend", cfg.DataBackend, "path", cfg.SQLiteDBPath)
	}
	defer store.Close()

	// AMQP is optional; without it extraction jobs stay pending until the
	// worker's sweep picks them up.
	var publisher services.JobPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			slog.Warn("Failed to initialize AMQP client, extraction jobs will rely on the worker sweep", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			slog.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		slog.Info("AMQP disabled, extraction jobs will rely on the worker sweep")
	}

	var rateSource fx.RateSource
	if cfg.FXRateURL != "" {
		rateSource = fx.NewHTTPSource(cfg.FXRateURL)
	}
	rates := fx.NewFallbackSource(rateSource, cfg.FXFallbackRate)

	ledger := services.NewLedgerService(store)
	recurring := services.NewRecurringExpander(store, ledger)
	salaries := services.NewSalaryResolver(store)
	deductions := services.NewDeductionService(store)
	settlement := services.NewSettlementCalculator(store, salaries, deductions, rates, services.SettlementConfig{
		SplitRatio: cfg.SplitRatio,
	})
	intake := services.NewExtractionIntake(store, publisher, nil, deductions)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Ledger:     ledger,
		Recurring:  recurring,
		Salaries:   salaries,
		Deductions: deductions,
		Settlement: settlement,
		Intake:     intake,
		Ready:      ready,
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
		slog.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	slog.Info("Starting contas server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	slog.Info("Server stopped gracefully")
}
