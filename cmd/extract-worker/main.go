package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"contas/internal/amqp"
	"contas/internal/config"
	"contas/internal/extract"
	applog "contas/internal/log"
	"contas/internal/services"
	"contas/internal/storage"
	"contas/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	applog.Setup()

	slog.Info("Starting extract-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	if cfg.ExtractorURL == "" {
		slog.Error("EXTRACTOR_URL is required for the extract worker")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		slog.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	extractor := extract.NewHTTPExtractor(cfg.ExtractorURL)
	deductions := services.NewDeductionService(repo)
	intake := services.NewExtractionIntake(repo, nil, extractor, deductions)
	w := worker.NewExtractWorker(repo, intake, cfg.ExtractBatchSize)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		slog.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	if err := w.StartupCheck(ctx); err != nil {
		slog.Error("Startup check failed", "error", err)
	}

	// Periodic sweep for jobs whose messages were lost.
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := w.ProcessPendingJobs(ctx); err != nil {
					slog.Error("Pending job sweep failed", "error", err)
				}
			}
		}
	}()

	if cfg.AMQPURL == "" {
		slog.Info("AMQP disabled, running on the periodic sweep only")
		<-ctx.Done()
		slog.Info("Extract-worker stopped")
		return
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		slog.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	slog.Info("Extract-worker configured",
		"queue", cfg.AMQPQueue,
		"batch_size", cfg.ExtractBatchSize,
		"sweep_interval", cfg.SweepInterval)

	err = amqpClient.ConsumeExtractionJobs(ctx, func(msg *amqp.ExtractionJobMessage) error {
		return w.HandleJobMessage(ctx, msg)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Consumer stopped with error", "error", err)
		os.Exit(1)
	}

	slog.Info("Extract-worker stopped gracefully")
}
