package worker

import (
	"context"
	"fmt"
	"log/slog"

	"contas/internal/amqp"
	"contas/internal/services"
	"contas/internal/storage"
)

// ExtractWorker drains the extraction job queue. It is a thin shell
// around the intake service; the queue only carries job IDs.
type ExtractWorker struct {
	store     storage.Store
	intake    *services.ExtractionIntake
	batchSize int
}

func NewExtractWorker(store storage.Store, intake *services.ExtractionIntake, batchSize int) *ExtractWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &ExtractWorker{
		store:     store,
		intake:    intake,
		batchSize: batchSize,
	}
}

// HandleJobMessage processes a single extraction job message from AMQP.
func (w *ExtractWorker) HandleJobMessage(ctx context.Context, msg *amqp.ExtractionJobMessage) error {
	slog.InfoContext(ctx, "Processing extraction job", "job_id", msg.JobID)

	if err := w.intake.ProcessJob(ctx, msg.JobID); err != nil {
		return fmt.Errorf("process extraction job: %w", err)
	}
	return nil
}

// ProcessPendingJobs picks up jobs whose messages never arrived. This is
// a backup mechanism in case AMQP messages are lost.
func (w *ExtractWorker) ProcessPendingJobs(ctx context.Context) error {
	pending, err := w.store.ListPendingExtractionJobs(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending extraction jobs: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending extraction jobs", "count", len(pending))

	for _, job := range pending {
		if err := w.intake.ProcessJob(ctx, job.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to process pending job", "job_id", job.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupCheck runs a larger pending sweep once at worker startup to
// recover from missed messages or worker downtime.
func (w *ExtractWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.store.ListPendingExtractionJobs(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list pending jobs for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending extraction jobs found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending extraction jobs on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0
	for _, job := range pending {
		if err := w.intake.ProcessJob(ctx, job.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to process job during startup",
				"job_id", job.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup extraction sweep completed",
		"total", len(pending),
		"processed", successCount,
		"errors", errorCount)

	return nil
}
