package worker

import (
	"context"
	"errors"
	"testing"

	"contas/internal/amqp"
	"contas/internal/extract"
	"contas/internal/services"
	"contas/internal/storage"
	"contas/internal/storage/memory"
)

type fakeExtractor struct {
	result extract.Result
	err    error
}

func (f fakeExtractor) Extract(ctx context.Context, mimeType string, document []byte) (extract.Result, error) {
	return f.result, f.err
}

func newWorkerFixture(t *testing.T, extractor extract.Extractor, batchSize int) (*ExtractWorker, *services.ExtractionIntake, *memory.Store) {
	t.Helper()
	store := memory.New()
	intake := services.NewExtractionIntake(store, nil, extractor, services.NewDeductionService(store))
	return NewExtractWorker(store, intake, batchSize), intake, store
}

func submitJob(t *testing.T, intake *services.ExtractionIntake) string {
	t.Helper()
	job, err := intake.SubmitDocument(context.Background(), "application/pdf", []byte("payslip"))
	if err != nil {
		t.Fatalf("SubmitDocument() error = %v", err)
	}
	return job.ID
}

func TestHandleJobMessage(t *testing.T) {
	ctx := context.Background()
	extractor := fakeExtractor{result: extract.Result{Candidates: []extract.Candidate{
		{Label: "INSS", AmountCents: 50000, Date: "2025-03-10"},
	}}}
	w, intake, store := newWorkerFixture(t, extractor, 10)
	jobID := submitJob(t, intake)

	if err := w.HandleJobMessage(ctx, amqp.NewExtractionJobMessage(jobID)); err != nil {
		t.Fatalf("HandleJobMessage() error = %v", err)
	}

	job, err := store.GetExtractionJob(ctx, jobID)
	if err != nil {
		t.Fatalf("GetExtractionJob() error = %v", err)
	}
	if job.Status != storage.JobReady {
		t.Errorf("job.Status = %q, want %q", job.Status, storage.JobReady)
	}

	if err := w.HandleJobMessage(ctx, amqp.NewExtractionJobMessage("missing")); err == nil {
		t.Error("expected an error for an unknown job")
	}
}

func TestProcessPendingJobs(t *testing.T) {
	ctx := context.Background()
	extractor := fakeExtractor{result: extract.Result{}}
	w, intake, store := newWorkerFixture(t, extractor, 10)

	if err := w.ProcessPendingJobs(ctx); err != nil {
		t.Fatalf("ProcessPendingJobs() on empty store error = %v", err)
	}

	ids := []string{submitJob(t, intake), submitJob(t, intake)}
	if err := w.ProcessPendingJobs(ctx); err != nil {
		t.Fatalf("ProcessPendingJobs() error = %v", err)
	}
	for _, id := range ids {
		job, err := store.GetExtractionJob(ctx, id)
		if err != nil {
			t.Fatalf("GetExtractionJob() error = %v", err)
		}
		if job.Status != storage.JobReady {
			t.Errorf("job %s status = %q, want %q", id, job.Status, storage.JobReady)
		}
	}
}

func TestStartupCheckContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	extractor := fakeExtractor{err: errors.New("model down")}
	w, intake, store := newWorkerFixture(t, extractor, 2)

	ids := []string{submitJob(t, intake), submitJob(t, intake)}
	if err := w.StartupCheck(ctx); err != nil {
		t.Fatalf("StartupCheck() error = %v", err)
	}
	for _, id := range ids {
		job, err := store.GetExtractionJob(ctx, id)
		if err != nil {
			t.Fatalf("GetExtractionJob() error = %v", err)
		}
		if job.Status != storage.JobFailed {
			t.Errorf("job %s status = %q, want %q", id, job.Status, storage.JobFailed)
		}
	}
}
