package services

import (
	"context"
	"errors"
	"testing"

	"contas/internal/core"
	"contas/internal/extract"
	"contas/internal/storage"
	"contas/internal/storage/memory"
)

type stubExtractor struct {
	result extract.Result
	err    error
	calls  int
}

func (s *stubExtractor) Extract(ctx context.Context, mimeType string, document []byte) (extract.Result, error) {
	s.calls++
	return s.result, s.err
}

type stubPublisher struct {
	published []string
	err       error
}

func (s *stubPublisher) PublishExtractionJob(ctx context.Context, jobID string) error {
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, jobID)
	return nil
}

func newIntakeFixture(t *testing.T, extractor extract.Extractor, publisher JobPublisher) (*ExtractionIntake, *memory.Store) {
	t.Helper()
	store := memory.New()
	intake := NewExtractionIntake(store, publisher, extractor, NewDeductionService(store))
	return intake, store
}

func TestExtractionIntake_SubmitDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("stores pending job and publishes its ID", func(t *testing.T) {
		publisher := &stubPublisher{}
		intake, store := newIntakeFixture(t, nil, publisher)

		job, err := intake.SubmitDocument(ctx, "application/pdf", []byte("payslip bytes"))
		if err != nil {
			t.Fatalf("SubmitDocument() error = %v", err)
		}
		if job.ID == "" {
			t.Error("expected a generated job ID")
		}
		if job.Status != storage.JobPending {
			t.Errorf("job.Status = %q, want %q", job.Status, storage.JobPending)
		}
		if job.CreatedAt == 0 || job.UpdatedAt == 0 {
			t.Error("expected creation timestamps to be set")
		}

		stored, err := store.GetExtractionJob(ctx, job.ID)
		if err != nil {
			t.Fatalf("GetExtractionJob() error = %v", err)
		}
		if string(stored.Document) != "payslip bytes" {
			t.Errorf("stored document = %q", stored.Document)
		}
		if len(publisher.published) != 1 || publisher.published[0] != job.ID {
			t.Errorf("published = %v, want [%s]", publisher.published, job.ID)
		}
	})

	t.Run("publish failure leaves job pending", func(t *testing.T) {
		publisher := &stubPublisher{err: errors.New("broker down")}
		intake, store := newIntakeFixture(t, nil, publisher)

		job, err := intake.SubmitDocument(ctx, "application/pdf", []byte("payslip"))
		if err != nil {
			t.Fatalf("SubmitDocument() error = %v", err)
		}
		stored, err := store.GetExtractionJob(ctx, job.ID)
		if err != nil {
			t.Fatalf("GetExtractionJob() error = %v", err)
		}
		if stored.Status != storage.JobPending {
			t.Errorf("job.Status = %q, want %q", stored.Status, storage.JobPending)
		}
	})

	t.Run("rejects an empty document", func(t *testing.T) {
		intake, _ := newIntakeFixture(t, nil, nil)
		if _, err := intake.SubmitDocument(ctx, "application/pdf", nil); !core.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("rejects a missing content type", func(t *testing.T) {
		intake, _ := newIntakeFixture(t, nil, nil)
		if _, err := intake.SubmitDocument(ctx, "", []byte("doc")); !core.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestExtractionIntake_ProcessJob(t *testing.T) {
	ctx := context.Background()

	t.Run("marks job ready and drops invalid candidates", func(t *testing.T) {
		extractor := &stubExtractor{result: extract.Result{Candidates: []extract.Candidate{
			{Label: "INSS", AmountCents: 50000, Date: "2025-03-10"},
			{Label: "", AmountCents: 1000, Date: "2025-03-10"},
			{Label: "IRRF", AmountCents: -5, Date: "2025-03-10"},
		}}}
		intake, _ := newIntakeFixture(t, extractor, nil)

		job, err := intake.SubmitDocument(ctx, "application/pdf", []byte("payslip"))
		if err != nil {
			t.Fatalf("SubmitDocument() error = %v", err)
		}
		if err := intake.ProcessJob(ctx, job.ID); err != nil {
			t.Fatalf("ProcessJob() error = %v", err)
		}

		got, candidates, err := intake.GetJob(ctx, job.ID)
		if err != nil {
			t.Fatalf("GetJob() error = %v", err)
		}
		if got.Status != storage.JobReady {
			t.Errorf("job.Status = %q, want %q", got.Status, storage.JobReady)
		}
		if len(candidates) != 1 || candidates[0].Label != "INSS" {
			t.Fatalf("candidates = %+v, want only the valid one", candidates)
		}
	})

	t.Run("is idempotent once ready", func(t *testing.T) {
		extractor := &stubExtractor{result: extract.Result{Candidates: []extract.Candidate{
			{Label: "INSS", AmountCents: 50000, Date: "2025-03-10"},
		}}}
		intake, _ := newIntakeFixture(t, extractor, nil)

		job, err := intake.SubmitDocument(ctx, "application/pdf", []byte("payslip"))
		if err != nil {
			t.Fatalf("SubmitDocument() error = %v", err)
		}
		if err := intake.ProcessJob(ctx, job.ID); err != nil {
			t.Fatalf("first ProcessJob() error = %v", err)
		}
		if err := intake.ProcessJob(ctx, job.ID); err != nil {
			t.Fatalf("second ProcessJob() error = %v", err)
		}
		if extractor.calls != 1 {
			t.Errorf("extractor called %d times, want 1", extractor.calls)
		}
	})

	t.Run("extractor failure marks job failed", func(t *testing.T) {
		extractor := &stubExtractor{err: errors.New("model timeout")}
		intake, store := newIntakeFixture(t, extractor, nil)

		job, err := intake.SubmitDocument(ctx, "application/pdf", []byte("payslip"))
		if err != nil {
			t.Fatalf("SubmitDocument() error = %v", err)
		}
		if err := intake.ProcessJob(ctx, job.ID); err == nil {
			t.Fatal("expected ProcessJob to return the extractor error")
		}

		stored, err := store.GetExtractionJob(ctx, job.ID)
		if err != nil {
			t.Fatalf("GetExtractionJob() error = %v", err)
		}
		if stored.Status != storage.JobFailed {
			t.Errorf("job.Status = %q, want %q", stored.Status, storage.JobFailed)
		}
		if stored.Error == "" {
			t.Error("expected the failure reason to be recorded")
		}
	})

	t.Run("unknown job is not found", func(t *testing.T) {
		intake, _ := newIntakeFixture(t, &stubExtractor{}, nil)
		if err := intake.ProcessJob(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestExtractionIntake_ConfirmCandidates(t *testing.T) {
	ctx := context.Background()

	readyJob := func(t *testing.T) (*ExtractionIntake, *memory.Store, string) {
		t.Helper()
		extractor := &stubExtractor{result: extract.Result{Candidates: []extract.Candidate{
			{Label: "INSS", AmountCents: 50000, Date: "2025-03-10"},
			{Label: "IRRF", AmountCents: 32000, Date: "2025-03-15"},
		}}}
		intake, store := newIntakeFixture(t, extractor, nil)
		job, err := intake.SubmitDocument(ctx, "application/pdf", []byte("payslip"))
		if err != nil {
			t.Fatalf("SubmitDocument() error = %v", err)
		}
		if err := intake.ProcessJob(ctx, job.ID); err != nil {
			t.Fatalf("ProcessJob() error = %v", err)
		}
		return intake, store, job.ID
	}

	t.Run("confirmed candidates become deductions", func(t *testing.T) {
		intake, store, jobID := readyJob(t)

		created, err := intake.ConfirmCandidates(ctx, jobID, anaID, []int{0, 1})
		if err != nil {
			t.Fatalf("ConfirmCandidates() error = %v", err)
		}
		if len(created) != 2 {
			t.Fatalf("created %d deductions, want 2", len(created))
		}
		if created[0].Description != "INSS" || created[0].Amount.Cents != 50000 {
			t.Errorf("first deduction = %+v", created[0])
		}
		if created[0].Period != (core.Period{Month: 3, Year: 2025}) {
			t.Errorf("first deduction period = %v", created[0].Period)
		}

		listed, err := store.ListDeductions(ctx, anaID, core.Period{Month: 3, Year: 2025})
		if err != nil {
			t.Fatalf("ListDeductions() error = %v", err)
		}
		if len(listed) != 2 {
			t.Errorf("listed %d deductions, want 2", len(listed))
		}

		job, _, err := intake.GetJob(ctx, jobID)
		if err != nil {
			t.Fatalf("GetJob() error = %v", err)
		}
		if job.Status != storage.JobDone {
			t.Errorf("job.Status = %q, want %q", job.Status, storage.JobDone)
		}
	})

	t.Run("partial selection confirms only the chosen candidates", func(t *testing.T) {
		intake, store, jobID := readyJob(t)

		created, err := intake.ConfirmCandidates(ctx, jobID, anaID, []int{1})
		if err != nil {
			t.Fatalf("ConfirmCandidates() error = %v", err)
		}
		if len(created) != 1 || created[0].Description != "IRRF" {
			t.Fatalf("created = %+v, want only IRRF", created)
		}
		listed, err := store.ListDeductions(ctx, anaID, core.Period{Month: 3, Year: 2025})
		if err != nil {
			t.Fatalf("ListDeductions() error = %v", err)
		}
		if len(listed) != 1 {
			t.Errorf("listed %d deductions, want 1", len(listed))
		}
	})

	t.Run("rejects a job that is not ready", func(t *testing.T) {
		intake, _ := newIntakeFixture(t, &stubExtractor{}, nil)
		job, err := intake.SubmitDocument(ctx, "application/pdf", []byte("payslip"))
		if err != nil {
			t.Fatalf("SubmitDocument() error = %v", err)
		}
		if _, err := intake.ConfirmCandidates(ctx, job.ID, anaID, []int{0}); !core.IsValidation(err) {
			t.Errorf("expected validation error for pending job, got %v", err)
		}
	})

	t.Run("rejects an empty selection", func(t *testing.T) {
		intake, _, jobID := readyJob(t)
		if _, err := intake.ConfirmCandidates(ctx, jobID, anaID, nil); !core.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("rejects an out of range index", func(t *testing.T) {
		intake, _, jobID := readyJob(t)
		if _, err := intake.ConfirmCandidates(ctx, jobID, anaID, []int{5}); !core.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}
