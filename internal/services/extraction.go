package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"contas/internal/core"
	"contas/internal/extract"
	"contas/internal/storage"
)

// JobPublisher enqueues extraction jobs for the worker. A nil publisher
// leaves submitted jobs pending until the worker's pending sweep picks
// them up.
type JobPublisher interface {
	PublishExtractionJob(ctx context.Context, jobID string) error
}

// ExtractionIntake runs the payslip pipeline: a document comes in, an
// external extractor proposes deduction candidates, and a person confirms
// the ones that become real deductions. Nothing reaches the deduction
// ledger without confirmation.
type ExtractionIntake struct {
	store      storage.Store
	publisher  JobPublisher
	extractor  extract.Extractor
	deductions *DeductionService
}

func NewExtractionIntake(store storage.Store, publisher JobPublisher, extractor extract.Extractor, deductions *DeductionService) *ExtractionIntake {
	return &ExtractionIntake{
		store:      store,
		publisher:  publisher,
		extractor:  extractor,
		deductions: deductions,
	}
}

// SubmitDocument stores the document and enqueues a job for the worker.
// Publish failures do not fail the submission; the job stays pending.
func (s *ExtractionIntake) SubmitDocument(ctx context.Context, mimeType string, document []byte) (storage.ExtractionJob, error) {
	if len(document) == 0 {
		return storage.ExtractionJob{}, core.ValidationError{Field: "document", Reason: "cannot be empty"}
	}
	if mimeType == "" {
		return storage.ExtractionJob{}, core.ValidationError{Field: "content_type", Reason: "required"}
	}

	now := time.Now().Unix()
	job := storage.ExtractionJob{
		ID:        uuid.NewString(),
		Status:    storage.JobPending,
		MIMEType:  mimeType,
		Document:  document,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateExtractionJob(ctx, job); err != nil {
		return storage.ExtractionJob{}, fmt.Errorf("create extraction job: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishExtractionJob(ctx, job.ID); err != nil {
			slog.WarnContext(ctx, "Failed to publish extraction job, left pending",
				"job_id", job.ID,
				"error", err)
		}
	}

	return job, nil
}

// ProcessJob runs the extractor over a stored document and records the
// validated candidates. Safe to call more than once per job.
func (s *ExtractionIntake) ProcessJob(ctx context.Context, jobID string) error {
	job, err := s.store.GetExtractionJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("get extraction job: %w", err)
	}
	if job.Status == storage.JobReady || job.Status == storage.JobDone {
		slog.InfoContext(ctx, "Extraction job already processed", "job_id", jobID, "status", job.Status)
		return nil
	}

	result, err := s.extractor.Extract(ctx, job.MIMEType, job.Document)
	if err != nil {
		job.Status = storage.JobFailed
		job.Error = err.Error()
		job.UpdatedAt = time.Now().Unix()
		if updateErr := s.store.UpdateExtractionJob(ctx, job); updateErr != nil {
			slog.ErrorContext(ctx, "Failed to mark extraction job failed",
				"job_id", jobID,
				"error", updateErr)
		}
		return fmt.Errorf("extract document: %w", err)
	}

	kept, dropped := extract.FilterValid(result.Candidates)
	if dropped > 0 {
		slog.WarnContext(ctx, "Dropped invalid extraction candidates",
			"job_id", jobID,
			"dropped", dropped,
			"kept", len(kept))
	}

	candidates, err := json.Marshal(kept)
	if err != nil {
		return fmt.Errorf("marshal candidates: %w", err)
	}

	job.Status = storage.JobReady
	job.Candidates = candidates
	job.Error = ""
	job.UpdatedAt = time.Now().Unix()
	if err := s.store.UpdateExtractionJob(ctx, job); err != nil {
		return fmt.Errorf("update extraction job: %w", err)
	}

	slog.InfoContext(ctx, "Extraction job ready", "job_id", jobID, "candidates", len(kept))
	return nil
}

// GetJob returns the job with its current candidates.
func (s *ExtractionIntake) GetJob(ctx context.Context, jobID string) (storage.ExtractionJob, []extract.Candidate, error) {
	job, err := s.store.GetExtractionJob(ctx, jobID)
	if err != nil {
		return storage.ExtractionJob{}, nil, err
	}

	var candidates []extract.Candidate
	if len(job.Candidates) > 0 {
		if err := json.Unmarshal(job.Candidates, &candidates); err != nil {
			return storage.ExtractionJob{}, nil, fmt.Errorf("decode stored candidates: %w", err)
		}
	}
	return job, candidates, nil
}

// ConfirmCandidates turns the selected candidates of a ready job into
// deductions through the usual validated path and closes the job.
func (s *ExtractionIntake) ConfirmCandidates(ctx context.Context, jobID string, participantID int64, indices []int) ([]core.Deduction, error) {
	job, candidates, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != storage.JobReady {
		return nil, core.ValidationError{Field: "status", Reason: fmt.Sprintf("job is %s, not ready for confirmation", job.Status)}
	}
	if len(indices) == 0 {
		return nil, core.ValidationError{Field: "candidates", Reason: "select at least one candidate"}
	}

	created := make([]core.Deduction, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(candidates) {
			return created, core.ValidationError{Field: "candidates", Reason: fmt.Sprintf("index %d out of range", i)}
		}
		c := candidates[i]

		date, err := core.ParseDate(c.Date)
		if err != nil {
			return created, core.ValidationError{Field: "date", Reason: "must be a valid YYYY-MM-DD date"}
		}

		deduction, err := s.deductions.CreateDeduction(ctx, core.Deduction{
			ParticipantID: participantID,
			Description:   c.Label,
			Amount:        core.Money{Cents: c.AmountCents},
			DueDate:       date,
			Period:        date.Period(),
		})
		if err != nil {
			return created, fmt.Errorf("confirm candidate %d: %w", i, err)
		}
		created = append(created, deduction)
	}

	job.Status = storage.JobDone
	job.UpdatedAt = time.Now().Unix()
	if err := s.store.UpdateExtractionJob(ctx, job); err != nil {
		return created, fmt.Errorf("close extraction job: %w", err)
	}

	slog.InfoContext(ctx, "Extraction job confirmed",
		"job_id", jobID,
		"participant_id", participantID,
		"deductions", len(created))
	return created, nil
}
