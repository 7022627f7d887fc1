// Package storage defines the persistence boundary of the settlement
// engine and its SQLite implementation.
package storage

import (
	"context"

	"contas/internal/core"
)

// Store is the persistence contract the services are written against.
// Implemented by the SQLite repository and by the in-memory store used
// in tests and for local development.
type Store interface {
	// Participants are seeded by migration; the store only reads them.
	GetParticipant(ctx context.Context, id int64) (core.Participant, error)
	ListParticipants(ctx context.Context) ([]core.Participant, error)

	CreateCategory(ctx context.Context, name string) (core.Category, error)
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	CountExpensesByCategory(ctx context.Context, categoryID int64) (int, error)

	// UpsertExpense inserts or replaces the entry for the entry's
	// (participant, category, month, year) tuple. The tuple invariant must
	// hold under concurrent writers.
	UpsertExpense(ctx context.Context, entry core.ExpenseEntry) (core.ExpenseEntry, error)
	DeleteExpense(ctx context.Context, id int64) error
	// DeleteExpenseByTuple removes the entry for the tuple if present.
	// Reports whether an entry was removed; absence is not an error.
	DeleteExpenseByTuple(ctx context.Context, participantID, categoryID int64, period core.Period) (bool, error)
	DeleteExpensesByTemplate(ctx context.Context, templateID int64) (int, error)
	// ListExpenses returns entries for the year; month 0 means the whole year.
	ListExpenses(ctx context.Context, year, month int) ([]core.ExpenseEntry, error)
	ListExpensesByCategory(ctx context.Context, categoryID int64) ([]core.ExpenseEntry, error)

	CreateTemplate(ctx context.Context, tpl core.RecurringTemplate) (core.RecurringTemplate, error)
	GetTemplate(ctx context.Context, id int64) (core.RecurringTemplate, error)
	ListTemplates(ctx context.Context) ([]core.RecurringTemplate, error)
	UpdateTemplate(ctx context.Context, tpl core.RecurringTemplate) error
	DeleteTemplate(ctx context.Context, id int64) error

	UpsertSalaryProfile(ctx context.Context, profile core.SalaryProfile) (core.SalaryProfile, error)
	GetSalaryProfile(ctx context.Context, participantID int64) (core.SalaryProfile, error)
	DeleteSalaryProfile(ctx context.Context, participantID int64) error

	CreateDeduction(ctx context.Context, d core.Deduction) (core.Deduction, error)
	ListDeductions(ctx context.Context, participantID int64, period core.Period) ([]core.Deduction, error)
	DeleteDeduction(ctx context.Context, id int64) error

	CreateExtractionJob(ctx context.Context, job ExtractionJob) error
	GetExtractionJob(ctx context.Context, id string) (ExtractionJob, error)
	UpdateExtractionJob(ctx context.Context, job ExtractionJob) error
	// ListPendingExtractionJobs returns up to limit jobs still waiting for
	// a worker, oldest first.
	ListPendingExtractionJobs(ctx context.Context, limit int) ([]ExtractionJob, error)

	Close() error
}

// Extraction job states.
const (
	JobPending = "pending"
	JobReady   = "ready"
	JobFailed  = "failed"
	JobDone    = "done"
)

// ExtractionJob tracks one submitted document through the extraction
// pipeline. Candidates are stored as JSON produced by the extract package.
type ExtractionJob struct {
	ID         string
	Status     string
	MIMEType   string
	Document   []byte
	Candidates []byte // JSON-encoded extract.Candidate slice, nil until ready
	Error      string
	CreatedAt  int64 // unix seconds
	UpdatedAt  int64
}
