// Package services holds the business logic of the settlement engine:
// the expense ledger, the recurring expander, the salary resolver, the
// deduction ledger and the settlement calculator.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"contas/internal/core"
	"contas/internal/storage"
)

// LedgerService owns the shared-expense ledger: one entry per
// (participant, category, month, year) tuple, upserts replace.
type LedgerService struct {
	store storage.Store
}

func NewLedgerService(store storage.Store) *LedgerService {
	return &LedgerService{store: store}
}

// UpsertResult reports what an upsert actually did.
type UpsertResult struct {
	Entry   core.ExpenseEntry
	Deleted bool // amount was zero and any existing entry was removed
}

// UpsertExpense creates or replaces the entry for the tuple. An amount of
// zero cents deletes any existing entry instead; zero entries never persist.
func (s *LedgerService) UpsertExpense(ctx context.Context, participantID, categoryID, amountCents int64, period core.Period, templateID int64) (UpsertResult, error) {
	if err := period.Validate(); err != nil {
		return UpsertResult{}, err
	}
	if amountCents < 0 {
		return UpsertResult{}, core.ValidationError{Field: "amount", Reason: "must not be negative"}
	}
	if _, err := s.store.GetParticipant(ctx, participantID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return UpsertResult{}, core.ValidationError{Field: "participant_id", Reason: "unknown participant"}
		}
		return UpsertResult{}, fmt.Errorf("check participant: %w", err)
	}
	if _, err := s.store.GetCategory(ctx, categoryID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return UpsertResult{}, core.ValidationError{Field: "category_id", Reason: "unknown category"}
		}
		return UpsertResult{}, fmt.Errorf("check category: %w", err)
	}

	if amountCents == 0 {
		removed, err := s.store.DeleteExpenseByTuple(ctx, participantID, categoryID, period)
		if err != nil {
			return UpsertResult{}, fmt.Errorf("delete zero-amount expense: %w", err)
		}
		if removed {
			slog.InfoContext(ctx, "Expense removed by zero-amount upsert",
				"participant_id", participantID,
				"category_id", categoryID,
				"period", period.String())
		}
		return UpsertResult{Deleted: true}, nil
	}

	entry := core.ExpenseEntry{
		ParticipantID: participantID,
		CategoryID:    categoryID,
		Amount:        core.Money{Cents: amountCents},
		Period:        period,
		TemplateID:    templateID,
	}
	if err := entry.Validate(); err != nil {
		return UpsertResult{}, err
	}

	stored, err := s.store.UpsertExpense(ctx, entry)
	if err != nil {
		return UpsertResult{}, fmt.Errorf("upsert expense: %w", err)
	}
	return UpsertResult{Entry: stored}, nil
}

// DeleteExpense removes an entry by id. Deleting an id that does not
// exist (including a second delete of the same id) reports ErrNotFound.
func (s *LedgerService) DeleteExpense(ctx context.Context, id int64) error {
	return s.store.DeleteExpense(ctx, id)
}

// ListExpenses returns all entries for the year, optionally filtered to a
// single month (month 0 means the whole year). Ordering is not significant.
func (s *LedgerService) ListExpenses(ctx context.Context, year, month int) ([]core.ExpenseEntry, error) {
	if month != 0 {
		if err := (core.Period{Year: year, Month: month}).Validate(); err != nil {
			return nil, err
		}
	}
	return s.store.ListExpenses(ctx, year, month)
}

// TotalByMonth sums all entries for one month. Missing entries count as zero.
func (s *LedgerService) TotalByMonth(ctx context.Context, period core.Period) (core.Money, error) {
	entries, err := s.store.ListExpenses(ctx, period.Year, period.Month)
	if err != nil {
		return core.Money{}, fmt.Errorf("total by month: %w", err)
	}
	return sumEntries(entries), nil
}

// TotalByCategory sums every entry in one category across all periods.
func (s *LedgerService) TotalByCategory(ctx context.Context, categoryID int64) (core.Money, error) {
	entries, err := s.store.ListExpensesByCategory(ctx, categoryID)
	if err != nil {
		return core.Money{}, fmt.Errorf("total by category: %w", err)
	}
	return sumEntries(entries), nil
}

// GrandTotal sums all entries for the year.
func (s *LedgerService) GrandTotal(ctx context.Context, year int) (core.Money, error) {
	entries, err := s.store.ListExpenses(ctx, year, 0)
	if err != nil {
		return core.Money{}, fmt.Errorf("grand total: %w", err)
	}
	return sumEntries(entries), nil
}

func sumEntries(entries []core.ExpenseEntry) core.Money {
	var total core.Money
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total
}

// ListParticipants returns the two household members.
func (s *LedgerService) ListParticipants(ctx context.Context) ([]core.Participant, error) {
	return s.store.ListParticipants(ctx)
}

// CreateCategory registers a new expense category with a unique name.
func (s *LedgerService) CreateCategory(ctx context.Context, name string) (core.Category, error) {
	c := core.Category{Name: name}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	return s.store.CreateCategory(ctx, name)
}

// ListCategories returns all categories sorted by name.
func (s *LedgerService) ListCategories(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

// DeleteCategory removes a category. Deletion is blocked with ErrConflict
// while ledger entries still reference it, so entries are never orphaned
// silently.
func (s *LedgerService) DeleteCategory(ctx context.Context, id int64) error {
	n, err := s.store.CountExpensesByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("count category entries: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("category %d has %d ledger entries: %w", id, n, core.ErrConflict)
	}
	return s.store.DeleteCategory(ctx, id)
}
