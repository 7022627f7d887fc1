package services

import (
	"context"
	"fmt"
	"log/slog"

	"contas/internal/core"
	"contas/internal/storage"
)

// RecurringExpander turns recurring-debt templates into concrete ledger
// entries, one per month touched by the template's date range.
type RecurringExpander struct {
	store  storage.Store
	ledger *LedgerService
}

func NewRecurringExpander(store storage.Store, ledger *LedgerService) *RecurringExpander {
	return &RecurringExpander{store: store, ledger: ledger}
}

// CreateTemplate validates and persists a template, then materializes it.
// The template amount is applied in full to every touched month, partial
// first and last months included; nothing is pro-rated by days.
func (e *RecurringExpander) CreateTemplate(ctx context.Context, tpl core.RecurringTemplate) (core.RecurringTemplate, []core.ExpenseEntry, error) {
	if err := tpl.Validate(); err != nil {
		return core.RecurringTemplate{}, nil, err
	}

	created, err := e.store.CreateTemplate(ctx, tpl)
	if err != nil {
		return core.RecurringTemplate{}, nil, fmt.Errorf("create template: %w", err)
	}

	entries, err := e.Materialize(ctx, created)
	if err != nil {
		return created, entries, err
	}
	return created, entries, nil
}

// UpdateTemplate replaces a template and re-materializes it. Prior entries
// tagged with the template id are deleted first so months no longer covered
// do not linger and covered months are not double-applied.
func (e *RecurringExpander) UpdateTemplate(ctx context.Context, tpl core.RecurringTemplate) ([]core.ExpenseEntry, error) {
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	if err := e.store.UpdateTemplate(ctx, tpl); err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	return e.Materialize(ctx, tpl)
}

// Materialize expands a template into one ledger entry per covered month.
// The expansion is idempotent: previously materialized entries for this
// template are removed before writing. The multi-month write loop is not
// atomic; on a mid-loop failure the already-written months stay and the
// error is surfaced with the entries written so far.
func (e *RecurringExpander) Materialize(ctx context.Context, tpl core.RecurringTemplate) ([]core.ExpenseEntry, error) {
	if tpl.StartDate.After(tpl.EndDate.Time) {
		return nil, core.ValidationError{Field: "start_date", Reason: "must not be after end date"}
	}

	removed, err := e.store.DeleteExpensesByTemplate(ctx, tpl.ID)
	if err != nil {
		return nil, fmt.Errorf("clear prior materialized entries: %w", err)
	}
	if removed > 0 {
		slog.InfoContext(ctx, "Cleared previously materialized entries",
			"template_id", tpl.ID,
			"removed", removed)
	}

	periods := core.PeriodsTouching(tpl.StartDate, tpl.EndDate)
	entries := make([]core.ExpenseEntry, 0, len(periods))
	for _, period := range periods {
		res, err := e.ledger.UpsertExpense(ctx, tpl.ParticipantID, tpl.CategoryID, tpl.MonthlyAmount.Cents, period, tpl.ID)
		if err != nil {
			return entries, fmt.Errorf("materialize template %d for %s: %w", tpl.ID, period, err)
		}
		entries = append(entries, res.Entry)
	}

	slog.InfoContext(ctx, "Materialized recurring template",
		"template_id", tpl.ID,
		"months", len(entries),
		"amount_cents", tpl.MonthlyAmount.Cents)

	return entries, nil
}

// GetTemplate returns a template by id.
func (e *RecurringExpander) GetTemplate(ctx context.Context, id int64) (core.RecurringTemplate, error) {
	return e.store.GetTemplate(ctx, id)
}

// ListTemplates returns all templates.
func (e *RecurringExpander) ListTemplates(ctx context.Context) ([]core.RecurringTemplate, error) {
	return e.store.ListTemplates(ctx)
}

// DeleteTemplate removes the template. Materialized entries stay in the
// ledger unless cascade is set, in which case they are deleted first.
func (e *RecurringExpander) DeleteTemplate(ctx context.Context, id int64, cascade bool) error {
	if cascade {
		removed, err := e.store.DeleteExpensesByTemplate(ctx, id)
		if err != nil {
			return fmt.Errorf("cascade delete template entries: %w", err)
		}
		slog.InfoContext(ctx, "Cascade-deleted materialized entries",
			"template_id", id,
			"removed", removed)
	}
	return e.store.DeleteTemplate(ctx, id)
}
