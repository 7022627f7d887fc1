package services

import (
	"context"
	"errors"
	"testing"

	"contas/internal/core"
	"contas/internal/storage/memory"
)

const (
	anaID   = int64(1) // variable income
	brunoID = int64(2) // fixed income
)

func newLedgerFixture(t *testing.T) (*LedgerService, *memory.Store, core.Category) {
	t.Helper()
	store := memory.New()
	ledger := NewLedgerService(store)

	category, err := ledger.CreateCategory(context.Background(), "aluguel")
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}
	return ledger, store, category
}

func TestLedgerService_UpsertExpense(t *testing.T) {
	ctx := context.Background()
	feb := core.Period{Year: 2025, Month: 2}

	t.Run("creates entry", func(t *testing.T) {
		ledger, _, cat := newLedgerFixture(t)

		res, err := ledger.UpsertExpense(ctx, anaID, cat.ID, 120000, feb, 0)
		if err != nil {
			t.Fatalf("UpsertExpense() error = %v", err)
		}
		if res.Deleted {
			t.Fatal("UpsertExpense() reported a delete for a positive amount")
		}
		if res.Entry.Amount.Cents != 120000 {
			t.Errorf("Amount = %d, want 120000", res.Entry.Amount.Cents)
		}
		if res.Entry.ID == 0 {
			t.Error("Entry.ID should be assigned")
		}
	})

	t.Run("replaces entry for the same tuple", func(t *testing.T) {
		ledger, _, cat := newLedgerFixture(t)

		if _, err := ledger.UpsertExpense(ctx, anaID, cat.ID, 120000, feb, 0); err != nil {
			t.Fatalf("first UpsertExpense() error = %v", err)
		}
		if _, err := ledger.UpsertExpense(ctx, anaID, cat.ID, 80000, feb, 0); err != nil {
			t.Fatalf("second UpsertExpense() error = %v", err)
		}

		entries, err := ledger.ListExpenses(ctx, feb.Year, feb.Month)
		if err != nil {
			t.Fatalf("ListExpenses() error = %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("entries = %d, want 1 (tuple must stay unique)", len(entries))
		}
		if entries[0].Amount.Cents != 80000 {
			t.Errorf("Amount = %d, want 80000 (replace, not accumulate)", entries[0].Amount.Cents)
		}
	})

	t.Run("same category different participants", func(t *testing.T) {
		ledger, _, cat := newLedgerFixture(t)

		if _, err := ledger.UpsertExpense(ctx, anaID, cat.ID, 50000, feb, 0); err != nil {
			t.Fatalf("UpsertExpense(ana) error = %v", err)
		}
		if _, err := ledger.UpsertExpense(ctx, brunoID, cat.ID, 70000, feb, 0); err != nil {
			t.Fatalf("UpsertExpense(bruno) error = %v", err)
		}

		entries, _ := ledger.ListExpenses(ctx, feb.Year, feb.Month)
		if len(entries) != 2 {
			t.Fatalf("entries = %d, want 2", len(entries))
		}
	})

	t.Run("zero amount deletes existing entry", func(t *testing.T) {
		ledger, _, cat := newLedgerFixture(t)

		if _, err := ledger.UpsertExpense(ctx, anaID, cat.ID, 120000, feb, 0); err != nil {
			t.Fatalf("UpsertExpense() error = %v", err)
		}
		res, err := ledger.UpsertExpense(ctx, anaID, cat.ID, 0, feb, 0)
		if err != nil {
			t.Fatalf("zero UpsertExpense() error = %v", err)
		}
		if !res.Deleted {
			t.Error("zero UpsertExpense() should report Deleted")
		}

		entries, _ := ledger.ListExpenses(ctx, feb.Year, feb.Month)
		if len(entries) != 0 {
			t.Errorf("entries = %d, want 0 after zero upsert", len(entries))
		}
	})

	t.Run("zero amount with no entry is a no-op", func(t *testing.T) {
		ledger, _, cat := newLedgerFixture(t)

		res, err := ledger.UpsertExpense(ctx, anaID, cat.ID, 0, feb, 0)
		if err != nil {
			t.Fatalf("zero UpsertExpense() error = %v", err)
		}
		if !res.Deleted {
			t.Error("zero UpsertExpense() should report Deleted even when nothing existed")
		}
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		ledger, _, cat := newLedgerFixture(t)

		_, err := ledger.UpsertExpense(ctx, anaID, cat.ID, -100, feb, 0)
		if !core.IsValidation(err) {
			t.Errorf("UpsertExpense(negative) error = %v, want validation error", err)
		}
	})

	t.Run("rejects unknown participant", func(t *testing.T) {
		ledger, _, cat := newLedgerFixture(t)

		_, err := ledger.UpsertExpense(ctx, 99, cat.ID, 100, feb, 0)
		if !core.IsValidation(err) {
			t.Errorf("UpsertExpense(unknown participant) error = %v, want validation error", err)
		}
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		ledger, _, _ := newLedgerFixture(t)

		_, err := ledger.UpsertExpense(ctx, anaID, 99, 100, feb, 0)
		if !core.IsValidation(err) {
			t.Errorf("UpsertExpense(unknown category) error = %v, want validation error", err)
		}
	})

	t.Run("rejects invalid month", func(t *testing.T) {
		ledger, _, cat := newLedgerFixture(t)

		_, err := ledger.UpsertExpense(ctx, anaID, cat.ID, 100, core.Period{Year: 2025, Month: 13}, 0)
		if !core.IsValidation(err) {
			t.Errorf("UpsertExpense(month 13) error = %v, want validation error", err)
		}
	})
}

func TestLedgerService_DeleteExpense(t *testing.T) {
	ctx := context.Background()
	ledger, _, cat := newLedgerFixture(t)
	feb := core.Period{Year: 2025, Month: 2}

	res, err := ledger.UpsertExpense(ctx, anaID, cat.ID, 120000, feb, 0)
	if err != nil {
		t.Fatalf("UpsertExpense() error = %v", err)
	}

	if err := ledger.DeleteExpense(ctx, res.Entry.ID); err != nil {
		t.Fatalf("DeleteExpense() error = %v", err)
	}

	// Second delete of the same id reports not found.
	if err := ledger.DeleteExpense(ctx, res.Entry.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second DeleteExpense() error = %v, want ErrNotFound", err)
	}
}

func TestLedgerService_Totals(t *testing.T) {
	ctx := context.Background()
	ledger, _, cat := newLedgerFixture(t)

	other, err := ledger.CreateCategory(ctx, "mercado")
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}

	jan := core.Period{Year: 2025, Month: 1}
	feb := core.Period{Year: 2025, Month: 2}

	mustUpsert := func(pid, cid, cents int64, p core.Period) {
		t.Helper()
		if _, err := ledger.UpsertExpense(ctx, pid, cid, cents, p, 0); err != nil {
			t.Fatalf("UpsertExpense() error = %v", err)
		}
	}
	mustUpsert(anaID, cat.ID, 100000, jan)
	mustUpsert(brunoID, cat.ID, 50000, jan)
	mustUpsert(anaID, other.ID, 30000, feb)

	byMonth, err := ledger.TotalByMonth(ctx, jan)
	if err != nil {
		t.Fatalf("TotalByMonth() error = %v", err)
	}
	if byMonth.Cents != 150000 {
		t.Errorf("TotalByMonth(jan) = %d, want 150000", byMonth.Cents)
	}

	emptyMonth, err := ledger.TotalByMonth(ctx, core.Period{Year: 2025, Month: 6})
	if err != nil {
		t.Fatalf("TotalByMonth(empty) error = %v", err)
	}
	if emptyMonth.Cents != 0 {
		t.Errorf("TotalByMonth(empty) = %d, want 0", emptyMonth.Cents)
	}

	byCategory, err := ledger.TotalByCategory(ctx, cat.ID)
	if err != nil {
		t.Fatalf("TotalByCategory() error = %v", err)
	}
	if byCategory.Cents != 150000 {
		t.Errorf("TotalByCategory() = %d, want 150000", byCategory.Cents)
	}

	grand, err := ledger.GrandTotal(ctx, 2025)
	if err != nil {
		t.Fatalf("GrandTotal() error = %v", err)
	}
	if grand.Cents != 180000 {
		t.Errorf("GrandTotal(2025) = %d, want 180000", grand.Cents)
	}
}

func TestLedgerService_Categories(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate name conflicts", func(t *testing.T) {
		ledger, _, _ := newLedgerFixture(t)

		_, err := ledger.CreateCategory(ctx, "aluguel")
		if !errors.Is(err, core.ErrConflict) {
			t.Errorf("CreateCategory(duplicate) error = %v, want ErrConflict", err)
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		ledger, _, _ := newLedgerFixture(t)

		_, err := ledger.CreateCategory(ctx, "  ")
		if !core.IsValidation(err) {
			t.Errorf("CreateCategory(blank) error = %v, want validation error", err)
		}
	})

	t.Run("deletion blocked while entries reference it", func(t *testing.T) {
		ledger, _, cat := newLedgerFixture(t)
		feb := core.Period{Year: 2025, Month: 2}

		if _, err := ledger.UpsertExpense(ctx, anaID, cat.ID, 100, feb, 0); err != nil {
			t.Fatalf("UpsertExpense() error = %v", err)
		}

		if err := ledger.DeleteCategory(ctx, cat.ID); !errors.Is(err, core.ErrConflict) {
			t.Errorf("DeleteCategory(referenced) error = %v, want ErrConflict", err)
		}

		// Removing the entry unblocks the delete.
		if _, err := ledger.UpsertExpense(ctx, anaID, cat.ID, 0, feb, 0); err != nil {
			t.Fatalf("zero UpsertExpense() error = %v", err)
		}
		if err := ledger.DeleteCategory(ctx, cat.ID); err != nil {
			t.Errorf("DeleteCategory() error = %v", err)
		}
	})
}
