package services

import (
	"context"
	"errors"
	"fmt"

	"contas/internal/core"
	"contas/internal/storage"
)

// DeductionService owns the ad-hoc charges against a participant's income.
// Deductions are always local currency, scoped to a single month, and
// never recur.
type DeductionService struct {
	store storage.Store
}

func NewDeductionService(store storage.Store) *DeductionService {
	return &DeductionService{store: store}
}

func (s *DeductionService) CreateDeduction(ctx context.Context, d core.Deduction) (core.Deduction, error) {
	if err := d.Validate(); err != nil {
		return core.Deduction{}, err
	}
	if _, err := s.store.GetParticipant(ctx, d.ParticipantID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Deduction{}, core.ValidationError{Field: "participant_id", Reason: "unknown participant"}
		}
		return core.Deduction{}, fmt.Errorf("check participant: %w", err)
	}
	return s.store.CreateDeduction(ctx, d)
}

func (s *DeductionService) ListDeductions(ctx context.Context, participantID int64, period core.Period) ([]core.Deduction, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	return s.store.ListDeductions(ctx, participantID, period)
}

// SumDeductions returns the deduction total for the scope, zero when none.
func (s *DeductionService) SumDeductions(ctx context.Context, participantID int64, period core.Period) (core.Money, error) {
	deductions, err := s.ListDeductions(ctx, participantID, period)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum deductions: %w", err)
	}
	var total core.Money
	for _, d := range deductions {
		total = total.Add(d.Amount)
	}
	return total, nil
}

func (s *DeductionService) DeleteDeduction(ctx context.Context, id int64) error {
	return s.store.DeleteDeduction(ctx, id)
}
