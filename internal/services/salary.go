package services

import (
	"context"
	"errors"
	"fmt"

	"contas/internal/core"
	"contas/internal/storage"
)

// HoursPerDay is the fixed number of billable hours per business day for
// the variable-income participant.
const HoursPerDay = 8

// SalaryResolver produces per-month gross income from a participant's
// salary profile.
type SalaryResolver struct {
	store storage.Store
}

func NewSalaryResolver(store storage.Store) *SalaryResolver {
	return &SalaryResolver{store: store}
}

// UpsertProfile validates and stores the one salary profile a participant
// has. The profile shape must match the participant's income role.
func (r *SalaryResolver) UpsertProfile(ctx context.Context, profile core.SalaryProfile) (core.SalaryProfile, error) {
	if err := profile.Validate(); err != nil {
		return core.SalaryProfile{}, err
	}
	participant, err := r.store.GetParticipant(ctx, profile.ParticipantID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.SalaryProfile{}, core.ValidationError{Field: "participant_id", Reason: "unknown participant"}
		}
		return core.SalaryProfile{}, fmt.Errorf("check participant: %w", err)
	}
	if participant.Income != profile.Income {
		return core.SalaryProfile{}, core.ValidationError{
			Field:  "income_model",
			Reason: fmt.Sprintf("participant role is %s", participant.Income),
		}
	}
	return r.store.UpsertSalaryProfile(ctx, profile)
}

// GetProfile returns the participant's salary profile.
func (r *SalaryResolver) GetProfile(ctx context.Context, participantID int64) (core.SalaryProfile, error) {
	return r.store.GetSalaryProfile(ctx, participantID)
}

// DeleteProfile removes the participant's salary profile.
func (r *SalaryResolver) DeleteProfile(ctx context.Context, participantID int64) error {
	return r.store.DeleteSalaryProfile(ctx, participantID)
}

// ComputeGrossForMonth resolves gross income for a payment month.
//
// Fixed income is flat: the profile amount in local currency, working
// month equal to the payment month. Variable income is billed with a
// one-month offset: hours worked in month m-1 are paid in month m, so the
// working month is the preceding calendar month and the gross is
// businessDays(m-1) x HoursPerDay x hourlyRate in the profile's foreign
// currency. The result reports both months so callers can label it.
func (r *SalaryResolver) ComputeGrossForMonth(ctx context.Context, participantID int64, payment core.Period) (core.GrossIncome, error) {
	if err := payment.Validate(); err != nil {
		return core.GrossIncome{}, err
	}

	profile, err := r.store.GetSalaryProfile(ctx, participantID)
	if err != nil {
		return core.GrossIncome{}, fmt.Errorf("resolve salary profile: %w", err)
	}

	switch profile.Income {
	case core.IncomeFixed:
		if profile.FixedAmount.Cents <= 0 {
			return core.GrossIncome{}, core.ValidationError{Field: "fixed_amount", Reason: "missing for fixed income profile"}
		}
		return core.GrossIncome{
			Amount:        profile.FixedAmount,
			Currency:      profile.Currency,
			PaymentPeriod: payment,
			WorkingPeriod: payment,
		}, nil

	case core.IncomeVariable:
		if profile.HourlyRate.Cents <= 0 {
			return core.GrossIncome{}, core.ValidationError{Field: "hourly_rate", Reason: "missing for variable income profile"}
		}
		working := payment.Prev()
		days := working.BusinessDays()
		hours := days * HoursPerDay
		return core.GrossIncome{
			Amount:        core.Money{Cents: int64(hours) * profile.HourlyRate.Cents},
			Currency:      profile.Currency,
			PaymentPeriod: payment,
			WorkingPeriod: working,
			WorkingDays:   days,
			Hours:         hours,
		}, nil
	}

	return core.GrossIncome{}, core.ValidationError{Field: "income_model", Reason: "unknown income model"}
}
