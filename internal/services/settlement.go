package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"contas/internal/core"
	"contas/internal/fx"
	"contas/internal/storage"
)

// SettlementConfig tunes the debt convention.
//
// SplitRatio scales the raw difference between the two participants'
// contributions. The default of 1 reimburses the full gap; 0.5 splits
// the gap evenly.
//
// ReferenceParticipantID selects the positive side of the debt sign; a
// positive debt means the reference participant is owed money. Zero picks
// the fixed-income participant.
type SettlementConfig struct {
	SplitRatio             decimal.Decimal
	ReferenceParticipantID int64
}

// SettlementCalculator combines the ledger, salary resolver, currency
// converter and deduction ledger into the monthly and annual settlement
// answer. It holds no state; every call recomputes from current ledger
// state.
type SettlementCalculator struct {
	store      storage.Store
	salaries   *SalaryResolver
	deductions *DeductionService
	rates      fx.RateSource
	cfg        SettlementConfig
}

func NewSettlementCalculator(store storage.Store, salaries *SalaryResolver, deductions *DeductionService, rates fx.RateSource, cfg SettlementConfig) *SettlementCalculator {
	if cfg.SplitRatio.Sign() <= 0 {
		cfg.SplitRatio = decimal.NewFromInt(1)
	}
	return &SettlementCalculator{
		store:      store,
		salaries:   salaries,
		deductions: deductions,
		rates:      rates,
		cfg:        cfg,
	}
}

// MonthlySettlement is the answer to "who owes whom for this month".
type MonthlySettlement struct {
	Period      core.Period
	Reference   core.Participant
	Counterpart core.Participant
	// TotalByParticipant holds each participant's share of the month's
	// entries; participants with no entries appear with a zero total.
	TotalByParticipant map[int64]core.Money
	// Debt is total(reference) - total(counterpart) scaled by the split
	// ratio. Positive means the reference participant is owed money;
	// zero means the month is exactly even.
	Debt core.Money
}

// SalaryReport is the variable earner's monthly pay breakdown. Every
// field is reproducible from the same inputs; the exchange rate is the
// only external input and is carried in the report.
type SalaryReport struct {
	Participant   core.Participant
	PaymentPeriod core.Period
	WorkingPeriod core.Period
	WorkingDays   int
	Hours         int
	GrossForeign  core.Money
	GrossLocal    core.Money
	Deductions    core.Money
	Debt          core.Money // reference-convention sign, as in MonthlySettlement
	Net           core.Money
	ExchangeRate  decimal.Decimal
	Currency      string
}

// AnnualSalaryReport accumulates the monthly computation across all 12
// calendar months of a year. One exchange rate is applied uniformly to
// every month; per-month live rates are deliberately not used so the
// report is reproducible from a single rate input.
type AnnualSalaryReport struct {
	Participant       core.Participant
	Year              int
	ExchangeRate      decimal.Decimal
	Months            []SalaryReport
	TotalWorkingDays  int
	TotalHours        int
	TotalGrossForeign core.Money
	TotalGrossLocal   core.Money
	TotalDeductions   core.Money
	TotalDebt         core.Money
	TotalNet          core.Money
}

// resolveSides returns the reference participant and the counterpart.
func (c *SettlementCalculator) resolveSides(ctx context.Context) (core.Participant, core.Participant, error) {
	participants, err := c.store.ListParticipants(ctx)
	if err != nil {
		return core.Participant{}, core.Participant{}, fmt.Errorf("list participants: %w", err)
	}
	if len(participants) != 2 {
		return core.Participant{}, core.Participant{}, fmt.Errorf("expected exactly 2 participants, found %d", len(participants))
	}

	a, b := participants[0], participants[1]
	if c.cfg.ReferenceParticipantID != 0 {
		if a.ID == c.cfg.ReferenceParticipantID {
			return a, b, nil
		}
		if b.ID == c.cfg.ReferenceParticipantID {
			return b, a, nil
		}
		return core.Participant{}, core.Participant{}, fmt.Errorf("reference participant %d: %w", c.cfg.ReferenceParticipantID, core.ErrNotFound)
	}
	if a.Income == core.IncomeFixed {
		return a, b, nil
	}
	return b, a, nil
}

// ComputeMonthlyDebt partitions the month's entries by participant and
// returns the full settlement view for the period.
func (c *SettlementCalculator) ComputeMonthlyDebt(ctx context.Context, period core.Period) (MonthlySettlement, error) {
	if err := period.Validate(); err != nil {
		return MonthlySettlement{}, err
	}

	reference, counterpart, err := c.resolveSides(ctx)
	if err != nil {
		return MonthlySettlement{}, err
	}

	entries, err := c.store.ListExpenses(ctx, period.Year, period.Month)
	if err != nil {
		return MonthlySettlement{}, fmt.Errorf("list month expenses: %w", err)
	}

	totals := map[int64]core.Money{
		reference.ID:   {},
		counterpart.ID: {},
	}
	for _, e := range entries {
		totals[e.ParticipantID] = totals[e.ParticipantID].Add(e.Amount)
	}

	raw := totals[reference.ID].Cents - totals[counterpart.ID].Cents
	debt := decimal.New(raw, 0).Mul(c.cfg.SplitRatio).Round(0).IntPart()

	return MonthlySettlement{
		Period:             period,
		Reference:          reference,
		Counterpart:        counterpart,
		TotalByParticipant: totals,
		Debt:               core.Money{Cents: debt},
	}, nil
}

// ComputeMonthlySalaryReport builds the variable earner's pay breakdown
// for a payment month, fetching the current exchange rate from the
// configured source (with its documented fallback).
func (c *SettlementCalculator) ComputeMonthlySalaryReport(ctx context.Context, participantID int64, period core.Period) (SalaryReport, error) {
	rate, err := c.rates.GetRate(ctx, core.CurrencyForeign, core.CurrencyLocal)
	if err != nil {
		return SalaryReport{}, fmt.Errorf("resolve exchange rate: %w", err)
	}
	return c.ComputeMonthlySalaryReportWithRate(ctx, participantID, period, rate)
}

// ComputeMonthlySalaryReportWithRate is the deterministic core of the
// monthly report: same inputs, same report, byte for byte.
func (c *SettlementCalculator) ComputeMonthlySalaryReportWithRate(ctx context.Context, participantID int64, period core.Period, rate decimal.Decimal) (SalaryReport, error) {
	if err := period.Validate(); err != nil {
		return SalaryReport{}, err
	}

	participant, err := c.store.GetParticipant(ctx, participantID)
	if err != nil {
		return SalaryReport{}, fmt.Errorf("resolve participant: %w", err)
	}
	if participant.Income != core.IncomeVariable {
		return SalaryReport{}, core.ValidationError{Field: "participant_id", Reason: "salary report applies to the variable-income participant"}
	}

	gross, err := c.salaries.ComputeGrossForMonth(ctx, participantID, period)
	if err != nil {
		return SalaryReport{}, err
	}

	grossLocal := fx.Convert(gross.Amount, rate)

	deductions, err := c.deductions.SumDeductions(ctx, participantID, period)
	if err != nil {
		return SalaryReport{}, err
	}

	settlement, err := c.ComputeMonthlyDebt(ctx, period)
	if err != nil {
		return SalaryReport{}, err
	}

	// Debt is applied signed: when the variable earner is the debtor it
	// comes out of net pay, and when the sign favors them the amount owed
	// to them is added, never ignored.
	owedToVariable := settlement.Debt.Neg()
	if settlement.Reference.ID == participantID {
		owedToVariable = settlement.Debt
	}

	net := grossLocal.Cents - deductions.Cents + owedToVariable.Cents

	return SalaryReport{
		Participant:   participant,
		PaymentPeriod: period,
		WorkingPeriod: gross.WorkingPeriod,
		WorkingDays:   gross.WorkingDays,
		Hours:         gross.Hours,
		GrossForeign:  gross.Amount,
		GrossLocal:    grossLocal,
		Deductions:    deductions,
		Debt:          settlement.Debt,
		Net:           core.Money{Cents: net},
		ExchangeRate:  rate,
		Currency:      gross.Currency,
	}, nil
}

// ComputeAnnualSalaryReport runs the monthly computation for all 12
// months of the year under one exchange rate and sums the results.
func (c *SettlementCalculator) ComputeAnnualSalaryReport(ctx context.Context, participantID int64, year int) (AnnualSalaryReport, error) {
	rate, err := c.rates.GetRate(ctx, core.CurrencyForeign, core.CurrencyLocal)
	if err != nil {
		return AnnualSalaryReport{}, fmt.Errorf("resolve exchange rate: %w", err)
	}
	return c.ComputeAnnualSalaryReportWithRate(ctx, participantID, year, rate)
}

// ComputeAnnualSalaryReportWithRate accumulates the 12 monthly reports
// using the supplied rate for every month.
func (c *SettlementCalculator) ComputeAnnualSalaryReportWithRate(ctx context.Context, participantID int64, year int, rate decimal.Decimal) (AnnualSalaryReport, error) {
	report := AnnualSalaryReport{
		Year:         year,
		ExchangeRate: rate,
		Months:       make([]SalaryReport, 0, 12),
	}

	for month := 1; month <= 12; month++ {
		monthly, err := c.ComputeMonthlySalaryReportWithRate(ctx, participantID, core.Period{Year: year, Month: month}, rate)
		if err != nil {
			return AnnualSalaryReport{}, fmt.Errorf("month %d: %w", month, err)
		}
		report.Participant = monthly.Participant
		report.Months = append(report.Months, monthly)
		report.TotalWorkingDays += monthly.WorkingDays
		report.TotalHours += monthly.Hours
		report.TotalGrossForeign = report.TotalGrossForeign.Add(monthly.GrossForeign)
		report.TotalGrossLocal = report.TotalGrossLocal.Add(monthly.GrossLocal)
		report.TotalDeductions = report.TotalDeductions.Add(monthly.Deductions)
		report.TotalDebt = report.TotalDebt.Add(monthly.Debt)
		report.TotalNet = report.TotalNet.Add(monthly.Net)
	}

	return report, nil
}
