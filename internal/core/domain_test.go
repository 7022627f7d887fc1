package core

import (
	"testing"
)

func TestSalaryProfileValidate(t *testing.T) {
	cases := []struct {
		name string
		p    SalaryProfile
		ok   bool
	}{
		{
			name: "fixed profile",
			p:    SalaryProfile{ParticipantID: 1, Income: IncomeFixed, FixedAmount: Money{Cents: 500000}, Currency: CurrencyLocal},
			ok:   true,
		},
		{
			name: "variable profile",
			p:    SalaryProfile{ParticipantID: 2, Income: IncomeVariable, HourlyRate: Money{Cents: 2500}, Currency: CurrencyForeign},
			ok:   true,
		},
		{
			name: "fixed profile missing amount",
			p:    SalaryProfile{ParticipantID: 1, Income: IncomeFixed, Currency: CurrencyLocal},
		},
		{
			name: "variable profile missing rate",
			p:    SalaryProfile{ParticipantID: 2, Income: IncomeVariable, Currency: CurrencyForeign},
		},
		{
			name: "fixed profile with both fields",
			p:    SalaryProfile{ParticipantID: 1, Income: IncomeFixed, FixedAmount: Money{Cents: 1}, HourlyRate: Money{Cents: 1}, Currency: CurrencyLocal},
		},
		{
			name: "variable profile with both fields",
			p:    SalaryProfile{ParticipantID: 2, Income: IncomeVariable, FixedAmount: Money{Cents: 1}, HourlyRate: Money{Cents: 1}, Currency: CurrencyForeign},
		},
		{
			name: "unknown income model",
			p:    SalaryProfile{ParticipantID: 1, Income: "hourly", FixedAmount: Money{Cents: 1}, Currency: CurrencyLocal},
		},
		{
			name: "missing currency",
			p:    SalaryProfile{ParticipantID: 1, Income: IncomeFixed, FixedAmount: Money{Cents: 1}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.p.Validate()
			if tc.ok && err != nil {
				t.Fatalf("expected ok, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestRecurringTemplateValidate(t *testing.T) {
	good := RecurringTemplate{
		ParticipantID: 1,
		CategoryID:    2,
		MonthlyAmount: Money{Cents: 120000},
		StartDate:     NewDate(2025, 1, 15),
		EndDate:       NewDate(2025, 3, 10),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	reversed := good
	reversed.StartDate, reversed.EndDate = reversed.EndDate, reversed.StartDate
	if err := reversed.Validate(); err == nil {
		t.Fatalf("expected error for start after end")
	}

	sameDay := good
	sameDay.EndDate = sameDay.StartDate
	if err := sameDay.Validate(); err != nil {
		t.Fatalf("start == end should be valid, got %v", err)
	}

	zeroAmount := good
	zeroAmount.MonthlyAmount = Money{}
	if err := zeroAmount.Validate(); err == nil {
		t.Fatalf("expected error for zero amount")
	}
}

func TestDeductionValidate(t *testing.T) {
	good := Deduction{
		ParticipantID: 2,
		Description:   "condo fee boleto",
		Amount:        Money{Cents: 50000},
		DueDate:       NewDate(2025, 3, 10),
		Period:        Period{2025, 3},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Deduction{
		{Description: "x", Amount: Money{Cents: 1}, DueDate: NewDate(2025, 3, 1), Period: Period{2025, 3}},                     // no participant
		{ParticipantID: 2, Amount: Money{Cents: 1}, DueDate: NewDate(2025, 3, 1), Period: Period{2025, 3}},                    // no description
		{ParticipantID: 2, Description: "x", DueDate: NewDate(2025, 3, 1), Period: Period{2025, 3}},                           // zero amount
		{ParticipantID: 2, Description: "x", Amount: Money{Cents: 1}, Period: Period{2025, 3}},                                // no due date
		{ParticipantID: 2, Description: "x", Amount: Money{Cents: 1}, DueDate: NewDate(2025, 3, 1), Period: Period{2025, 13}}, // bad month
	}
	for i, d := range bads {
		if err := d.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDatePeriod(t *testing.T) {
	if got := NewDate(2025, 11, 30).Period(); got != (Period{2025, 11}) {
		t.Fatalf("got %v", got)
	}
}
