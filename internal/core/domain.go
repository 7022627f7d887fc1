package core

import (
	"strings"
	"time"
)

const (
	ColorBlue ColorTag = "blue"
	ColorPink ColorTag = "pink"

	IncomeFixed    IncomeModel = "fixed"
	IncomeVariable IncomeModel = "variable"

	// CurrencyLocal is the currency all ledger amounts are kept in.
	CurrencyLocal = "BRL"
	// CurrencyForeign is the currency variable hourly rates are billed in.
	CurrencyForeign = "USD"
)

type (
	// ColorTag distinguishes ownership in displays and in the settlement
	// sign convention. Exactly two values exist, one per participant.
	ColorTag string

	// IncomeModel selects how a participant's gross income is computed.
	IncomeModel string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Participant is one of the two household members. Provisioned by
	// migration seed, never created or destroyed through the API.
	Participant struct {
		ID     int64
		Name   string
		Color  ColorTag
		Income IncomeModel
	}

	Category struct {
		ID   int64
		Name string
	}

	// ExpenseEntry is the atomic ledger fact. At most one entry exists per
	// (participant, category, month, year) tuple; upserts replace.
	ExpenseEntry struct {
		ID            int64
		ParticipantID int64
		CategoryID    int64
		Amount        Money
		Period        Period
		TemplateID    int64 // 0 for hand-entered expenses
		CreatedAt     time.Time
	}

	// RecurringTemplate is a debt template expanded into one ExpenseEntry
	// per month touched by [StartDate, EndDate].
	RecurringTemplate struct {
		ID            int64
		ParticipantID int64
		CategoryID    int64
		MonthlyAmount Money
		StartDate     Date
		EndDate       Date
	}

	// SalaryProfile holds a participant's income shape. Exactly one of
	// FixedAmount or HourlyRate is set, matching the Income role.
	SalaryProfile struct {
		ID            int64
		ParticipantID int64
		Income        IncomeModel
		FixedAmount   Money // local currency, fixed role only
		HourlyRate    Money // foreign currency, variable role only
		Currency      string
		UpdatedAt     time.Time
	}

	// Deduction is an ad-hoc charge against a participant's income for a
	// single month. Always local currency, never recurring.
	Deduction struct {
		ID            int64
		ParticipantID int64
		Description   string
		Amount        Money
		DueDate       Date
		Period        Period
		CreatedAt     time.Time
	}

	// GrossIncome is the resolver output: the gross amount for a payment
	// month together with the working month it was earned in.
	GrossIncome struct {
		Amount        Money
		Currency      string
		PaymentPeriod Period
		WorkingPeriod Period
		WorkingDays   int
		Hours         int
	}
)

func (c ColorTag) Validate() error {
	switch c {
	case ColorBlue, ColorPink:
		return nil
	}
	return ValidationError{Field: "color", Reason: "must be blue or pink"}
}

func (m IncomeModel) Validate() error {
	switch m {
	case IncomeFixed, IncomeVariable:
		return nil
	}
	return ValidationError{Field: "income_model", Reason: "must be fixed or variable"}
}

// NewDate creates a new Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ValidationError{Field: "date", Reason: "cannot be empty"}
	}
	return nil
}

// Period returns the month the date falls in.
func (d Date) Period() Period {
	return Period{Year: d.Time.Year(), Month: int(d.Time.Month())}
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ValidationError{Field: "name", Reason: "cannot be empty"}
	}
	if len(c.Name) > 100 {
		return ValidationError{Field: "name", Reason: "too long (max 100 characters)"}
	}
	return nil
}

func (e ExpenseEntry) Validate() error {
	if e.ParticipantID <= 0 {
		return ValidationError{Field: "participant_id", Reason: "required"}
	}
	if e.CategoryID <= 0 {
		return ValidationError{Field: "category_id", Reason: "required"}
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	return e.Period.Validate()
}

func (t RecurringTemplate) Validate() error {
	if t.ParticipantID <= 0 {
		return ValidationError{Field: "participant_id", Reason: "required"}
	}
	if t.CategoryID <= 0 {
		return ValidationError{Field: "category_id", Reason: "required"}
	}
	if err := t.MonthlyAmount.Validate(); err != nil {
		return err
	}
	if err := t.StartDate.Validate(); err != nil {
		return ValidationError{Field: "start_date", Reason: "cannot be empty"}
	}
	if err := t.EndDate.Validate(); err != nil {
		return ValidationError{Field: "end_date", Reason: "cannot be empty"}
	}
	if t.StartDate.After(t.EndDate.Time) {
		return ValidationError{Field: "start_date", Reason: "must not be after end date"}
	}
	return nil
}

func (p SalaryProfile) Validate() error {
	if p.ParticipantID <= 0 {
		return ValidationError{Field: "participant_id", Reason: "required"}
	}
	if err := p.Income.Validate(); err != nil {
		return err
	}
	switch p.Income {
	case IncomeFixed:
		if p.FixedAmount.Cents <= 0 {
			return ValidationError{Field: "fixed_amount", Reason: "required for fixed income profile"}
		}
		if p.HourlyRate.Cents != 0 {
			return ValidationError{Field: "hourly_rate", Reason: "must be empty for fixed income profile"}
		}
	case IncomeVariable:
		if p.HourlyRate.Cents <= 0 {
			return ValidationError{Field: "hourly_rate", Reason: "required for variable income profile"}
		}
		if p.FixedAmount.Cents != 0 {
			return ValidationError{Field: "fixed_amount", Reason: "must be empty for variable income profile"}
		}
	}
	if strings.TrimSpace(p.Currency) == "" {
		return ValidationError{Field: "currency", Reason: "cannot be empty"}
	}
	return nil
}

func (d Deduction) Validate() error {
	if d.ParticipantID <= 0 {
		return ValidationError{Field: "participant_id", Reason: "required"}
	}
	if strings.TrimSpace(d.Description) == "" {
		return ValidationError{Field: "description", Reason: "cannot be empty"}
	}
	if len(d.Description) > 200 {
		return ValidationError{Field: "description", Reason: "too long (max 200 characters)"}
	}
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	if err := d.DueDate.Validate(); err != nil {
		return ValidationError{Field: "due_date", Reason: "cannot be empty"}
	}
	return d.Period.Validate()
}
