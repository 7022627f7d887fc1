package http

import (
	"contas/internal/core"
	"contas/internal/extract"
	"contas/internal/services"
	"contas/internal/storage"
)

// DTOs for the JSON API. Monetary amounts travel both as integer cents
// and as a fixed two-place decimal string.

type moneyJSON struct {
	Cents  int64  `json:"cents"`
	Amount string `json:"amount"`
}

func toMoneyJSON(m core.Money) moneyJSON {
	return moneyJSON{Cents: m.Cents, Amount: m.String()}
}

type participantJSON struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	Income string `json:"income"`
}

func toParticipantJSON(p core.Participant) participantJSON {
	return participantJSON{
		ID:     p.ID,
		Name:   p.Name,
		Color:  string(p.Color),
		Income: string(p.Income),
	}
}

type categoryJSON struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type expenseJSON struct {
	ID            int64     `json:"id"`
	ParticipantID int64     `json:"participant_id"`
	CategoryID    int64     `json:"category_id"`
	Amount        moneyJSON `json:"amount"`
	Year          int       `json:"year"`
	Month         int       `json:"month"`
	TemplateID    int64     `json:"template_id,omitempty"`
}

func toExpenseJSON(e core.ExpenseEntry) expenseJSON {
	return expenseJSON{
		ID:            e.ID,
		ParticipantID: e.ParticipantID,
		CategoryID:    e.CategoryID,
		Amount:        toMoneyJSON(e.Amount),
		Year:          e.Period.Year,
		Month:         e.Period.Month,
		TemplateID:    e.TemplateID,
	}
}

func toExpenseListJSON(entries []core.ExpenseEntry) []expenseJSON {
	out := make([]expenseJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, toExpenseJSON(e))
	}
	return out
}

type templateJSON struct {
	ID            int64     `json:"id"`
	ParticipantID int64     `json:"participant_id"`
	CategoryID    int64     `json:"category_id"`
	MonthlyAmount moneyJSON `json:"monthly_amount"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
}

func toTemplateJSON(t core.RecurringTemplate) templateJSON {
	return templateJSON{
		ID:            t.ID,
		ParticipantID: t.ParticipantID,
		CategoryID:    t.CategoryID,
		MonthlyAmount: toMoneyJSON(t.MonthlyAmount),
		StartDate:     t.StartDate.Format("2006-01-02"),
		EndDate:       t.EndDate.Format("2006-01-02"),
	}
}

type salaryProfileJSON struct {
	ParticipantID int64      `json:"participant_id"`
	Income        string     `json:"income"`
	FixedAmount   *moneyJSON `json:"fixed_amount,omitempty"`
	HourlyRate    *moneyJSON `json:"hourly_rate,omitempty"`
	Currency      string     `json:"currency"`
}

func toSalaryProfileJSON(p core.SalaryProfile) salaryProfileJSON {
	out := salaryProfileJSON{
		ParticipantID: p.ParticipantID,
		Income:        string(p.Income),
		Currency:      p.Currency,
	}
	if !p.FixedAmount.IsZero() {
		m := toMoneyJSON(p.FixedAmount)
		out.FixedAmount = &m
	}
	if !p.HourlyRate.IsZero() {
		m := toMoneyJSON(p.HourlyRate)
		out.HourlyRate = &m
	}
	return out
}

type deductionJSON struct {
	ID            int64     `json:"id"`
	ParticipantID int64     `json:"participant_id"`
	Description   string    `json:"description"`
	Amount        moneyJSON `json:"amount"`
	DueDate       string    `json:"due_date"`
	Year          int       `json:"year"`
	Month         int       `json:"month"`
}

func toDeductionJSON(d core.Deduction) deductionJSON {
	return deductionJSON{
		ID:            d.ID,
		ParticipantID: d.ParticipantID,
		Description:   d.Description,
		Amount:        toMoneyJSON(d.Amount),
		DueDate:       d.DueDate.Format("2006-01-02"),
		Year:          d.Period.Year,
		Month:         d.Period.Month,
	}
}

type settlementJSON struct {
	Year        int                  `json:"year"`
	Month       int                  `json:"month"`
	Reference   participantJSON      `json:"reference"`
	Counterpart participantJSON      `json:"counterpart"`
	Totals      map[string]moneyJSON `json:"totals_by_participant"`
	Debt        moneyJSON            `json:"debt"`
}

func toSettlementJSON(s services.MonthlySettlement) settlementJSON {
	totals := make(map[string]moneyJSON, len(s.TotalByParticipant))
	for id, total := range s.TotalByParticipant {
		name := s.Reference.Name
		if id == s.Counterpart.ID {
			name = s.Counterpart.Name
		}
		totals[name] = toMoneyJSON(total)
	}
	return settlementJSON{
		Year:        s.Period.Year,
		Month:       s.Period.Month,
		Reference:   toParticipantJSON(s.Reference),
		Counterpart: toParticipantJSON(s.Counterpart),
		Totals:      totals,
		Debt:        toMoneyJSON(s.Debt),
	}
}

type salaryReportJSON struct {
	ParticipantID int64     `json:"participant_id"`
	PaymentPeriod string    `json:"payment_period"`
	WorkingPeriod string    `json:"working_period"`
	WorkingDays   int       `json:"working_days"`
	Hours         int       `json:"hours"`
	GrossForeign  moneyJSON `json:"gross_foreign"`
	GrossLocal    moneyJSON `json:"gross_local"`
	Deductions    moneyJSON `json:"deductions"`
	Debt          moneyJSON `json:"debt"`
	Net           moneyJSON `json:"net"`
	ExchangeRate  string    `json:"exchange_rate"`
	Currency      string    `json:"currency"`
}

func toSalaryReportJSON(r services.SalaryReport) salaryReportJSON {
	return salaryReportJSON{
		ParticipantID: r.Participant.ID,
		PaymentPeriod: r.PaymentPeriod.String(),
		WorkingPeriod: r.WorkingPeriod.String(),
		WorkingDays:   r.WorkingDays,
		Hours:         r.Hours,
		GrossForeign:  toMoneyJSON(r.GrossForeign),
		GrossLocal:    toMoneyJSON(r.GrossLocal),
		Deductions:    toMoneyJSON(r.Deductions),
		Debt:          toMoneyJSON(r.Debt),
		Net:           toMoneyJSON(r.Net),
		ExchangeRate:  r.ExchangeRate.String(),
		Currency:      r.Currency,
	}
}

type annualReportJSON struct {
	ParticipantID     int64              `json:"participant_id"`
	Year              int                `json:"year"`
	ExchangeRate      string             `json:"exchange_rate"`
	Months            []salaryReportJSON `json:"months"`
	TotalWorkingDays  int                `json:"total_working_days"`
	TotalHours        int                `json:"total_hours"`
	TotalGrossForeign moneyJSON          `json:"total_gross_foreign"`
	TotalGrossLocal   moneyJSON          `json:"total_gross_local"`
	TotalDeductions   moneyJSON          `json:"total_deductions"`
	TotalDebt         moneyJSON          `json:"total_debt"`
	TotalNet          moneyJSON          `json:"total_net"`
}

func toAnnualReportJSON(r services.AnnualSalaryReport) annualReportJSON {
	months := make([]salaryReportJSON, 0, len(r.Months))
	for _, m := range r.Months {
		months = append(months, toSalaryReportJSON(m))
	}
	return annualReportJSON{
		ParticipantID:     r.Participant.ID,
		Year:              r.Year,
		ExchangeRate:      r.ExchangeRate.String(),
		Months:            months,
		TotalWorkingDays:  r.TotalWorkingDays,
		TotalHours:        r.TotalHours,
		TotalGrossForeign: toMoneyJSON(r.TotalGrossForeign),
		TotalGrossLocal:   toMoneyJSON(r.TotalGrossLocal),
		TotalDeductions:   toMoneyJSON(r.TotalDeductions),
		TotalDebt:         toMoneyJSON(r.TotalDebt),
		TotalNet:          toMoneyJSON(r.TotalNet),
	}
}

type extractionJobJSON struct {
	ID         string              `json:"id"`
	Status     string              `json:"status"`
	Error      string              `json:"error,omitempty"`
	Candidates []extract.Candidate `json:"candidates,omitempty"`
}

func toExtractionJobJSON(job storage.ExtractionJob, candidates []extract.Candidate) extractionJobJSON {
	return extractionJobJSON{
		ID:         job.ID,
		Status:     job.Status,
		Error:      job.Error,
		Candidates: candidates,
	}
}
