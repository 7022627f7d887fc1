package extract

import (
	"context"
	"strings"

	"contas/internal/core"
)

// Candidate is one deduction proposal pulled out of an uploaded payslip.
// Candidates are untrusted until validated and confirmed by a person;
// nothing here writes to the ledger.
type Candidate struct {
	Label       string `json:"label"`
	AmountCents int64  `json:"amount_cents"`
	Date        string `json:"date"` // YYYY-MM-DD
	Category    string `json:"category"`
}

// Result is the full output of one extraction run.
type Result struct {
	Candidates []Candidate `json:"candidates"`
}

// Extractor turns an uploaded document into deduction candidates.
type Extractor interface {
	Extract(ctx context.Context, mimeType string, document []byte) (Result, error)
}

// Validate checks a candidate the way any other untrusted input is
// checked before it may be shown for confirmation.
func (c Candidate) Validate() error {
	if strings.TrimSpace(c.Label) == "" {
		return core.ValidationError{Field: "label", Reason: "must not be empty"}
	}
	if c.AmountCents <= 0 {
		return core.ValidationError{Field: "amount_cents", Reason: "must be positive"}
	}
	if _, err := core.ParseDate(c.Date); err != nil {
		return core.ValidationError{Field: "date", Reason: "must be a valid YYYY-MM-DD date"}
	}
	return nil
}

// FilterValid keeps the candidates that pass validation and reports how
// many were dropped. A model that hallucinates a negative amount or a
// malformed date loses that candidate, not the whole batch.
func FilterValid(candidates []Candidate) (kept []Candidate, dropped int) {
	kept = make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if err := c.Validate(); err != nil {
			dropped++
			continue
		}
		kept = append(kept, c)
	}
	return kept, dropped
}
