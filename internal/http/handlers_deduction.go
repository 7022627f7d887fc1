package http

import (
	"net/http"

	"contas/internal/core"
)

func (s *Server) handleDeductions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listDeductions(w, r)
	case http.MethodPost:
		s.createDeduction(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) listDeductions(w http.ResponseWriter, r *http.Request) {
	participantID, err := parseQueryInt64(r, "participant_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	year, month, err := parseYearMonth(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	deductions, err := s.deductions.ListDeductions(r.Context(), participantID, core.Period{Year: year, Month: month})
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]deductionJSON, 0, len(deductions))
	for _, d := range deductions {
		out = append(out, toDeductionJSON(d))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createDeduction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParticipantID int64  `json:"participant_id"`
		Description   string `json:"description"`
		Amount        string `json:"amount"`
		DueDate       string `json:"due_date"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	cents, err := core.ParseAmountToCents(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	dueDate, err := core.ParseDate(req.DueDate)
	if err != nil {
		writeError(w, r, core.ValidationError{Field: "due_date", Reason: "must be a valid YYYY-MM-DD date"})
		return
	}

	deduction, err := s.deductions.CreateDeduction(r.Context(), core.Deduction{
		ParticipantID: req.ParticipantID,
		Description:   sanitizeInput(req.Description),
		Amount:        core.Money{Cents: cents},
		DueDate:       dueDate,
		Period:        dueDate.Period(),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDeductionJSON(deduction))
}

func (s *Server) handleDeductionByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, http.MethodDelete)
		return
	}

	id, err := parsePathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.deductions.DeleteDeduction(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
