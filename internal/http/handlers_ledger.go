package http

import (
	"net/http"

	"contas/internal/core"
)

func (s *Server) handleParticipants(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	participants, err := s.ledger.ListParticipants(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]participantJSON, 0, len(participants))
	for _, p := range participants {
		out = append(out, toParticipantJSON(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listCategories(w, r)
	case http.MethodPost:
		s.createCategory(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.ledger.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]categoryJSON, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryJSON{ID: c.ID, Name: c.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	category, err := s.ledger.CreateCategory(r.Context(), sanitizeInput(req.Name))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, categoryJSON{ID: category.ID, Name: category.Name})
}

func (s *Server) handleCategoryByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, http.MethodDelete)
		return
	}

	id, err := parsePathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.ledger.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listExpenses(w, r)
	case http.MethodPost:
		s.upsertExpense(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if r.URL.Query().Get("month") == "" && r.URL.Query().Get("year") != "" {
		// Year given without month lists the whole year.
		month = 0
	}

	entries, err := s.ledger.ListExpenses(r.Context(), year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseListJSON(entries))
}

func (s *Server) upsertExpense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParticipantID int64  `json:"participant_id"`
		CategoryID    int64  `json:"category_id"`
		Amount        string `json:"amount"`
		Year          int    `json:"year"`
		Month         int    `json:"month"`
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

	period := core.Period{Year: req.Year, Month: req.Month}
	result, err := s.ledger.UpsertExpense(r.Context(), req.ParticipantID, req.CategoryID, cents, period, 0)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if result.Deleted {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseJSON(result.Entry))
}

func (s *Server) handleExpenseByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, http.MethodDelete)
		return
	}

	id, err := parsePathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.ledger.DeleteExpense(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
