package http

import (
	"net/http"

	"contas/internal/core"
)

type templateRequest struct {
	ParticipantID int64  `json:"participant_id"`
	CategoryID    int64  `json:"category_id"`
	MonthlyAmount string `json:"monthly_amount"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
}

func (req templateRequest) toTemplate() (core.RecurringTemplate, error) {
	cents, err := core.ParseAmountToCents(req.MonthlyAmount)
	if err != nil {
		return core.RecurringTemplate{}, err
	}
	start, err := core.ParseDate(req.StartDate)
	if err != nil {
		return core.RecurringTemplate{}, core.ValidationError{Field: "start_date", Reason: "must be a valid YYYY-MM-DD date"}
	}
	end, err := core.ParseDate(req.EndDate)
	if err != nil {
		return core.RecurringTemplate{}, core.ValidationError{Field: "end_date", Reason: "must be a valid YYYY-MM-DD date"}
	}
	return core.RecurringTemplate{
		ParticipantID: req.ParticipantID,
		CategoryID:    req.CategoryID,
		MonthlyAmount: core.Money{Cents: cents},
		StartDate:     start,
		EndDate:       end,
	}, nil
}

type templateResponse struct {
	Template templateJSON  `json:"template"`
	Entries  []expenseJSON `json:"entries"`
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTemplates(w, r)
	case http.MethodPost:
		s.createTemplate(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) listTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.recurring.ListTemplates(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]templateJSON, 0, len(templates))
	for _, t := range templates {
		out = append(out, toTemplateJSON(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	tpl, err := req.toTemplate()
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, entries, err := s.recurring.CreateTemplate(r.Context(), tpl)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, templateResponse{
		Template: toTemplateJSON(created),
		Entries:  toExpenseListJSON(entries),
	})
}

func (s *Server) handleTemplateByID(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		tpl, err := s.recurring.GetTemplate(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toTemplateJSON(tpl))

	case http.MethodPut:
		var req templateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		tpl, err := req.toTemplate()
		if err != nil {
			writeError(w, r, err)
			return
		}
		tpl.ID = id

		entries, err := s.recurring.UpdateTemplate(r.Context(), tpl)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, templateResponse{
			Template: toTemplateJSON(tpl),
			Entries:  toExpenseListJSON(entries),
		})

	case http.MethodDelete:
		cascade := r.URL.Query().Get("cascade") == "true"
		if err := s.recurring.DeleteTemplate(r.Context(), id, cascade); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}
