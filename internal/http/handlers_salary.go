package http

import (
	"net/http"
	"strconv"
	"strings"

	"contas/internal/core"
)

func (s *Server) handleSalaryProfile(w http.ResponseWriter, r *http.Request) {
	participantID, err := parsePathID(r, "participantID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		profile, err := s.salaries.GetProfile(r.Context(), participantID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toSalaryProfileJSON(profile))

	case http.MethodPut:
		var req struct {
			Income      string `json:"income"`
			FixedAmount string `json:"fixed_amount,omitempty"`
			HourlyRate  string `json:"hourly_rate,omitempty"`
			Currency    string `json:"currency"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		profile := core.SalaryProfile{
			ParticipantID: participantID,
			Income:        core.IncomeModel(req.Income),
			Currency:      strings.ToUpper(strings.TrimSpace(req.Currency)),
		}
		if req.FixedAmount != "" {
			cents, err := core.ParseAmountToCents(req.FixedAmount)
			if err != nil {
				writeError(w, r, err)
				return
			}
			profile.FixedAmount = core.Money{Cents: cents}
		}
		if req.HourlyRate != "" {
			cents, err := core.ParseAmountToCents(req.HourlyRate)
			if err != nil {
				writeError(w, r, err)
				return
			}
			profile.HourlyRate = core.Money{Cents: cents}
		}

		saved, err := s.salaries.UpsertProfile(r.Context(), profile)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toSalaryProfileJSON(saved))

	case http.MethodDelete:
		if err := s.salaries.DeleteProfile(r.Context(), participantID); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (s *Server) handleSettlement(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	year, month, err := parseYearMonth(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	settlement, err := s.settlement.ComputeMonthlyDebt(r.Context(), core.Period{Year: year, Month: month})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettlementJSON(settlement))
}

func (s *Server) handleSalaryReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

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

	report, err := s.settlement.ComputeMonthlySalaryReport(r.Context(), participantID, core.Period{Year: year, Month: month})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSalaryReportJSON(report))
}

func (s *Server) handleAnnualSalaryReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	participantID, err := parseQueryInt64(r, "participant_id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	yearStr := strings.TrimSpace(r.URL.Query().Get("year"))
	if yearStr == "" {
		writeError(w, r, core.ValidationError{Field: "year", Reason: "required"})
		return
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		writeError(w, r, core.ValidationError{Field: "year", Reason: "must be a number"})
		return
	}

	report, err := s.settlement.ComputeAnnualSalaryReport(r.Context(), participantID, year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAnnualReportJSON(report))
}
