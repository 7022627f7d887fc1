package http

import (
	"io"
	"net/http"

	"contas/internal/core"
)

// Uploaded documents are capped at 10 MiB.
const maxDocumentSize = 10 << 20

func (s *Server) handleSubmitExtraction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	document, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentSize+1))
	if err != nil {
		writeError(w, r, core.ValidationError{Field: "document", Reason: "could not read body"})
		return
	}
	if len(document) > maxDocumentSize {
		writeError(w, r, core.ValidationError{Field: "document", Reason: "exceeds 10 MiB limit"})
		return
	}

	job, err := s.intake.SubmitDocument(r.Context(), r.Header.Get("Content-Type"), document)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, toExtractionJobJSON(job, nil))
}

func (s *Server) handleExtractionByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	jobID := r.PathValue("id")
	if jobID == "" {
		writeError(w, r, core.ValidationError{Field: "id", Reason: "required"})
		return
	}

	job, candidates, err := s.intake.GetJob(r.Context(), jobID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExtractionJobJSON(job, candidates))
}

func (s *Server) handleConfirmExtraction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	jobID := r.PathValue("id")
	if jobID == "" {
		writeError(w, r, core.ValidationError{Field: "id", Reason: "required"})
		return
	}

	var req struct {
		ParticipantID int64 `json:"participant_id"`
		Candidates    []int `json:"candidates"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	deductions, err := s.intake.ConfirmCandidates(r.Context(), jobID, req.ParticipantID, req.Candidates)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]deductionJSON, 0, len(deductions))
	for _, d := range deductions {
		out = append(out, toDeductionJSON(d))
	}
	writeJSON(w, http.StatusCreated, out)
}
