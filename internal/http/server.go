package http

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"contas/internal/middleware/trace"
	"contas/internal/services"
)

// Server wires the settlement engine's services onto a JSON API.
type Server struct {
	http.Server

	ledger     *services.LedgerService
	recurring  *services.RecurringExpander
	salaries   *services.SalaryResolver
	deductions *services.DeductionService
	settlement *services.SettlementCalculator
	intake     *services.ExtractionIntake

	ready func(context.Context) error
}

// Deps carries everything the server needs. Ready is the readiness
// probe, usually a database ping; nil means always ready.
type Deps struct {
	Ledger     *services.LedgerService
	Recurring  *services.RecurringExpander
	Salaries   *services.SalaryResolver
	Deductions *services.DeductionService
	Settlement *services.SettlementCalculator
	Intake     *services.ExtractionIntake
	Ready      func(context.Context) error
	Registry   *prometheus.Registry
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	tracer := trace.NewMiddleware(registry)

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           tracer.Middleware(mux),
			ReadHeaderTimeout: 5 * time.Second,
		},
		ledger:     deps.Ledger,
		recurring:  deps.Recurring,
		salaries:   deps.Salaries,
		deductions: deps.Deductions,
		settlement: deps.Settlement,
		intake:     deps.Intake,
		ready:      deps.Ready,
	}

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("/participants", s.handleParticipants)
	mux.HandleFunc("/categories", s.handleCategories)
	mux.HandleFunc("/categories/{id}", s.handleCategoryByID)
	mux.HandleFunc("/expenses", s.handleExpenses)
	mux.HandleFunc("/expenses/{id}", s.handleExpenseByID)
	mux.HandleFunc("/templates", s.handleTemplates)
	mux.HandleFunc("/templates/{id}", s.handleTemplateByID)
	mux.HandleFunc("/salary-profiles/{participantID}", s.handleSalaryProfile)
	mux.HandleFunc("/deductions", s.handleDeductions)
	mux.HandleFunc("/deductions/{id}", s.handleDeductionByID)
	mux.HandleFunc("/settlement", s.handleSettlement)
	mux.HandleFunc("/salary-report", s.handleSalaryReport)
	mux.HandleFunc("/salary-report/annual", s.handleAnnualSalaryReport)
	mux.HandleFunc("/extractions", s.handleSubmitExtraction)
	mux.HandleFunc("/extractions/{id}", s.handleExtractionByID)
	mux.HandleFunc("/extractions/{id}/confirm", s.handleConfirmExtraction)

	return s
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
