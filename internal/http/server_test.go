package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"contas/internal/fx"
	"contas/internal/services"
	"contas/internal/storage/memory"
)

func newTestServer(t *testing.T, ready func(context.Context) error) *Server {
	t.Helper()
	store := memory.New()
	ledger := services.NewLedgerService(store)
	salaries := services.NewSalaryResolver(store)
	deductions := services.NewDeductionService(store)
	rates := fx.StaticSource{Rate: decimal.NewFromInt(5)}
	settlement := services.NewSettlementCalculator(store, salaries, deductions, rates, services.SettlementConfig{})

	return NewServer(":0", Deps{
		Ledger:     ledger,
		Recurring:  services.NewRecurringExpander(store, ledger),
		Salaries:   salaries,
		Deductions: deductions,
		Settlement: settlement,
		Intake:     services.NewExtractionIntake(store, nil, nil, deductions),
		Ready:      ready,
	})
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthAndReadiness(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doRequest(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rr.Code)
		}
	}

	failing := newTestServer(t, func(context.Context) error { return errors.New("db gone") })
	rr := doRequest(t, failing, http.MethodGet, "/readyz", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /readyz status = %d, want 503", rr.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := doRequest(t, srv, http.MethodPost, "/settlement", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /settlement status = %d, want 405", rr.Code)
	}
	if allow := rr.Header().Get("Allow"); allow != http.MethodGet {
		t.Errorf("Allow header = %q, want %q", allow, http.MethodGet)
	}
}

func TestCategoryEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := doRequest(t, srv, http.MethodPost, "/categories", `{"name":"aluguel"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("POST /categories status = %d, body = %s", rr.Code, rr.Body)
	}
	var created categoryJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created category: %v", err)
	}
	if created.Name != "aluguel" || created.ID == 0 {
		t.Errorf("created = %+v", created)
	}

	rr = doRequest(t, srv, http.MethodPost, "/categories", `{"name":"aluguel"}`)
	if rr.Code != http.StatusConflict {
		t.Errorf("duplicate POST /categories status = %d, want 409", rr.Code)
	}

	rr = doRequest(t, srv, http.MethodPost, "/categories", `{"name":"aluguel","extra":true}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("unknown field status = %d, want 422", rr.Code)
	}

	rr = doRequest(t, srv, http.MethodGet, "/categories", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /categories status = %d", rr.Code)
	}
	var listed []categoryJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode categories: %v", err)
	}
	if len(listed) != 1 {
		t.Errorf("listed %d categories, want 1", len(listed))
	}

	rr = doRequest(t, srv, http.MethodDelete, "/categories/1", "")
	if rr.Code != http.StatusNoContent {
		t.Errorf("DELETE /categories/1 status = %d, want 204", rr.Code)
	}
	rr = doRequest(t, srv, http.MethodDelete, "/categories/1", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("second DELETE /categories/1 status = %d, want 404", rr.Code)
	}
}

func TestExpenseEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := doRequest(t, srv, http.MethodPost, "/categories", `{"name":"mercado"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("POST /categories status = %d", rr.Code)
	}
	var cat categoryJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &cat); err != nil {
		t.Fatalf("decode category: %v", err)
	}

	body := `{"participant_id":1,"category_id":1,"amount":"1200,00","year":2025,"month":3}`
	rr = doRequest(t, srv, http.MethodPost, "/expenses", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("POST /expenses status = %d, body = %s", rr.Code, rr.Body)
	}
	var entry expenseJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode expense: %v", err)
	}
	if entry.Amount.Cents != 120000 {
		t.Errorf("amount cents = %d, want 120000", entry.Amount.Cents)
	}
	if entry.Year != 2025 || entry.Month != 3 {
		t.Errorf("period = %d-%d, want 2025-3", entry.Year, entry.Month)
	}

	rr = doRequest(t, srv, http.MethodGet, "/expenses?year=2025&month=3", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /expenses status = %d", rr.Code)
	}
	var listed []expenseJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode expenses: %v", err)
	}
	if len(listed) != 1 {
		t.Errorf("listed %d expenses, want 1", len(listed))
	}

	// Zero amount clears the tuple.
	rr = doRequest(t, srv, http.MethodPost, "/expenses",
		`{"participant_id":1,"category_id":1,"amount":"0","year":2025,"month":3}`)
	if rr.Code != http.StatusNoContent {
		t.Errorf("zero-amount POST /expenses status = %d, want 204", rr.Code)
	}

	rr = doRequest(t, srv, http.MethodPost, "/expenses",
		`{"participant_id":1,"category_id":1,"amount":"-5","year":2025,"month":3}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("negative-amount POST /expenses status = %d, want 422", rr.Code)
	}

	rr = doRequest(t, srv, http.MethodDelete, "/expenses/999", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("DELETE /expenses/999 status = %d, want 404", rr.Code)
	}
}

func TestSettlementEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	doRequest(t, srv, http.MethodPost, "/categories", `{"name":"contas"}`)
	doRequest(t, srv, http.MethodPost, "/expenses",
		`{"participant_id":1,"category_id":1,"amount":"800,00","year":2025,"month":3}`)
	doRequest(t, srv, http.MethodPost, "/expenses",
		`{"participant_id":2,"category_id":1,"amount":"1200,00","year":2025,"month":3}`)

	rr := doRequest(t, srv, http.MethodGet, "/settlement?year=2025&month=3", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /settlement status = %d, body = %s", rr.Code, rr.Body)
	}
	var out settlementJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode settlement: %v", err)
	}
	if out.Reference.Name != "Bruno" || out.Counterpart.Name != "Ana" {
		t.Errorf("sides = %s vs %s, want Bruno vs Ana", out.Reference.Name, out.Counterpart.Name)
	}
	if out.Totals["Ana"].Cents != 80000 || out.Totals["Bruno"].Cents != 120000 {
		t.Errorf("totals = %+v", out.Totals)
	}
	if out.Debt.Cents != 40000 {
		t.Errorf("debt cents = %d, want 40000", out.Debt.Cents)
	}
}

func TestSalaryProfileEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := doRequest(t, srv, http.MethodPut, "/salary-profiles/2",
		`{"income":"fixed","fixed_amount":"8500,00","currency":"brl"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("PUT /salary-profiles/2 status = %d, body = %s", rr.Code, rr.Body)
	}
	var profile salaryProfileJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.Currency != "BRL" {
		t.Errorf("currency = %q, want BRL", profile.Currency)
	}
	if profile.FixedAmount == nil || profile.FixedAmount.Cents != 850000 {
		t.Errorf("fixed amount = %+v, want 850000 cents", profile.FixedAmount)
	}

	rr = doRequest(t, srv, http.MethodPut, "/salary-profiles/1",
		`{"income":"fixed","fixed_amount":"100,00","currency":"BRL"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("role-mismatch PUT status = %d, want 422", rr.Code)
	}

	rr = doRequest(t, srv, http.MethodGet, "/salary-profiles/1", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("GET missing profile status = %d, want 404", rr.Code)
	}

	rr = doRequest(t, srv, http.MethodDelete, "/salary-profiles/2", "")
	if rr.Code != http.StatusNoContent {
		t.Errorf("DELETE /salary-profiles/2 status = %d, want 204", rr.Code)
	}
}

func TestExtractionEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/extractions", strings.NewReader("payslip bytes"))
	req.Header.Set("Content-Type", "application/pdf")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("POST /extractions status = %d, body = %s", rr.Code, rr.Body)
	}
	var job extractionJobJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &job); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	if job.ID == "" || job.Status != "pending" {
		t.Errorf("job = %+v", job)
	}

	rr = doRequest(t, srv, http.MethodGet, "/extractions/"+job.ID, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /extractions/%s status = %d", job.ID, rr.Code)
	}

	rr = doRequest(t, srv, http.MethodGet, "/extractions/unknown", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("GET unknown job status = %d, want 404", rr.Code)
	}

	// Confirming a pending job is rejected.
	rr = doRequest(t, srv, http.MethodPost, "/extractions/"+job.ID+"/confirm",
		`{"participant_id":1,"candidates":[0]}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("confirm pending job status = %d, want 422", rr.Code)
	}
}
