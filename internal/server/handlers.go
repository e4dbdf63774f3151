package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cleared-dev/ledgerport/internal/pipeline"
	"github.com/cleared-dev/ledgerport/internal/statements"
)

// listCompanies handles GET /companies.
func (s *Server) listCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := s.directory.Companies(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"companies": companies})
}

// listAccounts handles GET /companies/{id}/accounts.
func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	company, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || company < 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid company ID")
		return
	}
	chart, diags, err := s.reports.Chart(r.Context(), company)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	all := chart.All()
	out := make([]accountResponse, 0, len(all))
	for _, a := range all {
		out = append(out, newAccountResponse(a))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"company":     company,
		"accounts":    out,
		"diagnostics": newDiagnostics(diags),
	})
}

// openingBalances handles GET /opening-balances?cutoff=.
func (s *Server) openingBalances(w http.ResponseWriter, r *http.Request) {
	company, ok := s.company(w, r)
	if !ok {
		return
	}
	cutoff, ok := requireDate(w, r, "cutoff")
	if !ok {
		return
	}
	res, err := s.reports.OpeningBalances(r.Context(), company, cutoff)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newOpeningResponse(res))
}

// trialBalance handles GET /trial-balance?from=&to=.
func (s *Server) trialBalance(w http.ResponseWriter, r *http.Request) {
	q, ok := s.periodQuery(w, r)
	if !ok {
		return
	}
	tb, diags, err := s.reports.TrialBalance(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"company":       q.Company,
		"trial_balance": tb,
		"diagnostics":   newDiagnostics(diags),
	})
}

// balanceSheet handles GET /balance-sheet?asof=.
func (s *Server) balanceSheet(w http.ResponseWriter, r *http.Request) {
	company, ok := s.company(w, r)
	if !ok {
		return
	}
	asOf, ok := requireDate(w, r, "asof")
	if !ok {
		return
	}
	tbl, diags, err := s.reports.BalanceSheet(r.Context(), pipeline.Query{Company: company, To: asOf})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"company":     company,
		"statement":   tbl,
		"diagnostics": newDiagnostics(diags),
	})
}

// incomeStatement handles GET /income-statement?from=&to=&period=.
func (s *Server) incomeStatement(w http.ResponseWriter, r *http.Request) {
	q, ok := s.periodQuery(w, r)
	if !ok {
		return
	}
	period, err := statements.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}
	q.Period = period
	tbl, diags, err := s.reports.IncomeStatement(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"company":     q.Company,
		"statement":   tbl,
		"diagnostics": newDiagnostics(diags),
	})
}

// movements handles GET /movements?from=&to=.
func (s *Server) movements(w http.ResponseWriter, r *http.Request) {
	q, ok := s.periodQuery(w, r)
	if !ok {
		return
	}
	mv, err := s.reports.Movements(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if mv == nil {
		mv = []statements.Movement{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"company":   q.Company,
		"movements": mv,
	})
}

// company reads the company query parameter, falling back to the default.
func (s *Server) company(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("company")
	if raw == "" {
		if s.defaultCompany > 0 {
			return s.defaultCompany, true
		}
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Missing company")
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid company")
		return 0, false
	}
	return id, true
}

// periodQuery reads company, from, to and include_zeroing.
func (s *Server) periodQuery(w http.ResponseWriter, r *http.Request) (pipeline.Query, bool) {
	company, ok := s.company(w, r)
	if !ok {
		return pipeline.Query{}, false
	}
	from, ok := requireDate(w, r, "from")
	if !ok {
		return pipeline.Query{}, false
	}
	to, ok := requireDate(w, r, "to")
	if !ok {
		return pipeline.Query{}, false
	}
	if to.Before(from) {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "to is before from")
		return pipeline.Query{}, false
	}
	include, _ := strconv.ParseBool(r.URL.Query().Get("include_zeroing"))
	return pipeline.Query{Company: company, From: from, To: to, IncludeZeroing: include}, true
}

func requireDate(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Missing "+name)
		return time.Time{}, false
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid "+name+", expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return t, true
}
