package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerport/internal/balances"
	"github.com/cleared-dev/ledgerport/internal/diag"
	"github.com/cleared-dev/ledgerport/internal/model"
)

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

type accountResponse struct {
	Code               string `json:"code"`
	Name               string `json:"name"`
	ClassificationCode string `json:"classification_code"`
	TypeFlag           string `json:"type_flag,omitempty"`
	Kind               string `json:"kind,omitempty"`
	Status             string `json:"status"`
	Category           string `json:"category"`
	Group              string `json:"group,omitempty"`
	Path               string `json:"path"`
	Ambiguous          bool   `json:"ambiguous,omitempty"`
}

func newAccountResponse(a model.ClassifiedAccount) accountResponse {
	return accountResponse{
		Code:               a.Code,
		Name:               a.Name,
		ClassificationCode: a.ClassificationCode,
		TypeFlag:           a.TypeFlag,
		Kind:               string(a.Kind),
		Status:             string(a.Status),
		Category:           string(a.Category),
		Group:              a.Group,
		Path:               a.Path,
		Ambiguous:          a.Ambiguous,
	}
}

type balanceResponse struct {
	Code               string          `json:"code"`
	Name               string          `json:"name"`
	ClassificationCode string          `json:"classification_code"`
	Group              string          `json:"group"`
	Path               string          `json:"path"`
	Balance            decimal.Decimal `json:"balance"`
}

type openingResponse struct {
	Company     int                  `json:"company"`
	Cutoff      string               `json:"cutoff"`
	Total       decimal.Decimal      `json:"total"`
	Balances    []balanceResponse    `json:"balances"`
	Diagnostics []diagnosticResponse `json:"diagnostics"`
}

func newOpeningResponse(res *balances.Result) openingResponse {
	out := openingResponse{
		Company:     res.CompanyID,
		Cutoff:      res.Cutoff.Format(time.DateOnly),
		Total:       res.Total,
		Balances:    make([]balanceResponse, 0, len(res.Balances)),
		Diagnostics: newDiagnostics(res.Diagnostics),
	}
	for _, b := range res.Balances {
		out.Balances = append(out.Balances, balanceResponse{
			Code:               b.AccountCode,
			Name:               b.AccountName,
			ClassificationCode: b.ClassificationCode,
			Group:              b.Group,
			Path:               b.Path,
			Balance:            b.Balance,
		})
	}
	return out
}

type diagnosticResponse struct {
	Kind    string `json:"kind"`
	Account string `json:"account,omitempty"`
	Message string `json:"message"`
}

func newDiagnostics(l diag.List) []diagnosticResponse {
	out := make([]diagnosticResponse, 0, len(l))
	for _, d := range l {
		out = append(out, diagnosticResponse{Kind: string(d.Kind), Account: d.Account, Message: d.Message})
	}
	return out
}

// writeError maps domain errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *diag.ValidationError
	if errors.As(err, &verr) {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", verr.Error())
		return
	}
	s.logger.Error("request failed", "request_id", middleware.GetReqID(r.Context()), "path", r.URL.Path, "error", err)
	writeJSONError(w, http.StatusInternalServerError, "server_error", "Internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, ErrorResponse{Error: code, ErrorDescription: description})
}
