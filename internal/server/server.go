// Package server exposes statements and balances over a read-only JSON API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cleared-dev/ledgerport/internal/accounts"
	"github.com/cleared-dev/ledgerport/internal/balances"
	"github.com/cleared-dev/ledgerport/internal/diag"
	"github.com/cleared-dev/ledgerport/internal/model"
	"github.com/cleared-dev/ledgerport/internal/pipeline"
	"github.com/cleared-dev/ledgerport/internal/statements"
)

// Reports builds the data served by the API. *pipeline.Service satisfies it.
type Reports interface {
	Chart(ctx context.Context, company int) (*accounts.Chart, diag.List, error)
	OpeningBalances(ctx context.Context, company int, cutoff time.Time) (*balances.Result, error)
	BalanceSheet(ctx context.Context, q pipeline.Query) (*statements.Table, diag.List, error)
	IncomeStatement(ctx context.Context, q pipeline.Query) (*statements.Table, diag.List, error)
	TrialBalance(ctx context.Context, q pipeline.Query) (*statements.TrialBalance, diag.List, error)
	Movements(ctx context.Context, q pipeline.Query) ([]statements.Movement, error)
}

// Directory lists known companies. *store.Store satisfies it.
type Directory interface {
	Companies(ctx context.Context) ([]model.Company, error)
}

// Server holds the API dependencies.
type Server struct {
	reports        Reports
	directory      Directory
	defaultCompany int
	logger         *slog.Logger
}

// New returns a Server. defaultCompany is used when a request carries no
// company parameter; zero means the parameter is required.
func New(reports Reports, directory Directory, defaultCompany int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{reports: reports, directory: directory, defaultCompany: defaultCompany, logger: logger}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/companies", func(r chi.Router) {
		r.Get("/", s.listCompanies)
		r.Get("/{id}/accounts", s.listAccounts)
	})
	r.Get("/opening-balances", s.openingBalances)
	r.Get("/trial-balance", s.trialBalance)
	r.Get("/balance-sheet", s.balanceSheet)
	r.Get("/income-statement", s.incomeStatement)
	r.Get("/movements", s.movements)

	return r
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// requestLogger logs one line per request with the chi request ID.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("request",
					"request_id", middleware.GetReqID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
