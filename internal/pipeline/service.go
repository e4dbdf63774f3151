// Package pipeline wires the data source, classification, opening balance
// and statement builders, and the exporters into the runs exposed by the
// CLI and the HTTP API.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cleared-dev/ledgerport/internal/accounts"
	"github.com/cleared-dev/ledgerport/internal/balances"
	"github.com/cleared-dev/ledgerport/internal/classify"
	"github.com/cleared-dev/ledgerport/internal/diag"
	"github.com/cleared-dev/ledgerport/internal/model"
)

// Source is the data-access collaborator. *store.Store satisfies it.
type Source interface {
	FetchChartOfAccounts(ctx context.Context, company int) ([]model.RawAccount, error)
	FetchEntries(ctx context.Context, company int, from, to time.Time) ([]model.Entry, error)
	FetchPostings(ctx context.Context, company int, from, to time.Time) ([]model.Posting, error)
	FetchPostingsUntil(ctx context.Context, company int, cutoff time.Time) ([]model.Posting, error)
}

// Options configures a Service.
type Options struct {
	Model          string
	Customizations map[string]string
	Mapper         accounts.Options
	Balances       balances.Options
	Currency       string
	Title          string
}

// DefaultOptions uses the default model and BRL.
func DefaultOptions() Options {
	return Options{
		Model:    classify.DefaultModel,
		Mapper:   accounts.DefaultOptions(),
		Balances: balances.DefaultOptions(),
		Currency: "BRL",
	}
}

// Service runs extraction pipelines for one data source.
type Service struct {
	src    Source
	cache  balances.Cache
	table  *classify.Table
	opts   Options
	logger *slog.Logger
}

// New resolves the classification model and returns a Service. cache may
// be nil, which disables the opening balance cache.
func New(src Source, cache balances.Cache, opts Options, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	table, err := classify.ResolveModel(opts.Model, opts.Customizations)
	if err != nil {
		return nil, err
	}
	return &Service{src: src, cache: cache, table: table, opts: opts, logger: logger}, nil
}

// Options returns the effective options.
func (s *Service) Options() Options {
	return s.opts
}

// Chart fetches and maps a company's chart of accounts.
func (s *Service) Chart(ctx context.Context, company int) (*accounts.Chart, diag.List, error) {
	raw, err := s.src.FetchChartOfAccounts(ctx, company)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching chart of accounts: %w", err)
	}
	accts, diags, err := accounts.NewMapper(s.table, s.opts.Mapper).ProcessChart(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("mapping chart of accounts: %w", err)
	}
	s.logger.Debug("chart mapped", "company", company, "accounts", len(accts))
	return accounts.NewChart(accts), diags, nil
}

// OpeningParams selects where opening balances come from. An Override
// wins, then the cache when UseCache is set, then recomputation.
type OpeningParams struct {
	Company   int
	Cutoff    time.Time
	Override  *balances.Override
	UseCache  bool
	SaveCache bool
}

// Opening returns opening balances at p.Cutoff with paths attached.
func (s *Service) Opening(ctx context.Context, chart *accounts.Chart, p OpeningParams) (*balances.Result, error) {
	if p.Override != nil {
		s.logger.Info("using supplied opening balances", "company", p.Company, "rows", len(p.Override.Balances))
		return balances.ApplyOverride(p.Company, p.Cutoff, *p.Override, chart, s.opts.Balances), nil
	}

	if p.UseCache && s.cache != nil {
		cached, err := s.cache.LoadOpeningBalances(ctx, p.Company, p.Cutoff)
		if err != nil {
			return nil, fmt.Errorf("loading cached opening balances: %w", err)
		}
		if len(cached) > 0 {
			s.logger.Info("using cached opening balances", "company", p.Company, "rows", len(cached))
			o := balances.Override{CompanyID: p.Company, Cutoff: p.Cutoff, Balances: cached}
			return balances.ApplyOverride(p.Company, p.Cutoff, o, chart, s.opts.Balances), nil
		}
		s.logger.Debug("opening balance cache miss", "company", p.Company, "cutoff", p.Cutoff.Format("2006-01-02"))
	}

	res, err := balances.NewBuilder(s.src, s.opts.Balances).Build(ctx, p.Company, p.Cutoff, chart)
	if err != nil {
		return nil, err
	}
	if p.SaveCache {
		if s.cache == nil {
			return nil, &diag.ConfigurationError{Setting: "cache", Description: "no opening balance cache is configured"}
		}
		if err := s.cache.SaveOpeningBalances(ctx, p.Company, p.Cutoff, res.Balances); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// RollForward rolls base balances at from forward to cutoff using the
// postings dated in (from, cutoff].
func (s *Service) RollForward(ctx context.Context, chart *accounts.Chart, company int, from, cutoff time.Time, base []model.OpeningBalance) (*balances.Result, error) {
	if !from.Before(cutoff) {
		return balances.RollForward(company, from, cutoff, base, nil, chart, s.opts.Balances)
	}
	postings, err := s.src.FetchPostings(ctx, company, from.AddDate(0, 0, 1), cutoff)
	if err != nil {
		return nil, fmt.Errorf("fetching postings: %w", err)
	}
	return balances.RollForward(company, from, cutoff, base, postings, chart, s.opts.Balances)
}

// LogDiagnostics writes each diagnostic at Warn level.
func LogDiagnostics(logger *slog.Logger, diags diag.List) {
	for _, d := range diags {
		logger.Warn(d.Message, "kind", string(d.Kind), "account", d.Account, "company", d.CompanyID)
	}
}
