package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerport/internal/balances"
	"github.com/cleared-dev/ledgerport/internal/csvio"
	"github.com/cleared-dev/ledgerport/internal/diag"
	"github.com/cleared-dev/ledgerport/internal/export"
	"github.com/cleared-dev/ledgerport/internal/journal"
	"github.com/cleared-dev/ledgerport/internal/model"
	"github.com/cleared-dev/ledgerport/internal/statements"
)

// Query selects a company and period for statement builders. Balance
// sheets use To as the as-of date. Zeroing entries are dropped from period
// figures unless IncludeZeroing is set.
type Query struct {
	Company        int
	From           time.Time
	To             time.Time
	Period         statements.Period
	IncludeZeroing bool
}

func (q Query) validate() error {
	if !q.From.IsZero() && q.To.Before(q.From) {
		return &diag.ValidationError{
			Record:      "period",
			Description: fmt.Sprintf("end %s is before start %s", q.To.Format(csvio.DateLayout), q.From.Format(csvio.DateLayout)),
		}
	}
	return nil
}

// OpeningBalances computes opening balances at cutoff.
func (s *Service) OpeningBalances(ctx context.Context, company int, cutoff time.Time) (*balances.Result, error) {
	chart, _, err := s.Chart(ctx, company)
	if err != nil {
		return nil, err
	}
	return s.Opening(ctx, chart, OpeningParams{Company: company, Cutoff: cutoff})
}

// BalanceSheet builds the balance sheet as of q.To.
func (s *Service) BalanceSheet(ctx context.Context, q Query) (*statements.Table, diag.List, error) {
	chart, _, err := s.Chart(ctx, q.Company)
	if err != nil {
		return nil, nil, err
	}
	postings, err := s.src.FetchPostingsUntil(ctx, q.Company, q.To)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching postings: %w", err)
	}
	tbl, diags := statements.BalanceSheet(q.Company, chart, netByAccount(postings), q.To)
	return tbl, diags, nil
}

// IncomeStatement builds the income statement over [q.From, q.To].
func (s *Service) IncomeStatement(ctx context.Context, q Query) (*statements.Table, diag.List, error) {
	if err := q.validate(); err != nil {
		return nil, nil, err
	}
	chart, _, err := s.Chart(ctx, q.Company)
	if err != nil {
		return nil, nil, err
	}
	entries, err := s.periodEntries(ctx, q)
	if err != nil {
		return nil, nil, err
	}
	tbl, diags := statements.IncomeStatement(q.Company, chart, model.ExpandEntries(entries), q.Period)
	return tbl, diags, nil
}

// TrialBalance builds the trial balance over [q.From, q.To], opening at the
// day before q.From.
func (s *Service) TrialBalance(ctx context.Context, q Query) (*statements.TrialBalance, diag.List, error) {
	if err := q.validate(); err != nil {
		return nil, nil, err
	}
	chart, _, err := s.Chart(ctx, q.Company)
	if err != nil {
		return nil, nil, err
	}
	opening, err := balances.NewBuilder(s.src, s.opts.Balances).Build(ctx, q.Company, q.From.AddDate(0, 0, -1), chart)
	if err != nil {
		return nil, nil, err
	}
	entries, err := s.periodEntries(ctx, q)
	if err != nil {
		return nil, nil, err
	}
	tb, diags := statements.BuildTrialBalance(q.Company, chart, opening.ByCode(), model.ExpandEntries(entries))
	return tb, diags, nil
}

// Movements lists the entries dated within [q.From, q.To].
func (s *Service) Movements(ctx context.Context, q Query) ([]statements.Movement, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	chart, _, err := s.Chart(ctx, q.Company)
	if err != nil {
		return nil, err
	}
	entries, err := s.periodEntries(ctx, q)
	if err != nil {
		return nil, err
	}
	return statements.Movements(chart, entries), nil
}

// periodEntries fetches the entries dated within [q.From, q.To].
func (s *Service) periodEntries(ctx context.Context, q Query) ([]model.Entry, error) {
	entries, err := s.src.FetchEntries(ctx, q.Company, q.From, q.To)
	if err != nil {
		return nil, fmt.Errorf("fetching entries: %w", err)
	}
	if !q.IncludeZeroing {
		entries, _ = journal.ExcludeOrigin(entries, model.OriginZeroing)
	}
	return entries, nil
}

// ReportResult summarizes a workbook run.
type ReportResult struct {
	File        string
	Diagnostics diag.List
}

// Report writes the XLSX workbook for q into outDir.
func (s *Service) Report(ctx context.Context, q Query, outDir string) (*ReportResult, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	res := &ReportResult{}

	chart, chartDiags, err := s.Chart(ctx, q.Company)
	if err != nil {
		return nil, err
	}
	res.Diagnostics.Extend(chartDiags)

	closingPostings, err := s.src.FetchPostingsUntil(ctx, q.Company, q.To)
	if err != nil {
		return nil, fmt.Errorf("fetching postings: %w", err)
	}
	closing := netByAccount(closingPostings)
	bs, bsDiags := statements.BalanceSheet(q.Company, chart, closing, q.To)
	res.Diagnostics.Extend(bsDiags)

	is, isDiags, err := s.IncomeStatement(ctx, q)
	if err != nil {
		return nil, err
	}
	res.Diagnostics.Extend(isDiags)

	moves, err := s.Movements(ctx, q)
	if err != nil {
		return nil, err
	}

	tb, tbDiags, err := s.TrialBalance(ctx, q)
	if err != nil {
		return nil, err
	}
	res.Diagnostics.Extend(tbDiags)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	res.File = filepath.Join(outDir, export.ReportFileName(q.Company, q.From.Format(csvio.DateLayout), q.To.Format(csvio.DateLayout)))
	err = writeFile(res.File, func(b *bytes.Buffer) error {
		return export.WriteWorkbook(b, []export.Sheet{
			{Name: export.SheetChart, Table: statements.ChartOfAccounts(chart, closing)},
			{Name: export.SheetBalanceSheet, Table: bs},
			{Name: export.SheetIncomeStatement, Table: is},
			{Name: export.SheetMovements, Table: statements.MovementsTable(moves)},
			{Name: export.SheetTrialBalance, Table: tb.Table()},
		})
	})
	if err != nil {
		return nil, err
	}

	LogDiagnostics(s.logger, res.Diagnostics)
	s.logger.Info("report written", "company", q.Company, "file", res.File, "movements", len(moves))
	return res, nil
}

// netByAccount sums signed postings per account.
func netByAccount(postings []model.Posting) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, p := range postings {
		out[p.AccountCode] = out[p.AccountCode].Add(p.Signed())
	}
	return out
}
