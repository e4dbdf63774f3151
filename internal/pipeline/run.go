package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cleared-dev/ledgerport/internal/accounts"
	"github.com/cleared-dev/ledgerport/internal/balances"
	"github.com/cleared-dev/ledgerport/internal/csvio"
	"github.com/cleared-dev/ledgerport/internal/diag"
	"github.com/cleared-dev/ledgerport/internal/export"
	"github.com/cleared-dev/ledgerport/internal/journal"
	"github.com/cleared-dev/ledgerport/internal/model"
)

// RunParams configures a ledger run for one company and period.
type RunParams struct {
	Company        int
	Start          time.Time
	End            time.Time
	OutDir         string
	Override       *balances.Override
	UseCache       bool
	SaveCache      bool
	IncludeZeroing bool
}

// RunResult summarizes a ledger run.
type RunResult struct {
	Files       []string
	Accounts    int
	Entries     int
	Excluded    int
	Opening     *balances.Result
	Diagnostics diag.List
}

// Run maps the chart, resolves opening balances at the day before Start,
// fetches the period's entries and writes the account map, the opening
// trial balance and the Beancount ledger into OutDir.
func (s *Service) Run(ctx context.Context, p RunParams) (*RunResult, error) {
	if p.End.Before(p.Start) {
		return nil, &diag.ValidationError{
			Record:      "period",
			Description: fmt.Sprintf("end %s is before start %s", p.End.Format(csvio.DateLayout), p.Start.Format(csvio.DateLayout)),
		}
	}
	res := &RunResult{}

	chart, diags, err := s.Chart(ctx, p.Company)
	if err != nil {
		return nil, err
	}
	res.Accounts = len(chart.All())
	res.Diagnostics.Extend(diags)

	cutoff := p.Start.AddDate(0, 0, -1)
	opening, err := s.Opening(ctx, chart, OpeningParams{
		Company:   p.Company,
		Cutoff:    cutoff,
		Override:  p.Override,
		UseCache:  p.UseCache,
		SaveCache: p.SaveCache,
	})
	if err != nil {
		return nil, err
	}
	res.Opening = opening
	res.Diagnostics.Extend(opening.Diagnostics)

	entries, err := s.src.FetchEntries(ctx, p.Company, p.Start, p.End)
	if err != nil {
		return nil, fmt.Errorf("fetching entries: %w", err)
	}
	if !p.IncludeZeroing {
		entries, res.Excluded = journal.ExcludeOrigin(entries, model.OriginZeroing)
		s.logger.Info("zeroing entries excluded", "count", res.Excluded)
	}
	res.Entries = len(entries)
	res.Diagnostics.Extend(journal.Validate(model.ExpandEntries(entries), chart))

	if err := os.MkdirAll(p.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	mapPath := filepath.Join(p.OutDir, export.MapFileName(p.Company))
	if err := writeFile(mapPath, func(b *bytes.Buffer) error { return accounts.WriteMap(b, chart.All()) }); err != nil {
		return nil, err
	}
	res.Files = append(res.Files, mapPath)

	tbPath := filepath.Join(p.OutDir, export.OpeningTrialBalanceFileName(p.Company, cutoff.Format(csvio.DateLayout)))
	if err := writeFile(tbPath, func(b *bytes.Buffer) error { return export.WriteOpeningTrialBalance(b, opening.Balances) }); err != nil {
		return nil, err
	}
	res.Files = append(res.Files, tbPath)

	ledgerPath := filepath.Join(p.OutDir, export.LedgerFileName(p.Company, p.Start.Format(csvio.DateLayout), p.End.Format(csvio.DateLayout)))
	err = writeFile(ledgerPath, func(b *bytes.Buffer) error {
		ledgerDiags, err := export.WriteBeancount(b, export.Ledger{
			CompanyID: p.Company,
			Start:     p.Start,
			End:       p.End,
			Currency:  s.opts.Currency,
			Title:     s.opts.Title,
			Chart:     chart,
			Opening:   opening.Balances,
			Entries:   entries,
		})
		res.Diagnostics.Extend(ledgerDiags)
		return err
	})
	if err != nil {
		return nil, err
	}
	res.Files = append(res.Files, ledgerPath)

	LogDiagnostics(s.logger, res.Diagnostics)
	s.logger.Info("pipeline finished",
		"company", p.Company,
		"accounts", res.Accounts,
		"entries", res.Entries,
		"opening_balances", len(opening.Balances),
		"diagnostics", len(res.Diagnostics))
	return res, nil
}

// WriteOpeningBalances writes a balance set to the opening balances CSV in
// dir and returns the file path.
func WriteOpeningBalances(dir string, res *balances.Result) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	path := filepath.Join(dir, export.OpeningBalancesFileName(res.CompanyID, res.Cutoff.Format(csvio.DateLayout)))
	if err := writeFile(path, func(b *bytes.Buffer) error { return balances.WriteCSV(b, res) }); err != nil {
		return "", err
	}
	return path, nil
}

// ReadOverride loads an opening balances CSV for use as an override.
func ReadOverride(path string) (*balances.Override, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening balances file: %w", err)
	}
	defer f.Close()
	o, err := balances.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return &o, nil
}

// writeFile renders into memory first so a failed render leaves no partial
// file behind.
func writeFile(path string, render func(*bytes.Buffer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return fmt.Errorf("rendering %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}
