// Package balances aggregates signed postings into per-account opening
// balances at a cutoff date and checks that they sum to zero.
package balances

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerport/internal/accounts"
	"github.com/cleared-dev/ledgerport/internal/diag"
	"github.com/cleared-dev/ledgerport/internal/model"
)

// DefaultTolerance is the largest grand total accepted as zero.
var DefaultTolerance = decimal.New(1, -2)

// Options controls aggregation.
type Options struct {
	// KeepZero retains accounts whose total is exactly zero.
	KeepZero  bool
	Tolerance decimal.Decimal
}

// DefaultOptions drops zero balances and uses DefaultTolerance.
func DefaultOptions() Options {
	return Options{Tolerance: DefaultTolerance}
}

// Result is a set of opening balances with its diagnostics.
type Result struct {
	CompanyID   int
	Cutoff      time.Time
	Balances    []model.OpeningBalance // ascending by account code
	Total       decimal.Decimal
	Diagnostics diag.List
}

// ByCode returns the balances keyed by account code.
func (r *Result) ByCode() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(r.Balances))
	for _, b := range r.Balances {
		out[b.AccountCode] = b.Balance
	}
	return out
}

// PostingSource supplies postings up to and including a cutoff date.
type PostingSource interface {
	FetchPostingsUntil(ctx context.Context, company int, cutoff time.Time) ([]model.Posting, error)
}

// Builder computes opening balances from a posting source.
type Builder struct {
	src  PostingSource
	opts Options
}

// NewBuilder creates a Builder.
func NewBuilder(src PostingSource, opts Options) *Builder {
	return &Builder{src: src, opts: opts}
}

// Build fetches postings up to cutoff and aggregates them against chart.
func (b *Builder) Build(ctx context.Context, company int, cutoff time.Time, chart *accounts.Chart) (*Result, error) {
	postings, err := b.src.FetchPostingsUntil(ctx, company, cutoff)
	if err != nil {
		return nil, fmt.Errorf("fetching postings until %s: %w", cutoff.Format("2006-01-02"), err)
	}
	return Aggregate(company, cutoff, postings, chart, b.opts), nil
}

// Aggregate sums postings dated on or before cutoff into signed per-account
// totals: debits add, credits subtract.
func Aggregate(company int, cutoff time.Time, postings []model.Posting, chart *accounts.Chart, opts Options) *Result {
	totals := make(map[string]decimal.Decimal)
	for _, p := range postings {
		if p.Date.After(cutoff) {
			continue
		}
		totals[p.AccountCode] = totals[p.AccountCode].Add(p.Signed())
	}
	return finish(company, cutoff, totals, chart, opts, nil)
}

// RollForward starts from balances supplied at from and applies the
// postings dated in (from, cutoff]. from must be strictly before cutoff.
func RollForward(company int, from, cutoff time.Time, opening []model.OpeningBalance, postings []model.Posting, chart *accounts.Chart, opts Options) (*Result, error) {
	if !from.Before(cutoff) {
		return nil, &diag.ValidationError{
			Record:      "roll-forward period",
			Description: fmt.Sprintf("opening date %s must be before cutoff %s", from.Format("2006-01-02"), cutoff.Format("2006-01-02")),
		}
	}

	totals := make(map[string]decimal.Decimal)
	for _, ob := range opening {
		totals[ob.AccountCode] = totals[ob.AccountCode].Add(ob.Balance)
	}
	for _, p := range postings {
		if !p.Date.After(from) || p.Date.After(cutoff) {
			continue
		}
		totals[p.AccountCode] = totals[p.AccountCode].Add(p.Signed())
	}
	return finish(company, cutoff, totals, chart, opts, nil), nil
}

func finish(company int, cutoff time.Time, totals map[string]decimal.Decimal, chart *accounts.Chart, opts Options, diags diag.List) *Result {
	res := &Result{CompanyID: company, Cutoff: cutoff, Total: decimal.Zero, Diagnostics: diags}

	codes := make([]string, 0, len(totals))
	for code, total := range totals {
		if total.IsZero() && !opts.KeepZero {
			continue
		}
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return model.CodeLess(codes[i], codes[j]) })

	for _, code := range codes {
		ob := model.OpeningBalance{
			CompanyID:   company,
			AccountCode: code,
			CutoffDate:  cutoff,
			Balance:     totals[code],
		}
		attach(&ob, chart, &res.Diagnostics)
		res.Balances = append(res.Balances, ob)
		res.Total = res.Total.Add(ob.Balance)
	}

	checkTotal(res, opts.Tolerance)
	return res
}

func attach(ob *model.OpeningBalance, chart *accounts.Chart, diags *diag.List) {
	acct, ok := chart.Get(ob.AccountCode)
	if !ok {
		ob.Path = ""
		diags.Add(diag.OrphanReferenceWarning, ob.CompanyID, ob.AccountCode,
			"balance %s on account missing from the chart", ob.Balance.StringFixed(2))
		return
	}
	ob.AccountName = acct.Name
	ob.ClassificationCode = acct.ClassificationCode
	ob.Group = acct.Group
	ob.Path = acct.Path
}

func checkTotal(res *Result, tolerance decimal.Decimal) {
	if res.Total.Abs().GreaterThan(tolerance) {
		res.Diagnostics.Add(diag.IntegrityWarning, res.CompanyID, "",
			"opening balances at %s sum to %s, expected 0 within %s",
			res.Cutoff.Format("2006-01-02"), res.Total.StringFixed(2), tolerance.String())
	}
}
