package balances

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerport/internal/accounts"
	"github.com/cleared-dev/ledgerport/internal/diag"
	"github.com/cleared-dev/ledgerport/internal/model"
)

// Override is a previously computed balance set supplied in place of
// recomputation. It is an optimization, not a source of truth.
type Override struct {
	CompanyID int
	Cutoff    time.Time
	Balances  []model.OpeningBalance
}

// ApplyOverride adopts a cached set for (company, cutoff). Company or date
// mismatches are reported as integrity warnings; the set is still used.
// Paths are re-attached from chart so a stale map cannot leak through.
func ApplyOverride(company int, cutoff time.Time, o Override, chart *accounts.Chart, opts Options) *Result {
	var diags diag.List
	if o.CompanyID != 0 && o.CompanyID != company {
		diags.Add(diag.IntegrityWarning, company, "",
			"cached opening balances belong to company %d, not %d", o.CompanyID, company)
	}
	if !o.Cutoff.IsZero() && !sameDay(o.Cutoff, cutoff) {
		diags.Add(diag.IntegrityWarning, company, "",
			"cached opening balances are dated %s, expected %s", o.Cutoff.Format("2006-01-02"), cutoff.Format("2006-01-02"))
	}

	totals := make(map[string]decimal.Decimal, len(o.Balances))
	for _, b := range o.Balances {
		totals[b.AccountCode] = totals[b.AccountCode].Add(b.Balance)
	}
	return finish(company, cutoff, totals, chart, opts, diags)
}

// Cache stores computed balance sets keyed by (company, cutoff).
type Cache interface {
	LoadOpeningBalances(ctx context.Context, company int, cutoff time.Time) ([]model.OpeningBalance, error)
	SaveOpeningBalances(ctx context.Context, company int, cutoff time.Time, balances []model.OpeningBalance) error
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
