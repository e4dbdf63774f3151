package journal

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerport/internal/diag"
	"github.com/cleared-dev/ledgerport/internal/model"
)

// AccountChecker tests whether an account code exists in the chart of accounts.
type AccountChecker interface {
	Exists(code string) bool
}

// Validate checks postings and returns integrity and orphan diagnostics.
// Nothing is corrected. Checks:
//   - each entry's debits equal its credits
//   - each leg has a valid side and a non-negative amount with at most 2 decimals
//   - each account code exists in the chart (reported once per code)
func Validate(postings []model.Posting, accounts AccountChecker) diag.List {
	var diags diag.List
	diags.Extend(CheckBalance(postings))

	hundred := decimal.NewFromInt(100)
	type orphan struct{ company, count int }
	orphans := make(map[string]*orphan)
	for _, p := range postings {
		ref := fmt.Sprintf("entry %d", p.EntryNumber)

		if p.Side != model.SideDebit && p.Side != model.SideCredit {
			diags.Add(diag.IntegrityWarning, p.CompanyID, p.AccountCode, "%s: invalid side %q", ref, p.Side)
		}
		if p.Amount.IsNegative() {
			diags.Add(diag.IntegrityWarning, p.CompanyID, p.AccountCode, "%s: negative amount %s", ref, p.Amount)
		}
		scaled := p.Amount.Mul(hundred)
		if !scaled.Equal(scaled.Truncate(0)) {
			diags.Add(diag.IntegrityWarning, p.CompanyID, p.AccountCode, "%s: amount %s has more than 2 decimal places", ref, p.Amount)
		}
		if accounts != nil && !accounts.Exists(p.AccountCode) {
			o, ok := orphans[p.AccountCode]
			if !ok {
				o = &orphan{company: p.CompanyID}
				orphans[p.AccountCode] = o
			}
			o.count++
		}
	}

	codes := make([]string, 0, len(orphans))
	for code := range orphans {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		diags.Add(diag.OrphanReferenceWarning, orphans[code].company, code,
			"%d posting(s) reference an account missing from the chart", orphans[code].count)
	}
	return diags
}

// CheckBalance reports every entry whose debit total differs from its
// credit total. Entries are reported in ascending entry-number order.
func CheckBalance(postings []model.Posting) diag.List {
	type totals struct {
		company       int
		debit, credit decimal.Decimal
	}
	byEntry := make(map[int64]*totals)
	for _, p := range postings {
		t, ok := byEntry[p.EntryNumber]
		if !ok {
			t = &totals{company: p.CompanyID, debit: decimal.Zero, credit: decimal.Zero}
			byEntry[p.EntryNumber] = t
		}
		switch p.Side {
		case model.SideDebit:
			t.debit = t.debit.Add(p.Amount)
		case model.SideCredit:
			t.credit = t.credit.Add(p.Amount)
		}
	}

	numbers := make([]int64, 0, len(byEntry))
	for n := range byEntry {
		numbers = append(numbers, n)
	}
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })

	var diags diag.List
	for _, n := range numbers {
		t := byEntry[n]
		if !t.debit.Equal(t.credit) {
			diags.Add(diag.IntegrityWarning, t.company, "",
				"entry %d: debits (%s) != credits (%s)", n, t.debit.StringFixed(2), t.credit.StringFixed(2))
		}
	}
	return diags
}

// ExcludeOrigin drops entries with the given origin, returning the kept
// entries and how many were dropped.
func ExcludeOrigin(entries []model.Entry, origin int) ([]model.Entry, int) {
	kept := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Origin == origin {
			continue
		}
		kept = append(kept, e)
	}
	return kept, len(entries) - len(kept)
}
