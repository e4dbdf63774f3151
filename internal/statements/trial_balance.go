package statements

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerport/internal/accounts"
	"github.com/cleared-dev/ledgerport/internal/balances"
	"github.com/cleared-dev/ledgerport/internal/diag"
	"github.com/cleared-dev/ledgerport/internal/model"
)

// TrialBalanceLine is one account's opening, period movement and closing
// balance. Closing = Opening + Debits - Credits.
type TrialBalanceLine struct {
	Code               string          `json:"code"`
	Name               string          `json:"name"`
	ClassificationCode string          `json:"classification_code"`
	Path               string          `json:"path"`
	Opening            decimal.Decimal `json:"opening"`
	Debits             decimal.Decimal `json:"debits"`
	Credits            decimal.Decimal `json:"credits"`
	Closing            decimal.Decimal `json:"closing"`
}

// TrialBalance lists every chart account plus any orphan codes.
type TrialBalance struct {
	Lines  []TrialBalanceLine `json:"lines"`
	Totals TrialBalanceLine   `json:"totals"`
}

// BuildTrialBalance combines opening balances with the period's postings.
// Chart accounts come first in classification order; orphan codes follow in
// code order, each reported once.
func BuildTrialBalance(company int, chart *accounts.Chart, opening map[string]decimal.Decimal, postings []model.Posting) (*TrialBalance, diag.List) {
	lines := make(map[string]*TrialBalanceLine)
	line := func(code string) *TrialBalanceLine {
		l, ok := lines[code]
		if !ok {
			l = &TrialBalanceLine{Code: code}
			lines[code] = l
		}
		return l
	}

	accts := append([]model.ClassifiedAccount(nil), chart.All()...)
	sortByClassification(accts)
	for _, a := range accts {
		l := line(a.Code)
		l.Name = a.Name
		l.ClassificationCode = a.ClassificationCode
		l.Path = a.Path
	}
	for code, v := range opening {
		l := line(code)
		l.Opening = l.Opening.Add(v)
	}
	for _, p := range postings {
		l := line(p.AccountCode)
		if p.Side == model.SideDebit {
			l.Debits = l.Debits.Add(p.Amount)
		} else {
			l.Credits = l.Credits.Add(p.Amount)
		}
	}

	var orphans []string
	for code := range lines {
		if !chart.Exists(code) {
			orphans = append(orphans, code)
		}
	}
	sort.Slice(orphans, func(i, j int) bool { return model.CodeLess(orphans[i], orphans[j]) })

	var diags diag.List
	tb := &TrialBalance{}
	order := make([]string, 0, len(lines))
	for _, a := range accts {
		order = append(order, a.Code)
	}
	order = append(order, orphans...)
	for _, code := range order {
		l := lines[code]
		l.Closing = l.Opening.Add(l.Debits).Sub(l.Credits)
		tb.Lines = append(tb.Lines, *l)
		tb.Totals.Opening = tb.Totals.Opening.Add(l.Opening)
		tb.Totals.Debits = tb.Totals.Debits.Add(l.Debits)
		tb.Totals.Credits = tb.Totals.Credits.Add(l.Credits)
		tb.Totals.Closing = tb.Totals.Closing.Add(l.Closing)
	}
	for _, code := range orphans {
		diags.Add(diag.OrphanReferenceWarning, company, code, "account referenced by balances or postings is missing from the chart")
	}
	tb.Totals.Name = "TOTAL"
	if !tb.Totals.Closing.Abs().LessThanOrEqual(balances.DefaultTolerance) {
		diags.Add(diag.IntegrityWarning, company, "", "trial balance closes at %s, expected 0", tb.Totals.Closing.StringFixed(2))
	}
	return tb, diags
}

// Table renders the trial balance for export.
func (tb *TrialBalance) Table() *Table {
	t := &Table{
		Title:        "Trial Balance",
		TextColumns:  []string{"Code", "Account", "Classification"},
		ValueColumns: []string{"Opening", "Debits", "Credits", "Closing"},
	}
	for _, l := range tb.Lines {
		t.add(RowDetail, []string{l.Code, l.Name, l.ClassificationCode}, l.Opening, l.Debits, l.Credits, l.Closing)
	}
	t.add(RowGrand, []string{"", tb.Totals.Name, ""}, tb.Totals.Opening, tb.Totals.Debits, tb.Totals.Credits, tb.Totals.Closing)
	return t
}
