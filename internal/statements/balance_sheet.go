package statements

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerport/internal/accounts"
	"github.com/cleared-dev/ledgerport/internal/diag"
	"github.com/cleared-dev/ledgerport/internal/model"
)

// Balance sheet row labels.
const (
	LabelTotalLiabilitiesEquity = "TOTAL LIABILITIES AND EQUITY"
	LabelUnclosedResult         = "UNCLOSED RESULT"
)

// BalanceSheet lays out Assets, Liabilities and Equity balances as of a
// date. Balances are signed net debits; Liabilities and Equity are shown
// sign-inverted. An UNCLOSED RESULT row carries any difference, which is
// the period result not yet closed into equity.
func BalanceSheet(company int, chart *accounts.Chart, balances map[string]decimal.Decimal, asOf time.Time) (*Table, diag.List) {
	t := &Table{
		Title:        "Balance Sheet " + asOf.Format("2006-01-02"),
		TextColumns:  []string{"Account", "Code"},
		ValueColumns: []string{"Balance"},
	}
	diags := checkPlacement(company, chart, balances, model.Category.IsBalanceSheet)

	totals := make(map[model.Category]decimal.Decimal)
	for _, cat := range []model.Category{model.CategoryAssets, model.CategoryLiabilities, model.CategoryEquity} {
		sign := decimal.NewFromInt(1)
		if cat != model.CategoryAssets {
			sign = sign.Neg()
		}

		var accts []model.ClassifiedAccount
		for _, a := range chart.ByCategory(cat) {
			if b, ok := balances[a.Code]; ok && !b.IsZero() {
				accts = append(accts, a)
			}
		}

		label := strings.ToUpper(string(cat))
		t.add(RowSection, []string{label, ""})
		total := decimal.Zero
		sec := groupAccounts(accts)
		for _, g := range sec.groups {
			members := sec.byName[g]
			sub := decimal.Zero
			for _, a := range members {
				sub = sub.Add(balances[a.Code].Mul(sign))
			}
			if g != "" {
				t.add(RowGroup, []string{"  " + g, ""}, sub)
			}
			for _, a := range members {
				t.add(RowAccount, []string{"    " + a.Name, a.Code}, balances[a.Code].Mul(sign))
			}
			total = total.Add(sub)
		}
		t.add(RowTotal, []string{"TOTAL " + label, ""}, total)
		t.add(RowBlank, []string{"", ""})
		totals[cat] = total
	}

	liabEquity := totals[model.CategoryLiabilities].Add(totals[model.CategoryEquity])
	t.add(RowGrand, []string{LabelTotalLiabilitiesEquity, ""}, liabEquity)
	if diff := totals[model.CategoryAssets].Sub(liabEquity); !diff.IsZero() {
		t.add(RowSubtotal, []string{LabelUnclosedResult, ""}, diff)
	}
	return t, diags
}

// checkPlacement reports accounts with a non-zero amount that cannot be
// placed unambiguously in the statement selected by in.
func checkPlacement(company int, chart *accounts.Chart, amounts map[string]decimal.Decimal, in func(model.Category) bool) diag.List {
	codes := make([]string, 0, len(amounts))
	for code, v := range amounts {
		if !v.IsZero() {
			codes = append(codes, code)
		}
	}
	sort.Slice(codes, func(i, j int) bool { return model.CodeLess(codes[i], codes[j]) })

	var diags diag.List
	for _, code := range codes {
		a, ok := chart.Get(code)
		switch {
		case !ok:
			diags.Add(diag.OrphanReferenceWarning, company, code, "amount %s on account missing from the chart; excluded", amounts[code].StringFixed(2))
		case a.Category == model.CategoryUnclassified:
			diags.Add(diag.ClassificationWarning, a.CompanyID, code, "unclassified account with amount %s excluded", amounts[code].StringFixed(2))
		case a.Ambiguous && (in(a.Category) || in(a.CodeCategory)):
			diags.Add(diag.ClassificationWarning, a.CompanyID, code,
				"ambiguous classification: type flag says %s, code says %s; shown as %s", a.Category, a.CodeCategory, a.Category)
		}
	}
	return diags
}
