package statements

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerport/internal/accounts"
	"github.com/cleared-dev/ledgerport/internal/diag"
	"github.com/cleared-dev/ledgerport/internal/model"
)

// Period selects how the income statement splits its value columns.
type Period string

const (
	PeriodNone    Period = ""
	PeriodYear    Period = "year"
	PeriodQuarter Period = "quarter"
	PeriodMonth   Period = "month"
)

// Income statement row labels.
const (
	LabelTotalIncome   = "TOTAL INCOME"
	LabelTotalExpenses = "TOTAL EXPENSES"
	LabelResult        = "RESULT"
	ColumnTotal        = "TOTAL"
)

// ParsePeriod accepts "", "none", "year", "quarter" or "month".
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodNone, PeriodYear, PeriodQuarter, PeriodMonth:
		return p, nil
	case "none":
		return PeriodNone, nil
	default:
		return "", fmt.Errorf("unknown period %q (want year, quarter or month)", s)
	}
}

// Key returns the column label a date falls into.
func (p Period) Key(d time.Time) string {
	switch p {
	case PeriodYear:
		return d.Format("2006")
	case PeriodQuarter:
		return fmt.Sprintf("%d-Q%d", d.Year(), (int(d.Month())-1)/3+1)
	case PeriodMonth:
		return d.Format("2006-01")
	default:
		return ColumnTotal
	}
}

// IncomeStatement summarizes Income and Expenses movement over the given
// postings. Values are shown as the negated net debit, so revenue is
// positive and expenses negative; RESULT is their sum.
func IncomeStatement(company int, chart *accounts.Chart, postings []model.Posting, period Period) (*Table, diag.List) {
	cols := periodColumns(postings, period)
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		index[c] = i
	}
	n := len(cols)
	totalCol := n - 1

	movement := make(map[string][]decimal.Decimal)
	net := make(map[string]decimal.Decimal)
	for _, p := range postings {
		v, ok := movement[p.AccountCode]
		if !ok {
			v = zeros(n)
			movement[p.AccountCode] = v
		}
		shown := p.Signed().Neg()
		if period != PeriodNone {
			v[index[period.Key(p.Date)]] = v[index[period.Key(p.Date)]].Add(shown)
		}
		v[totalCol] = v[totalCol].Add(shown)
		net[p.AccountCode] = net[p.AccountCode].Add(p.Signed())
	}

	t := &Table{
		Title:        "Income Statement",
		TextColumns:  []string{"Account", "Code"},
		ValueColumns: cols,
	}
	diags := checkPlacement(company, chart, net, model.Category.IsIncomeStatement)

	result := zeros(n)
	for _, cat := range []model.Category{model.CategoryIncome, model.CategoryExpenses} {
		var accts []model.ClassifiedAccount
		for _, a := range chart.ByCategory(cat) {
			if v, ok := movement[a.Code]; ok && !allZero(v) {
				accts = append(accts, a)
			}
		}

		label := strings.ToUpper(string(cat))
		t.add(RowSection, []string{label, ""})
		total := zeros(n)
		sec := groupAccounts(accts)
		for _, g := range sec.groups {
			members := sec.byName[g]
			sub := zeros(n)
			for _, a := range members {
				addInto(sub, movement[a.Code])
			}
			if g != "" {
				t.add(RowGroup, []string{"  " + g, ""}, sub...)
			}
			for _, a := range members {
				t.add(RowAccount, []string{"    " + a.Name, a.Code}, movement[a.Code]...)
			}
			addInto(total, sub)
		}
		t.add(RowTotal, []string{"TOTAL " + label, ""}, total...)
		t.add(RowBlank, []string{"", ""})
		addInto(result, total)
	}
	t.add(RowGrand, []string{LabelResult, ""}, result...)
	return t, diags
}

// periodColumns returns the sorted period labels present in postings
// followed by TOTAL.
func periodColumns(postings []model.Posting, period Period) []string {
	if period == PeriodNone {
		return []string{ColumnTotal}
	}
	seen := make(map[string]bool)
	var cols []string
	for _, p := range postings {
		k := period.Key(p.Date)
		if !seen[k] {
			seen[k] = true
			cols = append(cols, k)
		}
	}
	sort.Strings(cols)
	return append(cols, ColumnTotal)
}
