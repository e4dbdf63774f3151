// Package statements turns classified balances and postings into
// presentation tables: balance sheet, income statement, trial balance and
// period movements.
package statements

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerport/internal/classify"
	"github.com/cleared-dev/ledgerport/internal/model"
)

// RowKind tells renderers how to style a row.
type RowKind string

const (
	RowSection  RowKind = "section"
	RowGroup    RowKind = "group"
	RowAccount  RowKind = "account"
	RowTotal    RowKind = "total"
	RowGrand    RowKind = "grand-total"
	RowBlank    RowKind = "blank"
	RowDetail   RowKind = "detail"
	RowSubtotal RowKind = "subtotal"
)

// Row is one presentation line: leading text cells, then numeric cells.
type Row struct {
	Kind   RowKind           `json:"kind"`
	Text   []string          `json:"text"`
	Values []decimal.Decimal `json:"values"`
}

// Table is a presentation-ready statement.
type Table struct {
	Title        string   `json:"title"`
	TextColumns  []string `json:"text_columns"`
	ValueColumns []string `json:"value_columns"`
	Rows         []Row    `json:"rows"`
}

func (t *Table) add(kind RowKind, text []string, values ...decimal.Decimal) {
	t.Rows = append(t.Rows, Row{Kind: kind, Text: text, Values: values})
}

// Find returns the first row whose first text cell equals label.
func (t *Table) Find(label string) (Row, bool) {
	for _, r := range t.Rows {
		if len(r.Text) > 0 && strings.TrimSpace(r.Text[0]) == label {
			return r, true
		}
	}
	return Row{}, false
}

// subgroup returns the path segment between the category and the leaf, or
// "" for flat paths.
func subgroup(a model.ClassifiedAccount) string {
	segs := strings.Split(a.Path, ":")
	if len(segs) < 3 {
		return ""
	}
	return segs[1]
}

// sortByClassification orders accounts by normalized classification code,
// then account code.
func sortByClassification(accts []model.ClassifiedAccount) {
	sort.SliceStable(accts, func(i, j int) bool {
		ci, cj := classify.NormalizeCode(accts[i].ClassificationCode), classify.NormalizeCode(accts[j].ClassificationCode)
		if ci != cj {
			return classLess(ci, cj)
		}
		return model.CodeLess(accts[i].Code, accts[j].Code)
	})
}

// classLess compares classification codes as hierarchical prefixes: "11"
// sorts before "1101" and "12".
func classLess(a, b string) bool {
	if a == "" || b == "" {
		return a != "" && b == ""
	}
	return a < b
}

type section struct {
	groups []string
	byName map[string][]model.ClassifiedAccount
}

// groupAccounts buckets accounts by subgroup, ordering subgroups by their
// first account's classification.
func groupAccounts(accts []model.ClassifiedAccount) section {
	sortByClassification(accts)
	s := section{byName: make(map[string][]model.ClassifiedAccount)}
	for _, a := range accts {
		g := subgroup(a)
		if _, ok := s.byName[g]; !ok {
			s.groups = append(s.groups, g)
		}
		s.byName[g] = append(s.byName[g], a)
	}
	return s
}

func zeros(n int) []decimal.Decimal {
	out := make([]decimal.Decimal, n)
	for i := range out {
		out[i] = decimal.Zero
	}
	return out
}

func addInto(dst, src []decimal.Decimal) {
	for i := range dst {
		dst[i] = dst[i].Add(src[i])
	}
}

func allZero(vals []decimal.Decimal) bool {
	for _, v := range vals {
		if !v.IsZero() {
			return false
		}
	}
	return true
}
