package statements

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerport/internal/accounts"
	"github.com/cleared-dev/ledgerport/internal/model"
)

// ChartOfAccounts lists every account in classification order with its
// closing balance.
func ChartOfAccounts(chart *accounts.Chart, closing map[string]decimal.Decimal) *Table {
	t := &Table{
		Title:        "Chart of Accounts",
		TextColumns:  []string{"Code", "Classification", "Name", "Category", "Path"},
		ValueColumns: []string{"Balance"},
	}
	accts := append([]model.ClassifiedAccount(nil), chart.All()...)
	sortByClassification(accts)
	for _, a := range accts {
		bal := closing[a.Code]
		t.add(RowDetail, []string{a.Code, a.ClassificationCode, a.Name, string(a.Category), a.Path}, bal)
	}
	return t
}
