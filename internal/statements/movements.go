package statements

import (
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerport/internal/accounts"
	"github.com/cleared-dev/ledgerport/internal/csvio"
	"github.com/cleared-dev/ledgerport/internal/model"
)

// Movement is one source entry with its accounts resolved to paths.
type Movement struct {
	Date        time.Time       `json:"date"`
	EntryNumber int64           `json:"entry_number"`
	BatchID     string          `json:"batch_id"`
	DebitCode   string          `json:"debit_code,omitempty"`
	DebitPath   string          `json:"debit_path,omitempty"`
	CreditCode  string          `json:"credit_code,omitempty"`
	CreditPath  string          `json:"credit_path,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	History     string          `json:"history"`
	Document    string          `json:"document,omitempty"`
}

// Movements lists entries by date, then batch, then entry number.
func Movements(chart *accounts.Chart, entries []model.Entry) []Movement {
	sorted := append([]model.Entry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.BatchID != b.BatchID {
			return model.CodeLess(a.BatchID, b.BatchID)
		}
		return a.Number < b.Number
	})

	out := make([]Movement, 0, len(sorted))
	for _, e := range sorted {
		m := Movement{
			Date:        e.Date,
			EntryNumber: e.Number,
			BatchID:     e.BatchID,
			Amount:      e.Amount,
			History:     e.History,
			Document:    e.Document,
		}
		if e.HasDebit() {
			m.DebitCode = e.DebitAccount
			m.DebitPath = chart.Path(e.DebitAccount)
		}
		if e.HasCredit() {
			m.CreditCode = e.CreditAccount
			m.CreditPath = chart.Path(e.CreditAccount)
		}
		out = append(out, m)
	}
	return out
}

// LabelTotalMovements heads the movements grand-total row.
const LabelTotalMovements = "TOTAL"

// MovementsTable renders movements for export, closing with the amount total.
func MovementsTable(moves []Movement) *Table {
	t := &Table{
		Title:        "Movements",
		TextColumns:  []string{"Date", "Entry", "Batch", "Debit Code", "Debit Account", "Credit Code", "Credit Account", "History", "Document"},
		ValueColumns: []string{"Amount"},
	}
	total := decimal.Zero
	for _, m := range moves {
		t.add(RowDetail, []string{
			m.Date.Format(csvio.DateLayout),
			strconv.FormatInt(m.EntryNumber, 10),
			m.BatchID,
			m.DebitCode, m.DebitPath,
			m.CreditCode, m.CreditPath,
			m.History, m.Document,
		}, m.Amount)
		total = total.Add(m.Amount)
	}
	t.add(RowGrand, []string{LabelTotalMovements, "", "", "", "", "", "", "", ""}, total)
	return t
}
