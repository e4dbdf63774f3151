package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Side marks a posting leg as debit or credit.
type Side string

const (
	SideDebit  Side = "D"
	SideCredit Side = "C"
)

// OriginZeroing marks entries generated by the source system's period-end
// zeroing of result accounts.
const OriginZeroing = 2

// Posting is one signed leg of a journal entry. Amount is always a
// non-negative magnitude; the sign comes from Side.
type Posting struct {
	CompanyID   int
	EntryNumber int64
	Date        time.Time
	BatchID     string
	Side        Side
	AccountCode string
	Amount      decimal.Decimal
	Origin      int
}

// Signed returns +Amount for debits and -Amount for credits.
func (p Posting) Signed() decimal.Decimal {
	if p.Side == SideCredit {
		return p.Amount.Neg()
	}
	return p.Amount
}

// Entry is one source journal line. A line names a debit account, a credit
// account, or both, for a single amount. Several lines may share an entry
// number; Line tells them apart.
type Entry struct {
	CompanyID     int
	Number        int64
	Line          int
	Date          time.Time
	Amount        decimal.Decimal
	DebitAccount  string
	CreditAccount string
	HistoryCode   string
	History       string
	Document      string
	BatchID       string
	UserCode      string
	Origin        int
}

// HasDebit reports whether the line carries a debit leg.
func (e Entry) HasDebit() bool { return accountPresent(e.DebitAccount) }

// HasCredit reports whether the line carries a credit leg.
func (e Entry) HasCredit() bool { return accountPresent(e.CreditAccount) }

// Postings expands the line into at most two legs.
func (e Entry) Postings() []Posting {
	var legs []Posting
	base := Posting{
		CompanyID:   e.CompanyID,
		EntryNumber: e.Number,
		Date:        e.Date,
		BatchID:     e.BatchID,
		Amount:      e.Amount,
		Origin:      e.Origin,
	}
	if e.HasDebit() {
		leg := base
		leg.Side = SideDebit
		leg.AccountCode = strings.TrimSpace(e.DebitAccount)
		legs = append(legs, leg)
	}
	if e.HasCredit() {
		leg := base
		leg.Side = SideCredit
		leg.AccountCode = strings.TrimSpace(e.CreditAccount)
		legs = append(legs, leg)
	}
	return legs
}

// ExpandEntries flattens entry lines into postings, preserving order.
func ExpandEntries(entries []Entry) []Posting {
	postings := make([]Posting, 0, len(entries)*2)
	for _, e := range entries {
		postings = append(postings, e.Postings()...)
	}
	return postings
}

// NumberLines sets Line on entries that have none, counting up within each
// (company, entry number) in slice order after any line already set.
func NumberLines(entries []Entry) {
	type key struct {
		company int
		number  int64
	}
	last := make(map[key]int)
	for _, e := range entries {
		k := key{e.CompanyID, e.Number}
		last[k] = max(last[k], e.Line)
	}
	for i := range entries {
		if entries[i].Line != 0 {
			continue
		}
		k := key{entries[i].CompanyID, entries[i].Number}
		last[k]++
		entries[i].Line = last[k]
	}
}

// "0" is the source system's placeholder for an absent side.
func accountPresent(code string) bool {
	code = strings.TrimSpace(code)
	return code != "" && code != "0"
}
