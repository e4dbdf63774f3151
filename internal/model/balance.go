package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpeningBalance is the signed balance of one account at a cutoff date.
// Positive means net debit.
type OpeningBalance struct {
	CompanyID   int
	AccountCode string
	CutoffDate  time.Time
	Balance     decimal.Decimal

	// Attached by the builder from the classified chart. Path is empty for
	// orphan accounts missing from the chart.
	AccountName        string
	ClassificationCode string
	Group              string
	Path               string
}

// Orphan reports whether the balance has no chart-of-accounts entry.
func (b OpeningBalance) Orphan() bool {
	return b.Path == ""
}
