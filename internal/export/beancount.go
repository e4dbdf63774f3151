// Package export serializes computed accounts, balances and statements to
// Beancount, CSV and XLSX files.
package export

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerport/internal/accounts"
	"github.com/cleared-dev/ledgerport/internal/balances"
	"github.com/cleared-dev/ledgerport/internal/csvio"
	"github.com/cleared-dev/ledgerport/internal/diag"
	"github.com/cleared-dev/ledgerport/internal/journal"
	"github.com/cleared-dev/ledgerport/internal/model"
)

// Ledger defaults.
const (
	OpeningEquity = "Equity:Abertura"
	DefaultTitle  = "Contabilidade"
	postingWidth  = 60
)

// Ledger is everything needed to render one company's Beancount file.
type Ledger struct {
	CompanyID int
	Start     time.Time
	End       time.Time
	Currency  string
	Title     string
	Chart     *accounts.Chart
	Opening   []model.OpeningBalance
	Entries   []model.Entry
}

// WriteBeancount renders the ledger: header options, open directives for
// every used account, one opening transaction dated at Start, then one
// transaction per (batch, date). Batches whose debits and credits differ
// by more than the balance tolerance are skipped and reported.
func WriteBeancount(w io.Writer, l Ledger) (diag.List, error) {
	var diags diag.List
	var buf bytes.Buffer
	start := l.Start.Format(csvio.DateLayout)
	title := l.Title
	if title == "" {
		title = DefaultTitle
	}

	fmt.Fprintf(&buf, "; Company %d, period %s to %s\n", l.CompanyID, start, l.End.Format(csvio.DateLayout))
	fmt.Fprintf(&buf, "option \"operating_currency\" %q\n", l.Currency)
	fmt.Fprintf(&buf, "option \"title\" %q\n\n", title)

	used := map[string]bool{OpeningEquity: true}
	var opening []model.OpeningBalance
	for _, b := range l.Opening {
		if b.Orphan() {
			continue
		}
		used[b.Path] = true
		opening = append(opening, b)
	}
	for _, e := range l.Entries {
		for _, code := range []string{e.DebitAccount, e.CreditAccount} {
			if p := l.Chart.Path(strings.TrimSpace(code)); p != "" {
				used[p] = true
			}
		}
	}
	paths := make([]string, 0, len(used))
	for p := range used {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		fmt.Fprintf(&buf, "%s open %s %s\n", start, p, l.Currency)
	}
	buf.WriteString("\n")

	if len(opening) > 0 {
		dayBefore := l.Start.AddDate(0, 0, -1).Format(csvio.DateLayout)
		fmt.Fprintf(&buf, "%s * \"Abertura de saldos\" \"Saldo até %s\"\n", start, dayBefore)
		for _, b := range opening {
			writePosting(&buf, b.Path, b.Balance, l.Currency)
		}
		fmt.Fprintf(&buf, "  %s\n\n", OpeningEquity)
	}

	for _, batch := range journal.GroupBatches(l.Entries) {
		writeBatch(&buf, batch, l, &diags)
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return diags, fmt.Errorf("writing ledger: %w", err)
	}
	return diags, nil
}

func writePosting(buf *bytes.Buffer, path string, amount decimal.Decimal, currency string) {
	fmt.Fprintf(buf, "  %-*s %s %s\n", postingWidth, path, amount.StringFixed(2), currency)
}

func writeBatch(buf *bytes.Buffer, b journal.Batch, l Ledger, diags *diag.List) {
	debits := make(map[string]decimal.Decimal)
	credits := make(map[string]decimal.Decimal)
	var unmapped []string
	seen := make(map[string]bool)
	miss := func(code string) {
		if !seen[code] {
			seen[code] = true
			unmapped = append(unmapped, code)
		}
	}

	for _, e := range b.Entries {
		if e.HasDebit() {
			code := strings.TrimSpace(e.DebitAccount)
			if p := l.Chart.Path(code); p != "" {
				debits[p] = debits[p].Add(e.Amount)
			} else {
				miss(code)
			}
		}
		if e.HasCredit() {
			code := strings.TrimSpace(e.CreditAccount)
			if p := l.Chart.Path(code); p != "" {
				credits[p] = credits[p].Add(e.Amount)
			} else {
				miss(code)
			}
		}
	}
	if len(debits) == 0 && len(credits) == 0 {
		return
	}

	totalDebit, totalCredit := sum(debits), sum(credits)
	if totalDebit.Sub(totalCredit).Abs().GreaterThan(balances.DefaultTolerance) {
		msg := fmt.Sprintf("batch %s on %s is unbalanced: debits=%s, credits=%s",
			b.ID, b.Date.Format(csvio.DateLayout), totalDebit.StringFixed(2), totalCredit.StringFixed(2))
		if len(unmapped) > 0 {
			msg += "; unmapped accounts: " + strings.Join(unmapped, ", ")
		}
		diags.Add(diag.IntegrityWarning, l.CompanyID, "", "%s", msg)
		return
	}

	first := b.Entries[0]
	var meta []string
	if first.Document != "" {
		meta = append(meta, "Doc "+first.Document)
	}
	if b.ID != "" {
		meta = append(meta, "Lote "+b.ID)
	}
	if first.UserCode != "" {
		meta = append(meta, "Usu "+first.UserCode)
	}
	fmt.Fprintf(buf, "%s * \"%s\" \"%s\"\n", b.Date.Format(csvio.DateLayout), narration(first.History), narration(strings.Join(meta, " ")))
	for _, p := range sortedKeys(debits) {
		writePosting(buf, p, debits[p], l.Currency)
	}
	for _, p := range sortedKeys(credits) {
		writePosting(buf, p, credits[p].Neg(), l.Currency)
	}
	buf.WriteString("\n")
}

// narration flattens text into a single-line Beancount string body.
func narration(s string) string {
	s = strings.NewReplacer("\\n", " ", "\r", " ", "\n", " ", `"`, "'").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func sum(m map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range m {
		total = total.Add(v)
	}
	return total
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
