package export

import (
	"fmt"
	"io"

	"github.com/cleared-dev/ledgerport/internal/balances"
	"github.com/cleared-dev/ledgerport/internal/csvio"
	"github.com/cleared-dev/ledgerport/internal/model"
)

// MapFileName is the account map written by the pipeline.
func MapFileName(company int) string {
	return fmt.Sprintf("mapa_beancount_%d.csv", company)
}

// OpeningTrialBalanceFileName names the opening trial balance for the day
// before the period start.
func OpeningTrialBalanceFileName(company int, dayBefore string) string {
	return fmt.Sprintf("balancete_abertura_%d_%s.csv", company, dayBefore)
}

// OpeningBalancesFileName names the opening balances file for a cutoff.
func OpeningBalancesFileName(company int, cutoff string) string {
	return fmt.Sprintf("saldos_abertura_%d_%s.csv", company, cutoff)
}

// LedgerFileName names the Beancount file for a period.
func LedgerFileName(company int, start, end string) string {
	return fmt.Sprintf("livro_%d_%s_%s.beancount", company, start, end)
}

// ReportFileName names the XLSX workbook for a period.
func ReportFileName(company int, start, end string) string {
	return fmt.Sprintf("relatorio_%d_%s_%s.xlsx", company, start, end)
}

// OpeningTrialBalanceHeader is the header of the opening trial balance CSV.
var OpeningTrialBalanceHeader = []string{"BC_ACCOUNT", "saldo"}

// WriteOpeningTrialBalance writes one path;balance row per non-orphan
// opening balance.
func WriteOpeningTrialBalance(w io.Writer, opening []model.OpeningBalance) error {
	cw := csvio.NewWriter(w)
	if err := cw.Write(OpeningTrialBalanceHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, b := range opening {
		if b.Orphan() {
			continue
		}
		if err := cw.Write([]string{b.Path, balances.FormatAmount(b.Balance)}); err != nil {
			return fmt.Errorf("writing balance %s: %w", b.AccountCode, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
