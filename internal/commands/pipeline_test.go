package commands_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/ledgerport/internal/config"
	"github.com/cleared-dev/ledgerport/internal/diag"
	"github.com/cleared-dev/ledgerport/internal/export"
	"github.com/cleared-dev/ledgerport/internal/runlog"
)

const accountsCSV = `CODI_CTA;NOME_CTA;CLAS_CTA;TIPO_CTA;SITUACAO_CTA
1;Caixa;1.1.01;A;A
2;Fornecedores;2.1.01;A;A
3;Capital Social;2.3.01;A;A
4;Receita de Vendas;4.1.01;A;A
5;Despesas Gerais;3.2.01;A;A
`

const entriesCSV = `nume_lan;data_lan;vlor_lan;cdeb_lan;ccre_lan;chis_lan;ndoc_lan;codi_lote
1;2023-12-15;1000.00;1;3;Integralizacao de capital;D1;L1
2;2024-01-10;500.00;1;4;Venda a vista;D2;L2
3;2024-01-20;200.00;5;1;Despesa geral;D3;L3
`

// setupProject initializes a project for company 7 and ingests the sample
// chart and entries. It returns the project dir and the config path.
func setupProject(t *testing.T, entries string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	_, err := runLedgerport(t, "init", dir, "--company", "7", "--company-name", "Acme")
	require.NoError(t, err)

	accts := filepath.Join(dir, "plano.csv")
	require.NoError(t, os.WriteFile(accts, []byte(accountsCSV), 0o644))
	ents := filepath.Join(dir, "lancamentos.csv")
	require.NoError(t, os.WriteFile(ents, []byte(entries), 0o644))

	cfgPath := filepath.Join(dir, config.FileName)
	out, err := runLedgerport(t, "--config", cfgPath, "ingest", "--accounts", accts, "--entries", ents)
	require.NoError(t, err)
	assert.Contains(t, out, "accounts")
	assert.Contains(t, out, "entries")
	return dir, cfgPath
}

func TestPipeline(t *testing.T) {
	dir, cfgPath := setupProject(t, entriesCSV)

	out, err := runLedgerport(t, "--config", cfgPath, "pipeline", "--start", "2024-01-01", "--end", "2024-01-31")
	require.NoError(t, err)
	assert.Contains(t, out, "5 accounts, 2 entries")

	outDir := filepath.Join(dir, "output")
	for _, name := range []string{
		export.MapFileName(7),
		export.OpeningTrialBalanceFileName(7, "2023-12-31"),
		export.LedgerFileName(7, "2024-01-01", "2024-01-31"),
	} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, "%s should exist", name)
	}

	ledger, err := os.ReadFile(filepath.Join(outDir, export.LedgerFileName(7, "2024-01-01", "2024-01-31")))
	require.NoError(t, err)
	text := string(ledger)
	assert.Contains(t, text, export.OpeningEquity)
	assert.Contains(t, text, `2024-01-10 * "Venda a vista"`)
	assert.Contains(t, text, `2024-01-20 * "Despesa geral"`)
	assert.NotContains(t, text, "Integralizacao", "entries before the period only feed opening balances")

	entries, err := runlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "ingest", entries[0].Command)
	assert.Equal(t, "pipeline", entries[1].Command)
	assert.Equal(t, 7, entries[1].CompanyID)
	assert.Equal(t, "2024-01-01 to 2024-01-31", entries[1].Details)
}

func TestPipeline_Zeroing(t *testing.T) {
	withZeroing := `nume_lan;data_lan;vlor_lan;cdeb_lan;ccre_lan;chis_lan;codi_lote;orig_lan
1;2024-01-10;500.00;1;4;Venda a vista;L2;1
2;2024-01-31;500.00;4;3;Zeramento;L9;2
`
	_, cfgPath := setupProject(t, withZeroing)

	out, err := runLedgerport(t, "--config", cfgPath, "pipeline", "--start", "2024-01-01", "--end", "2024-01-31")
	require.NoError(t, err)
	assert.Contains(t, out, "5 accounts, 1 entries")

	out, err = runLedgerport(t, "--config", cfgPath, "pipeline", "--start", "2024-01-01", "--end", "2024-01-31", "--include-zeroing")
	require.NoError(t, err)
	assert.Contains(t, out, "5 accounts, 2 entries")
}

func TestPipeline_BadPeriod(t *testing.T) {
	_, cfgPath := setupProject(t, entriesCSV)
	_, err := runLedgerport(t, "--config", cfgPath, "pipeline", "--start", "2024-02-01", "--end", "2024-01-31")
	var verr *diag.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestPipeline_Strict(t *testing.T) {
	withOrphan := entriesCSV + "4;2024-01-25;50.00;99;1;Conta inexistente;D4;L4\n"
	dir, cfgPath := setupProject(t, withOrphan)

	_, err := runLedgerport(t, "--config", cfgPath, "pipeline", "--start", "2024-01-01", "--end", "2024-01-31")
	require.NoError(t, err, "diagnostics alone do not fail a run")

	_, err = runLedgerport(t, "--config", cfgPath, "--strict", "pipeline", "--start", "2024-01-01", "--end", "2024-01-31")
	var strictErr *diag.StrictError
	require.True(t, errors.As(err, &strictErr))
	assert.NotZero(t, strictErr.Diagnostics.Count(diag.OrphanReferenceWarning))

	_, err = os.Stat(filepath.Join(dir, "output", export.LedgerFileName(7, "2024-01-01", "2024-01-31")))
	assert.NoError(t, err, "outputs are written before strict mode fails")
}

func TestOpeningBalances(t *testing.T) {
	dir, cfgPath := setupProject(t, entriesCSV)
	outDir := filepath.Join(dir, "output")

	out, err := runLedgerport(t, "--config", cfgPath, "opening-balances", "--cutoff", "2023-12-31")
	require.NoError(t, err)
	assert.Contains(t, out, "2 balances, total 0.00")

	base := filepath.Join(outDir, export.OpeningBalancesFileName(7, "2023-12-31"))
	data, err := os.ReadFile(base)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1000.00")
	assert.Contains(t, string(data), "-1000.00")

	_, err = runLedgerport(t, "--config", cfgPath, "opening-balances",
		"--cutoff", "2024-01-31", "--from-balances", "2023-12-31", "--balances-csv", base)
	require.NoError(t, err)

	rolled, err := os.ReadFile(filepath.Join(outDir, export.OpeningBalancesFileName(7, "2024-01-31")))
	require.NoError(t, err)
	var caixa string
	for _, line := range strings.Split(string(rolled), "\n") {
		if strings.HasPrefix(line, "1;") {
			caixa = line
		}
	}
	assert.Contains(t, caixa, ";1300.00;")
}

func TestOpeningBalances_LegExtract(t *testing.T) {
	legs := "7;1;20231215;L1;1;;Integralizacao;D1;ana;D;1;1.000,00\n" +
		"7;1;20231215;L1;1;;Integralizacao;D1;ana;C;3;1.000,00\n"
	_, cfgPath := setupProject(t, legs)

	out, err := runLedgerport(t, "--config", cfgPath, "opening-balances", "--cutoff", "2023-12-31")
	require.NoError(t, err)
	assert.Contains(t, out, "2 balances, total 0.00, 0 diagnostics")
}

func TestOpeningBalances_RollForwardOrder(t *testing.T) {
	dir, cfgPath := setupProject(t, entriesCSV)
	_, err := runLedgerport(t, "--config", cfgPath, "opening-balances", "--cutoff", "2023-12-31")
	require.NoError(t, err)
	base := filepath.Join(dir, "output", export.OpeningBalancesFileName(7, "2023-12-31"))

	_, err = runLedgerport(t, "--config", cfgPath, "opening-balances",
		"--cutoff", "2023-12-31", "--from-balances", "2023-12-31", "--balances-csv", base)
	var verr *diag.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestReport(t *testing.T) {
	dir, cfgPath := setupProject(t, entriesCSV)

	out, err := runLedgerport(t, "--config", cfgPath, "report", "--start", "2024-01-01", "--end", "2024-01-31", "--period", "month")
	require.NoError(t, err)
	path := filepath.Join(dir, "output", export.ReportFileName(7, "2024-01-01", "2024-01-31"))
	assert.Contains(t, out, path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{
		export.SheetChart,
		export.SheetBalanceSheet,
		export.SheetIncomeStatement,
		export.SheetMovements,
		export.SheetTrialBalance,
	}, f.GetSheetList())

	_, err = runLedgerport(t, "--config", cfgPath, "report", "--start", "2024-01-01", "--end", "2024-01-31", "--period", "week")
	assert.Error(t, err)
}

func TestIngest_ImportDir(t *testing.T) {
	dir := t.TempDir()
	_, err := runLedgerport(t, "init", dir, "--company", "7")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "accounts_2024.csv"), []byte(accountsCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "notes.csv"), []byte("x;y\n"), 0o644))

	out, err := runLedgerport(t, "--config", filepath.Join(dir, config.FileName), "ingest")
	require.NoError(t, err)
	assert.Contains(t, out, "accounts_2024.csv")

	_, err = os.Stat(filepath.Join(dir, "import", "processed", "accounts_2024.csv"))
	assert.NoError(t, err, "loaded file moves to processed/")
	_, err = os.Stat(filepath.Join(dir, "import", "notes.csv"))
	assert.NoError(t, err, "unknown files stay in place")
}
