package statements

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerport/internal/accounts"
	"github.com/cleared-dev/ledgerport/internal/classify"
	"github.com/cleared-dev/ledgerport/internal/diag"
	"github.com/cleared-dev/ledgerport/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func testChart(t *testing.T, extra ...model.RawAccount) *accounts.Chart {
	t.Helper()
	table, err := classify.ResolveModel(classify.ModelPadrao, nil)
	require.NoError(t, err)
	raw := []model.RawAccount{
		{CompanyID: 1, Code: "101", Name: "Caixa", ClassificationCode: "1.1.01"},
		{CompanyID: 1, Code: "102", Name: "Imoveis", ClassificationCode: "1.2.01"},
		{CompanyID: 1, Code: "201", Name: "Fornecedores", ClassificationCode: "2.1.01"},
		{CompanyID: 1, Code: "231", Name: "Capital Social", ClassificationCode: "2.3.01"},
		{CompanyID: 1, Code: "321", Name: "Aluguel", ClassificationCode: "3.2.01"},
		{CompanyID: 1, Code: "411", Name: "Vendas", ClassificationCode: "4.1.01"},
	}
	accts, _, err := accounts.NewMapper(table, accounts.DefaultOptions()).ProcessChart(append(raw, extra...))
	require.NoError(t, err)
	return accounts.NewChart(accts)
}

func entry(n int64, d time.Time, debit, credit, amount string) []model.Posting {
	e := model.Entry{CompanyID: 1, Number: n, Date: d, DebitAccount: debit, CreditAccount: credit, Amount: dec(amount)}
	return e.Postings()
}

func samplePostings() []model.Posting {
	var ps []model.Posting
	ps = append(ps, entry(1, date(2024, 1, 15), "101", "411", "1000")...)
	ps = append(ps, entry(2, date(2024, 2, 10), "321", "101", "300")...)
	ps = append(ps, entry(3, date(2024, 4, 5), "101", "411", "500")...)
	return ps
}

func labels(t *Table) []string {
	out := make([]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, r.Text[0])
	}
	return out
}

func value(t *testing.T, tbl *Table, label string, col int) decimal.Decimal {
	t.Helper()
	row, ok := tbl.Find(label)
	require.True(t, ok, "row %q not found", label)
	require.Greater(t, len(row.Values), col)
	return row.Values[col]
}

func TestBalanceSheet(t *testing.T) {
	chart := testChart(t)
	bal := map[string]decimal.Decimal{
		"101": dec("500"),
		"102": dec("300"),
		"201": dec("-200"),
		"231": dec("-500"),
	}

	tbl, diags := BalanceSheet(1, chart, bal, date(2024, 12, 31))
	assert.Empty(t, diags)
	assert.Equal(t, "Balance Sheet 2024-12-31", tbl.Title)

	assert.Equal(t, []string{
		"ASSETS",
		"  Ativo-Circulante",
		"    Caixa",
		"  Ativo-Nao-Circulante",
		"    Imoveis",
		"TOTAL ASSETS",
		"",
		"LIABILITIES",
		"  Passivo-Circulante",
		"    Fornecedores",
		"TOTAL LIABILITIES",
		"",
		"EQUITY",
		"  Patrimonio-Liquido",
		"    Capital Social",
		"TOTAL EQUITY",
		"",
		LabelTotalLiabilitiesEquity,
		LabelUnclosedResult,
	}, labels(tbl))

	assert.True(t, dec("800").Equal(value(t, tbl, "TOTAL ASSETS", 0)))
	assert.True(t, dec("500").Equal(value(t, tbl, "Ativo-Circulante", 0)))
	assert.True(t, dec("200").Equal(value(t, tbl, "TOTAL LIABILITIES", 0)), "liabilities are sign-inverted")
	assert.True(t, dec("700").Equal(value(t, tbl, LabelTotalLiabilitiesEquity, 0)))
	assert.True(t, dec("100").Equal(value(t, tbl, LabelUnclosedResult, 0)))
}

func TestBalanceSheet_ClosedHasNoResultRow(t *testing.T) {
	chart := testChart(t)
	bal := map[string]decimal.Decimal{"101": dec("500"), "231": dec("-500")}

	tbl, _ := BalanceSheet(1, chart, bal, date(2024, 12, 31))
	_, ok := tbl.Find(LabelUnclosedResult)
	assert.False(t, ok)
	assert.True(t, dec("0").Equal(value(t, tbl, "TOTAL LIABILITIES", 0)))
}

func TestBalanceSheet_Diagnostics(t *testing.T) {
	chart := testChart(t,
		model.RawAccount{CompanyID: 1, Code: "150", Name: "Adiantamento", ClassificationCode: "1.1.05", TypeFlag: "L"},
		model.RawAccount{CompanyID: 1, Code: "801", Name: "Memoria", ClassificationCode: "8.1"},
	)
	bal := map[string]decimal.Decimal{
		"101": dec("100"),
		"150": dec("-40"),
		"801": dec("10"),
		"999": dec("5"),
	}

	tbl, diags := BalanceSheet(7, chart, bal, date(2024, 12, 31))
	assert.Equal(t, 2, diags.Count(diag.ClassificationWarning))
	assert.Equal(t, 1, diags.Count(diag.OrphanReferenceWarning))
	assert.Equal(t, 7, orphan(t, diags).CompanyID)
	assert.Equal(t, "999", orphan(t, diags).Account)

	// The ambiguous account follows its type flag.
	assert.True(t, dec("40").Equal(value(t, tbl, "TOTAL LIABILITIES", 0)))
	assert.True(t, dec("100").Equal(value(t, tbl, "TOTAL ASSETS", 0)))
}

func TestIncomeStatement_Total(t *testing.T) {
	tbl, diags := IncomeStatement(1, testChart(t), samplePostings(), PeriodNone)
	assert.Empty(t, diags)
	assert.Equal(t, []string{ColumnTotal}, tbl.ValueColumns)

	assert.True(t, dec("1500").Equal(value(t, tbl, "Vendas", 0)))
	assert.True(t, dec("-300").Equal(value(t, tbl, "Aluguel", 0)))
	assert.True(t, dec("1500").Equal(value(t, tbl, LabelTotalIncome, 0)))
	assert.True(t, dec("-300").Equal(value(t, tbl, LabelTotalExpenses, 0)))
	assert.True(t, dec("1200").Equal(value(t, tbl, LabelResult, 0)))

	_, ok := tbl.Find("Caixa")
	assert.False(t, ok, "balance sheet accounts stay off the income statement")
}

func TestIncomeStatement_Periods(t *testing.T) {
	chart := testChart(t)

	monthly, _ := IncomeStatement(1, chart, samplePostings(), PeriodMonth)
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-04", ColumnTotal}, monthly.ValueColumns)
	row, ok := monthly.Find(LabelResult)
	require.True(t, ok)
	want := []string{"1000", "-300", "500", "1200"}
	for i, w := range want {
		assert.True(t, dec(w).Equal(row.Values[i]), "column %d: got %s", i, row.Values[i])
	}

	quarterly, _ := IncomeStatement(1, chart, samplePostings(), PeriodQuarter)
	assert.Equal(t, []string{"2024-Q1", "2024-Q2", ColumnTotal}, quarterly.ValueColumns)
	assert.True(t, dec("700").Equal(value(t, quarterly, LabelResult, 0)))

	yearly, _ := IncomeStatement(1, chart, samplePostings(), PeriodYear)
	assert.Equal(t, []string{"2024", ColumnTotal}, yearly.ValueColumns)
}

func TestParsePeriod(t *testing.T) {
	for in, want := range map[string]Period{"": PeriodNone, "none": PeriodNone, "Month": PeriodMonth, " year ": PeriodYear, "quarter": PeriodQuarter} {
		got, err := ParsePeriod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParsePeriod("week")
	assert.Error(t, err)
}

func orphan(t *testing.T, diags diag.List) diag.Diagnostic {
	t.Helper()
	for _, d := range diags {
		if d.Kind == diag.OrphanReferenceWarning {
			return d
		}
	}
	t.Fatal("no orphan diagnostic")
	return diag.Diagnostic{}
}

func TestBuildTrialBalance(t *testing.T) {
	chart := testChart(t)
	opening := map[string]decimal.Decimal{"101": dec("500"), "231": dec("-500")}
	postings := append(samplePostings(), entry(4, date(2024, 5, 1), "999", "101", "10")...)

	tb, diags := BuildTrialBalance(7, chart, opening, postings)
	assert.Equal(t, 1, diags.Count(diag.OrphanReferenceWarning))
	assert.Equal(t, 7, orphan(t, diags).CompanyID, "diagnostics name the company")
	assert.Equal(t, 0, diags.Count(diag.IntegrityWarning))

	var codes []string
	for _, l := range tb.Lines {
		codes = append(codes, l.Code)
	}
	assert.Equal(t, []string{"101", "102", "201", "231", "321", "411", "999"}, codes)

	caixa := tb.Lines[0]
	assert.True(t, dec("500").Equal(caixa.Opening))
	assert.True(t, dec("1500").Equal(caixa.Debits))
	assert.True(t, dec("310").Equal(caixa.Credits))
	assert.True(t, dec("1690").Equal(caixa.Closing))

	assert.True(t, tb.Lines[1].Closing.IsZero(), "untouched chart accounts are listed")
	assert.True(t, tb.Totals.Closing.IsZero())
	assert.True(t, tb.Totals.Debits.Equal(tb.Totals.Credits))

	tbl := tb.Table()
	assert.Len(t, tbl.Rows, len(tb.Lines)+1)
	assert.Equal(t, RowGrand, tbl.Rows[len(tbl.Rows)-1].Kind)
}

func TestMovements(t *testing.T) {
	chart := testChart(t)
	entries := []model.Entry{
		{Number: 3, Date: date(2024, 2, 1), BatchID: "10", DebitAccount: "321", CreditAccount: "101", Amount: dec("30"), History: "Aluguel"},
		{Number: 2, Date: date(2024, 1, 5), BatchID: "10", DebitAccount: "101", CreditAccount: "0", Amount: dec("20")},
		{Number: 1, Date: date(2024, 1, 5), BatchID: "9", CreditAccount: "411", Amount: dec("20")},
	}

	moves := Movements(chart, entries)
	require.Len(t, moves, 3)
	assert.Equal(t, int64(1), moves[0].EntryNumber, "batch 9 sorts before batch 10")
	assert.Equal(t, int64(2), moves[1].EntryNumber)
	assert.Equal(t, "", moves[1].CreditCode)
	assert.Equal(t, "Assets:Ativo-Circulante:Caixa", moves[1].DebitPath)
	assert.Equal(t, "Expenses:Despesas-Operacionais:Aluguel", moves[2].DebitPath)

	tbl := MovementsTable(moves)
	require.Len(t, tbl.Rows, 4)
	assert.Equal(t, "2024-01-05", tbl.Rows[0].Text[0])
	assert.Equal(t, "1", tbl.Rows[0].Text[1])

	last := tbl.Rows[3]
	assert.Equal(t, RowGrand, last.Kind)
	assert.Equal(t, LabelTotalMovements, last.Text[0])
	assert.Len(t, last.Text, len(tbl.TextColumns))
	assert.True(t, dec("70").Equal(last.Values[0]))

	empty := MovementsTable(nil)
	require.Len(t, empty.Rows, 1)
	assert.True(t, empty.Rows[0].Values[0].IsZero())
}

func TestChartOfAccounts(t *testing.T) {
	tbl := ChartOfAccounts(testChart(t), map[string]decimal.Decimal{"101": dec("12.5")})
	require.Len(t, tbl.Rows, 6)
	first := tbl.Rows[0]
	assert.Equal(t, []string{"101", "1.1.01", "Caixa", "Assets", "Assets:Ativo-Circulante:Caixa"}, first.Text)
	assert.True(t, dec("12.5").Equal(first.Values[0]))
	assert.True(t, tbl.Rows[1].Values[0].IsZero())
}
