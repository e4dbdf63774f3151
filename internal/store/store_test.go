package store

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerport/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), DriverSQLite, MemoryDSN, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.UpsertCompany(ctx, model.Company{ID: 1, Name: "Acme"}))
	_, err := s.InsertAccounts(ctx, []model.RawAccount{
		{CompanyID: 1, Code: "10", Name: "Fornecedores", ClassificationCode: "2.1.01"},
		{CompanyID: 1, Code: "9", Name: "Caixa", ClassificationCode: "1.1.01", Status: model.StatusActive},
		{CompanyID: 2, Code: "1", Name: "Other"},
	})
	require.NoError(t, err)
	_, err = s.InsertEntries(ctx, []model.Entry{
		{CompanyID: 1, Number: 1, Date: date(2023, 12, 31), Amount: dec("100.10"), DebitAccount: "9", CreditAccount: "10", BatchID: "1"},
		{CompanyID: 1, Number: 2, Date: date(2024, 1, 10), Amount: dec("40"), DebitAccount: "10", CreditAccount: "0", BatchID: "2"},
		{CompanyID: 1, Number: 3, Date: date(2024, 1, 10), Amount: dec("40"), CreditAccount: "9", BatchID: "2", Origin: model.OriginZeroing},
		{CompanyID: 1, Number: 4, Date: date(2024, 2, 1), Amount: dec("5"), DebitAccount: "9", CreditAccount: "10", BatchID: "3"},
		{CompanyID: 2, Number: 1, Date: date(2024, 1, 1), Amount: dec("1"), DebitAccount: "1", CreditAccount: "1"},
	})
	require.NoError(t, err)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "x", nil)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestOpen_FileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")
	s, err := Open(context.Background(), DriverSQLite, path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopening runs the idempotent schema again.
	s, err = Open(context.Background(), DriverSQLite, path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestRebind(t *testing.T) {
	pg := &Store{driver: DriverPostgres}
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", pg.rebind("SELECT * FROM t WHERE a = ? AND b = ?"))

	lite := &Store{driver: DriverSQLite}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}

func TestCompanies(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertCompany(ctx, model.Company{ID: 2, Name: "Beta"}))
	require.NoError(t, s.UpsertCompany(ctx, model.Company{ID: 1, Name: "Acme"}))
	require.NoError(t, s.UpsertCompany(ctx, model.Company{ID: 2, Name: "Beta Ltda"}))

	got, err := s.Companies(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Company{{ID: 1, Name: "Acme"}, {ID: 2, Name: "Beta Ltda"}}, got)
}

func TestFetchChartOfAccounts(t *testing.T) {
	s := openMemory(t)
	seed(t, s)

	got, err := s.FetchChartOfAccounts(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "9", got[0].Code, "numeric-aware order")
	assert.Equal(t, "10", got[1].Code)
	assert.Equal(t, model.StatusActive, got[1].Status, "missing status stored as active")
	assert.Equal(t, "2.1.01", got[1].ClassificationCode)
}

func TestInsertAccounts_Upserts(t *testing.T) {
	s := openMemory(t)
	seed(t, s)
	ctx := context.Background()

	_, err := s.InsertAccounts(ctx, []model.RawAccount{{CompanyID: 1, Code: "9", Name: "Caixa Geral", Status: model.StatusInactive}})
	require.NoError(t, err)

	got, err := s.FetchChartOfAccounts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Caixa Geral", got[0].Name)
	assert.False(t, got[0].Active())
}

func TestFetchEntries(t *testing.T) {
	s := openMemory(t)
	seed(t, s)

	got, err := s.FetchEntries(context.Background(), 1, date(2024, 1, 1), date(2024, 1, 31))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].Number)
	assert.Equal(t, date(2024, 1, 10), got[0].Date)
	assert.True(t, dec("40").Equal(got[0].Amount))
	assert.False(t, got[0].HasCredit())
	assert.Equal(t, model.OriginZeroing, got[1].Origin)
}

func TestFetchPostings(t *testing.T) {
	s := openMemory(t)
	seed(t, s)
	ctx := context.Background()

	inRange, err := s.FetchPostings(ctx, 1, date(2024, 1, 10), date(2024, 2, 1))
	require.NoError(t, err)
	assert.Len(t, inRange, 4, "range is inclusive at both ends")

	until, err := s.FetchPostingsUntil(ctx, 1, date(2023, 12, 31))
	require.NoError(t, err)
	require.Len(t, until, 2)
	assert.Equal(t, model.SideDebit, until[0].Side)
	assert.Equal(t, "9", until[0].AccountCode)
	assert.True(t, dec("100.10").Equal(until[0].Amount))
	assert.Equal(t, model.SideCredit, until[1].Side)
}

func TestOpeningBalanceCache(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	cutoff := date(2023, 12, 31)

	empty, err := s.LoadOpeningBalances(ctx, 1, cutoff)
	require.NoError(t, err)
	assert.Empty(t, empty)

	first := []model.OpeningBalance{
		{AccountCode: "10", Balance: dec("-100.125")},
		{AccountCode: "9", Balance: dec("100.125")},
		{AccountCode: "11", Balance: dec("1")},
	}
	require.NoError(t, s.SaveOpeningBalances(ctx, 1, cutoff, first))

	second := first[:2]
	require.NoError(t, s.SaveOpeningBalances(ctx, 1, cutoff, second))

	got, err := s.LoadOpeningBalances(ctx, 1, cutoff)
	require.NoError(t, err)
	require.Len(t, got, 2, "save replaces the previous set")
	assert.Equal(t, "9", got[0].AccountCode)
	assert.Equal(t, "100.125", got[0].Balance.String(), "exact round trip")
	assert.Equal(t, cutoff, got[0].CutoffDate)
	assert.Equal(t, 1, got[0].CompanyID)

	other, err := s.LoadOpeningBalances(ctx, 1, date(2024, 12, 31))
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestInsertEntries_KeepsEveryLegOfAnEntry(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	legs := []model.Entry{
		{CompanyID: 1, Number: 1, Date: date(2024, 1, 15), Amount: dec("1000.00"), DebitAccount: "11", BatchID: "7"},
		{CompanyID: 1, Number: 1, Date: date(2024, 1, 15), Amount: dec("1000.00"), CreditAccount: "21", BatchID: "7"},
	}

	n, err := s.InsertEntries(ctx, legs)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Zero(t, legs[0].Line, "caller's slice is left alone")

	postings, err := s.FetchPostingsUntil(ctx, 1, date(2024, 1, 31))
	require.NoError(t, err)
	require.Len(t, postings, 2)
	assert.Equal(t, model.SideDebit, postings[0].Side)
	assert.Equal(t, "11", postings[0].AccountCode)
	assert.Equal(t, model.SideCredit, postings[1].Side)
	assert.Equal(t, "21", postings[1].AccountCode)

	// Loading the same extract again rewrites the same lines.
	_, err = s.InsertEntries(ctx, legs)
	require.NoError(t, err)
	entries, err := s.FetchEntries(ctx, 1, date(2024, 1, 1), date(2024, 1, 31))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Line)
	assert.Equal(t, 2, entries[1].Line)
}

func TestFetchChartOfAccounts_Kind(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	_, err := s.InsertAccounts(ctx, []model.RawAccount{{CompanyID: 1, Code: "21", Name: "Fornecedores", Kind: model.KindAnalytic}})
	require.NoError(t, err)

	got, err := s.FetchChartOfAccounts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.KindAnalytic, got[0].Kind)
	assert.Empty(t, got[0].TypeFlag)
}
