package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerport/internal/model"
)

type mockSink struct {
	companies []model.Company
	accounts  []model.RawAccount
	entries   []model.Entry
	balances  map[int][]model.OpeningBalance
	cutoff    time.Time
	err       error
}

func (m *mockSink) UpsertCompany(_ context.Context, c model.Company) error {
	if m.err != nil {
		return m.err
	}
	m.companies = append(m.companies, c)
	return nil
}

func (m *mockSink) InsertAccounts(_ context.Context, accts []model.RawAccount) (int, error) {
	m.accounts = append(m.accounts, accts...)
	return len(accts), m.err
}

func (m *mockSink) InsertEntries(_ context.Context, entries []model.Entry) (int, error) {
	m.entries = append(m.entries, entries...)
	return len(entries), m.err
}

func (m *mockSink) SaveOpeningBalances(_ context.Context, company int, cutoff time.Time, b []model.OpeningBalance) error {
	if m.balances == nil {
		m.balances = make(map[int][]model.OpeningBalance)
	}
	m.balances[company] = b
	m.cutoff = cutoff
	return m.err
}

const (
	accountsCSV = "CODI_EMP;CODI_CTA;NOME_CTA;CLAS_CTA;TIPO_CTA;SITUACAO_CTA\n1;11;Caixa;1.1.01;A;A\n1;21;Fornecedores;2.1.01;A;A\n"
	entriesCSV  = "codi_emp;nume_lan;data_lan;vlor_lan;cdeb_lan;ccre_lan;codi_his;chis_lan;ndoc_lan;codi_lote;codi_usu;orig_lan\n1;1;2024-01-02;10,00;11;21;;Compra;;1;;1\n"
	balancesCSV = "conta;NOME_CTA;BC_GROUP;saldo;CLAS_CTA;BC_ACCOUNT;empresa;data_corte\n" +
		"11;Caixa;Assets:Ativo-Circulante;100.00;1.1.01;Assets:Ativo-Circulante:Caixa;7;2023-12-31\n" +
		"21;Fornecedores;Liabilities:Passivo-Circulante;-100.00;2.1.01;Liabilities:Passivo-Circulante:Fornecedores;7;2023-12-31\n"
)

func TestCompaniesLoader(t *testing.T) {
	sink := &mockSink{}
	n, err := CompaniesLoader{}.Load(context.Background(), strings.NewReader("1;Acme Ltda\n2;Beta\n\n"), 0, sink)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []model.Company{{ID: 1, Name: "Acme Ltda"}, {ID: 2, Name: "Beta"}}, sink.companies)
}

func TestCompaniesLoader_SkipsHeaderRow(t *testing.T) {
	sink := &mockSink{}
	n, err := CompaniesLoader{}.Load(context.Background(), strings.NewReader("CODI_EMP;NOME\n3;Gama\n"), 0, sink)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 3, sink.companies[0].ID)
}

func TestCompaniesLoader_BadID(t *testing.T) {
	_, err := CompaniesLoader{}.Load(context.Background(), strings.NewReader("1;Acme\nx;Bad\n"), 0, &mockSink{})
	assert.ErrorContains(t, err, "row 2")
}

func TestAccountsLoader(t *testing.T) {
	sink := &mockSink{}
	n, err := AccountsLoader{}.Load(context.Background(), strings.NewReader(accountsCSV), 0, sink)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "Caixa", sink.accounts[0].Name)
	assert.Equal(t, 1, sink.accounts[0].CompanyID)
}

func TestEntriesLoader(t *testing.T) {
	sink := &mockSink{}
	n, err := EntriesLoader{}.Load(context.Background(), strings.NewReader(entriesCSV), 0, sink)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "10", sink.entries[0].Amount.String())
}

func TestEntriesLoader_LegExtract(t *testing.T) {
	legs := "1;1;20240102;1;1;;Compra;;ana;D;11;10,00\n" +
		"1;1;20240102;1;1;;Compra;;ana;C;21;10,00\n"
	sink := &mockSink{}
	n, err := EntriesLoader{}.Load(context.Background(), strings.NewReader(legs), 0, sink)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "11", sink.entries[0].DebitAccount)
	assert.Equal(t, "21", sink.entries[1].CreditAccount)
}

func TestBalancesLoader(t *testing.T) {
	sink := &mockSink{}
	n, err := BalancesLoader{}.Load(context.Background(), strings.NewReader(balancesCSV), 1, sink)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Contains(t, sink.balances, 7, "company from the file wins")
	assert.Equal(t, "2023-12-31", sink.cutoff.Format("2006-01-02"))
}

func TestLoader_SinkError(t *testing.T) {
	sink := &mockSink{err: errors.New("disk full")}
	_, err := AccountsLoader{}.Load(context.Background(), strings.NewReader(accountsCSV), 0, sink)
	assert.ErrorContains(t, err, "disk full")
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get("nonexistent"))
}

func TestRegistry_CaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.Register(AccountsLoader{})
	assert.NotNil(t, r.Get("Accounts"))
	assert.NotNil(t, r.Get("ACCOUNTS"))
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(AccountsLoader{})
	assert.Panics(t, func() { r.Register(AccountsLoader{}) })
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{KindCompanies, KindAccounts, KindBalances, KindEntries}, r.Kinds())
}

func TestKindForFile(t *testing.T) {
	assert.Equal(t, KindAccounts, KindForFile("plano_contas_1.csv"))
	assert.Equal(t, KindEntries, KindForFile("/tmp/Lancamentos-2024.csv"))
	assert.Equal(t, KindCompanies, KindForFile("empresas.csv"))
	assert.Equal(t, KindBalances, KindForFile("saldos_abertura.csv"))
	assert.Equal(t, "", KindForFile("bank.csv"))
}

func TestLoadFile_UnknownKind(t *testing.T) {
	_, err := DefaultRegistry().LoadFile(context.Background(), "bank", "x.csv", 0, &mockSink{})
	assert.ErrorContains(t, err, "no loader")
}

func TestImportDir(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(importDir, name), []byte(body), 0o644))
	}
	write("lancamentos.csv", entriesCSV)
	write("plano.csv", accountsCSV)
	write("empresas.csv", "1;Acme\n")
	write("bank.csv", "data")

	sink := &mockSink{}
	results, skipped, err := DefaultRegistry().ImportDir(context.Background(), dir, 1, sink)
	require.NoError(t, err)
	assert.Equal(t, []string{"bank.csv"}, skipped)
	require.Len(t, results, 3)
	assert.Equal(t, KindCompanies, results[0].Kind)
	assert.Equal(t, KindAccounts, results[1].Kind)
	assert.Equal(t, KindEntries, results[2].Kind)

	_, err = os.Stat(filepath.Join(dir, "import", "processed", "plano.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(importDir, "bank.csv"))
	assert.NoError(t, err, "unrecognized files stay put")
}

func TestScan_FindsCSVs(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(importDir, "plano.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "other.txt"), []byte("data"), 0o644))

	files, err := Scan(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, "plano.csv", files[0].Name)
}

func TestScan_IgnoresProcessedDir(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	processedDir := filepath.Join(importDir, "processed")
	require.NoError(t, os.MkdirAll(processedDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(importDir, "new.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(processedDir, "old.csv"), []byte("data"), 0o644))

	files, err := Scan(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, "new.csv", files[0].Name)
}

func TestScan_EmptyDir(t *testing.T) {
	files, err := Scan(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestMarkProcessed(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "plano.csv"), []byte("data"), 0o644))

	require.NoError(t, MarkProcessed(dir, "plano.csv"))

	_, err := os.Stat(filepath.Join(importDir, "plano.csv"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "import", "processed", "plano.csv"))
	assert.NoError(t, err)
}
