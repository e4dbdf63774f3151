package importer

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cleared-dev/ledgerport/internal/accounts"
	"github.com/cleared-dev/ledgerport/internal/balances"
	"github.com/cleared-dev/ledgerport/internal/csvio"
	"github.com/cleared-dev/ledgerport/internal/journal"
	"github.com/cleared-dev/ledgerport/internal/model"
)

// Built-in loader kinds.
const (
	KindCompanies = "companies"
	KindAccounts  = "accounts"
	KindEntries   = "entries"
	KindBalances  = "balances"
)

// CompaniesLoader reads CODI_EMP;NOME rows. The source extract has no
// header; a first row whose ID is not numeric is treated as one.
type CompaniesLoader struct{}

func (CompaniesLoader) Kind() string { return KindCompanies }

func (CompaniesLoader) Load(ctx context.Context, r io.Reader, _ int, sink Sink) (int, error) {
	records, err := csvio.NewReader(r).ReadAll()
	if err != nil {
		return 0, fmt.Errorf("reading companies CSV: %w", err)
	}

	n := 0
	for i, rec := range records {
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			if i == 0 {
				continue
			}
			return n, fmt.Errorf("row %d: parsing company id %q: %w", i+1, rec[0], err)
		}
		c := model.Company{ID: id}
		if len(rec) > 1 {
			c.Name = strings.TrimSpace(rec[1])
		}
		if err := sink.UpsertCompany(ctx, c); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// AccountsLoader reads a chart-of-accounts extract.
type AccountsLoader struct{}

func (AccountsLoader) Kind() string { return KindAccounts }

func (AccountsLoader) Load(ctx context.Context, r io.Reader, company int, sink Sink) (int, error) {
	accts, err := accounts.ReadAccounts(r, company)
	if err != nil {
		return 0, err
	}
	return sink.InsertAccounts(ctx, accts)
}

// EntriesLoader reads a journal extract, headed or leg-per-row.
type EntriesLoader struct{}

func (EntriesLoader) Kind() string { return KindEntries }

func (EntriesLoader) Load(ctx context.Context, r io.Reader, company int, sink Sink) (int, error) {
	entries, err := journal.ReadEntries(r, company)
	if err != nil {
		return 0, err
	}
	return sink.InsertEntries(ctx, entries)
}

// BalancesLoader seeds the opening balance cache from an opening balances
// CSV, keyed by the company and cutoff the file names.
type BalancesLoader struct{}

func (BalancesLoader) Kind() string { return KindBalances }

func (BalancesLoader) Load(ctx context.Context, r io.Reader, company int, sink Sink) (int, error) {
	o, err := balances.ReadCSV(r)
	if err != nil {
		return 0, err
	}
	if len(o.Balances) == 0 {
		return 0, nil
	}
	if o.CompanyID == 0 {
		o.CompanyID = company
	}
	if err := sink.SaveOpeningBalances(ctx, o.CompanyID, o.Cutoff, o.Balances); err != nil {
		return 0, err
	}
	return len(o.Balances), nil
}
