package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/cleared-dev/ledgerport/internal/csvio"
	"github.com/cleared-dev/ledgerport/internal/model"
)

// UpsertCompany inserts or renames a company.
func (s *Store) UpsertCompany(ctx context.Context, c model.Company) error {
	const q = `INSERT INTO companies (company_id, name) VALUES (?, ?)
		ON CONFLICT (company_id) DO UPDATE SET name = excluded.name`
	return s.transaction(ctx, func(tx *sql.Tx) error {
		if _, err := s.execMany(ctx, tx, q, [][]any{{c.ID, c.Name}}); err != nil {
			return fmt.Errorf("upserting company %d: %w", c.ID, err)
		}
		return nil
	})
}

// Companies lists companies ordered by ID.
func (s *Store) Companies(ctx context.Context) ([]model.Company, error) {
	rows, err := s.query(ctx, `SELECT company_id, name FROM companies ORDER BY company_id`)
	if err != nil {
		return nil, fmt.Errorf("querying companies: %w", err)
	}
	defer rows.Close()

	var out []model.Company
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scanning company: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// InsertAccounts upserts chart rows keyed by (company, code).
func (s *Store) InsertAccounts(ctx context.Context, accts []model.RawAccount) (int, error) {
	const q = `INSERT INTO accounts (company_id, account_code, account_name, classification_code, type_flag, account_kind, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (company_id, account_code) DO UPDATE SET
			account_name = excluded.account_name,
			classification_code = excluded.classification_code,
			type_flag = excluded.type_flag,
			account_kind = excluded.account_kind,
			status = excluded.status`

	args := make([][]any, 0, len(accts))
	for _, a := range accts {
		status := a.Status
		if status == "" {
			status = model.StatusActive
		}
		args = append(args, []any{a.CompanyID, a.Code, a.Name, a.ClassificationCode, a.TypeFlag, string(a.Kind), string(status)})
	}
	var written int64
	err := s.transaction(ctx, func(tx *sql.Tx) error {
		var err error
		written, err = s.execMany(ctx, tx, q, args)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("inserting accounts: %w", err)
	}
	s.logger.Debug("accounts stored", "count", written)
	return int(written), nil
}

// InsertEntries upserts journal lines keyed by (company, entry number,
// line). Lines without a number are numbered in slice order, so loading the
// same extract twice rewrites the same rows.
func (s *Store) InsertEntries(ctx context.Context, entries []model.Entry) (int, error) {
	const q = `INSERT INTO entries (company_id, entry_number, line_no, entry_date, amount, debit_account, credit_account,
			history_code, history, document, batch_id, user_code, origin)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (company_id, entry_number, line_no) DO UPDATE SET
			entry_date = excluded.entry_date,
			amount = excluded.amount,
			debit_account = excluded.debit_account,
			credit_account = excluded.credit_account,
			history_code = excluded.history_code,
			history = excluded.history,
			document = excluded.document,
			batch_id = excluded.batch_id,
			user_code = excluded.user_code,
			origin = excluded.origin`

	entries = slices.Clone(entries)
	model.NumberLines(entries)

	args := make([][]any, 0, len(entries))
	for _, e := range entries {
		args = append(args, []any{
			e.CompanyID, e.Number, e.Line, e.Date.Format(csvio.DateLayout), e.Amount.String(),
			e.DebitAccount, e.CreditAccount, e.HistoryCode, e.History, e.Document,
			e.BatchID, e.UserCode, e.Origin,
		})
	}
	var written int64
	err := s.transaction(ctx, func(tx *sql.Tx) error {
		var err error
		written, err = s.execMany(ctx, tx, q, args)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("inserting entries: %w", err)
	}
	s.logger.Debug("entries stored", "count", written)
	return int(written), nil
}

// FetchChartOfAccounts returns a company's accounts ordered by code.
func (s *Store) FetchChartOfAccounts(ctx context.Context, company int) ([]model.RawAccount, error) {
	rows, err := s.query(ctx, `SELECT company_id, account_code, account_name, classification_code, type_flag, account_kind, status
		FROM accounts WHERE company_id = ?`, company)
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	var out []model.RawAccount
	for rows.Next() {
		var a model.RawAccount
		var kind, status string
		if err := rows.Scan(&a.CompanyID, &a.Code, &a.Name, &a.ClassificationCode, &a.TypeFlag, &kind, &status); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		a.Kind = model.AccountKind(kind)
		a.Status = model.AccountStatus(status)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading accounts: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return model.CodeLess(out[i].Code, out[j].Code) })
	return out, nil
}

const entryColumns = `company_id, entry_number, line_no, entry_date, amount, debit_account, credit_account,
	history_code, history, document, batch_id, user_code, origin`

// FetchEntries returns source lines dated within [from, to], ordered by
// date, batch and entry number.
func (s *Store) FetchEntries(ctx context.Context, company int, from, to time.Time) ([]model.Entry, error) {
	return s.fetchEntries(ctx, `SELECT `+entryColumns+` FROM entries
		WHERE company_id = ? AND entry_date >= ? AND entry_date <= ?
		ORDER BY entry_date, batch_id, entry_number, line_no`,
		company, from.Format(csvio.DateLayout), to.Format(csvio.DateLayout))
}

// FetchPostings returns the legs of entries dated within [from, to].
func (s *Store) FetchPostings(ctx context.Context, company int, from, to time.Time) ([]model.Posting, error) {
	entries, err := s.FetchEntries(ctx, company, from, to)
	if err != nil {
		return nil, err
	}
	return model.ExpandEntries(entries), nil
}

// FetchPostingsUntil returns the legs of entries dated on or before cutoff.
func (s *Store) FetchPostingsUntil(ctx context.Context, company int, cutoff time.Time) ([]model.Posting, error) {
	entries, err := s.fetchEntries(ctx, `SELECT `+entryColumns+` FROM entries
		WHERE company_id = ? AND entry_date <= ?
		ORDER BY entry_date, batch_id, entry_number, line_no`,
		company, cutoff.Format(csvio.DateLayout))
	if err != nil {
		return nil, err
	}
	return model.ExpandEntries(entries), nil
}

func (s *Store) fetchEntries(ctx context.Context, q string, args ...any) ([]model.Entry, error) {
	rows, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var out []model.Entry
	for rows.Next() {
		var e model.Entry
		var day, amount string
		if err := rows.Scan(&e.CompanyID, &e.Number, &e.Line, &day, &amount, &e.DebitAccount, &e.CreditAccount,
			&e.HistoryCode, &e.History, &e.Document, &e.BatchID, &e.UserCode, &e.Origin); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		if e.Date, err = csvio.ParseDate(day); err != nil {
			return nil, fmt.Errorf("entry %d: %w", e.Number, err)
		}
		if e.Amount, err = csvio.ParseDecimal(amount); err != nil {
			return nil, fmt.Errorf("entry %d: %w", e.Number, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading entries: %w", err)
	}
	return out, nil
}

// LoadOpeningBalances returns the cached balance set for (company, cutoff),
// empty when nothing was saved.
func (s *Store) LoadOpeningBalances(ctx context.Context, company int, cutoff time.Time) ([]model.OpeningBalance, error) {
	rows, err := s.query(ctx, `SELECT account_code, balance FROM opening_balances
		WHERE company_id = ? AND cutoff_date = ?`, company, cutoff.Format(csvio.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("querying opening balances: %w", err)
	}
	defer rows.Close()

	var out []model.OpeningBalance
	for rows.Next() {
		b := model.OpeningBalance{CompanyID: company, CutoffDate: cutoff}
		var amount string
		if err := rows.Scan(&b.AccountCode, &amount); err != nil {
			return nil, fmt.Errorf("scanning opening balance: %w", err)
		}
		if b.Balance, err = csvio.ParseDecimal(amount); err != nil {
			return nil, fmt.Errorf("opening balance %s: %w", b.AccountCode, err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading opening balances: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return model.CodeLess(out[i].AccountCode, out[j].AccountCode) })
	return out, nil
}

// SaveOpeningBalances replaces the cached set for (company, cutoff).
func (s *Store) SaveOpeningBalances(ctx context.Context, company int, cutoff time.Time, balances []model.OpeningBalance) error {
	day := cutoff.Format(csvio.DateLayout)
	const insert = `INSERT INTO opening_balances (company_id, account_code, cutoff_date, balance)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (company_id, account_code, cutoff_date) DO UPDATE SET balance = excluded.balance`

	args := make([][]any, 0, len(balances))
	for _, b := range balances {
		args = append(args, []any{company, b.AccountCode, day, b.Balance.String()})
	}
	err := s.transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM opening_balances WHERE company_id = ? AND cutoff_date = ?`), company, day); err != nil {
			return err
		}
		_, err := s.execMany(ctx, tx, insert, args)
		return err
	})
	if err != nil {
		return fmt.Errorf("saving opening balances: %w", err)
	}
	s.logger.Debug("opening balances cached", "company", company, "cutoff", day, "count", len(balances))
	return nil
}
