package store

// schema creates every table if missing. Statements are kept separate so
// they can run one at a time on drivers that reject multi-statement Exec.
// Amounts are TEXT so decimals round-trip exactly on both drivers; dates
// are TEXT in YYYY-MM-DD, which orders correctly as a string.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS companies (
    company_id INTEGER PRIMARY KEY,
    name TEXT NOT NULL DEFAULT ''
)`,
	`CREATE TABLE IF NOT EXISTS accounts (
    company_id INTEGER NOT NULL,
    account_code TEXT NOT NULL,
    account_name TEXT NOT NULL DEFAULT '',
    classification_code TEXT NOT NULL DEFAULT '',
    type_flag TEXT NOT NULL DEFAULT '',
    account_kind TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'A',
    PRIMARY KEY (company_id, account_code)
)`,
	`CREATE TABLE IF NOT EXISTS entries (
    company_id INTEGER NOT NULL,
    entry_number BIGINT NOT NULL,
    line_no INTEGER NOT NULL,
    entry_date TEXT NOT NULL,
    amount TEXT NOT NULL,
    debit_account TEXT NOT NULL DEFAULT '',
    credit_account TEXT NOT NULL DEFAULT '',
    history_code TEXT NOT NULL DEFAULT '',
    history TEXT NOT NULL DEFAULT '',
    document TEXT NOT NULL DEFAULT '',
    batch_id TEXT NOT NULL DEFAULT '',
    user_code TEXT NOT NULL DEFAULT '',
    origin INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (company_id, entry_number, line_no)
)`,
	`CREATE INDEX IF NOT EXISTS idx_entries_company_date
    ON entries(company_id, entry_date)`,
	`CREATE TABLE IF NOT EXISTS opening_balances (
    company_id INTEGER NOT NULL,
    account_code TEXT NOT NULL,
    cutoff_date TEXT NOT NULL,
    balance TEXT NOT NULL,
    PRIMARY KEY (company_id, account_code, cutoff_date)
)`,
}
