package store

import "context"

// Schema creates every table. Amounts are stored as decimal strings so no
// value ever passes through a float.
const Schema = `
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS accounts (
    account_type TEXT NOT NULL,
    account_id TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    opening_balance TEXT NOT NULL DEFAULT '0',
    opening_currency TEXT NOT NULL DEFAULT '',
    opening_balance_base TEXT NOT NULL DEFAULT '0',
    PRIMARY KEY (account_type, account_id)
);

-- entry_id is not unique in historical data; seq keeps input order
CREATE TABLE IF NOT EXISTS journal_entries (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    entry_id TEXT NOT NULL,
    entry_date TEXT NOT NULL,          -- YYYY-MM-DD
    description TEXT NOT NULL DEFAULT '',
    reference TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_journal_entries_id
    ON journal_entries(entry_id);

CREATE TABLE IF NOT EXISTS journal_lines (
    entry_seq INTEGER NOT NULL REFERENCES journal_entries(seq) ON DELETE CASCADE,
    line_no INTEGER NOT NULL,
    account_type TEXT NOT NULL,
    account_id TEXT NOT NULL,
    account_name TEXT NOT NULL DEFAULT '',
    debit TEXT NOT NULL DEFAULT '0',
    credit TEXT NOT NULL DEFAULT '0',
    currency TEXT NOT NULL DEFAULT '',
    exchange_rate TEXT NOT NULL DEFAULT '0',
    original_amount TEXT,              -- NULL when unknown
    cost_center_id TEXT NOT NULL DEFAULT '',
    program_id TEXT NOT NULL DEFAULT '',
    component_id TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (entry_seq, line_no)
);

CREATE TABLE IF NOT EXISTS transactions (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    type TEXT NOT NULL,
    journal_entry_id TEXT NOT NULL DEFAULT '',
    txn_date TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    program_id TEXT NOT NULL DEFAULT '',
    master_trip_id TEXT NOT NULL DEFAULT '',
    supplier_id TEXT NOT NULL DEFAULT '',
    customer_id TEXT NOT NULL DEFAULT '',
    treasury_id TEXT NOT NULL DEFAULT '',
    amount TEXT NOT NULL DEFAULT '0',
    purchase_price TEXT NOT NULL DEFAULT '0',
    selling_price TEXT NOT NULL DEFAULT '0',
    currency TEXT NOT NULL DEFAULT '',
    exchange_rate TEXT NOT NULL DEFAULT '0',
    is_voided INTEGER NOT NULL DEFAULT 0,
    is_revenue_only INTEGER NOT NULL DEFAULT 0,
    is_purchase_only INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_transactions_journal
    ON transactions(journal_entry_id);

CREATE TABLE IF NOT EXISTS currencies (
    code TEXT PRIMARY KEY,
    rate_to_base TEXT NOT NULL
);
`

func initializeSchema(ctx context.Context, conn *Connection) error {
	_, err := conn.db.ExecContext(ctx, Schema)
	return err
}
