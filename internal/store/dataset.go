package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerview/internal/id"
	"github.com/cleared-dev/ledgerview/internal/model"
)

const metaBaseCurrency = "base_currency"

// Save replaces the stored dataset with ds in one transaction.
func (c *Connection) Save(ctx context.Context, ds *model.Dataset) error {
	return c.Transaction(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"journal_lines", "journal_entries", "transactions", "accounts", "currencies", "metadata"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clearing %s: %w", table, err)
			}
		}

		if ds.BaseCurrency != "" {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO metadata (key, value) VALUES (?, ?)`,
				metaBaseCurrency, ds.BaseCurrency); err != nil {
				return fmt.Errorf("saving base currency: %w", err)
			}
		}
		if err := saveAccounts(ctx, tx, ds.Accounts); err != nil {
			return err
		}
		if err := saveEntries(ctx, tx, ds.Entries); err != nil {
			return err
		}
		if err := saveTransactions(ctx, tx, ds.Transactions); err != nil {
			return err
		}
		return saveCurrencies(ctx, tx, ds.Currencies)
	})
}

func saveAccounts(ctx context.Context, tx *sql.Tx, accts []model.Account) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO accounts (account_type, account_id, name, opening_balance, opening_currency, opening_balance_base)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(account_type, account_id) DO UPDATE SET
			name = excluded.name,
			opening_balance = excluded.opening_balance,
			opening_currency = excluded.opening_currency,
			opening_balance_base = excluded.opening_balance_base
	`)
	if err != nil {
		return fmt.Errorf("preparing account insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range accts {
		if _, err := stmt.ExecContext(ctx,
			string(a.Key.Type), a.Key.ID, a.Name,
			a.OpeningBalance.String(), a.OpeningCurrency, a.OpeningBalanceBase.String(),
		); err != nil {
			return fmt.Errorf("saving account %s: %w", a.Key, err)
		}
	}
	return nil
}

func saveEntries(ctx context.Context, tx *sql.Tx, entries []model.JournalEntry) error {
	entryStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO journal_entries (entry_id, entry_date, description, reference)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing entry insert: %w", err)
	}
	defer entryStmt.Close()

	lineStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO journal_lines (
			entry_seq, line_no, account_type, account_id, account_name,
			debit, credit, currency, exchange_rate, original_amount,
			cost_center_id, program_id, component_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing line insert: %w", err)
	}
	defer lineStmt.Close()

	for _, e := range entries {
		res, err := entryStmt.ExecContext(ctx, e.ID, e.Date.Format(id.DateFormat), e.Description, e.Reference)
		if err != nil {
			return fmt.Errorf("saving entry %s: %w", e.ID, err)
		}
		seq, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("entry %s sequence: %w", e.ID, err)
		}

		for i, l := range e.Lines {
			var original sql.NullString
			if l.OriginalAmount.Valid {
				original = sql.NullString{String: l.OriginalAmount.Decimal.String(), Valid: true}
			}
			if _, err := lineStmt.ExecContext(ctx,
				seq, i+1, string(l.AccountType), l.AccountID, l.AccountName,
				l.Debit.String(), l.Credit.String(), l.CurrencyCode, l.ExchangeRate.String(), original,
				l.CostCenterID, l.ProgramID, l.ComponentID,
			); err != nil {
				return fmt.Errorf("saving entry %s line %d: %w", e.ID, i+1, err)
			}
		}
	}
	return nil
}

func saveTransactions(ctx context.Context, tx *sql.Tx, txns []model.Transaction) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (
			id, type, journal_entry_id, txn_date, description, category,
			program_id, master_trip_id, supplier_id, customer_id, treasury_id,
			amount, purchase_price, selling_price, currency, exchange_rate,
			is_voided, is_revenue_only, is_purchase_only
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			journal_entry_id = excluded.journal_entry_id,
			txn_date = excluded.txn_date,
			description = excluded.description,
			category = excluded.category,
			program_id = excluded.program_id,
			master_trip_id = excluded.master_trip_id,
			supplier_id = excluded.supplier_id,
			customer_id = excluded.customer_id,
			treasury_id = excluded.treasury_id,
			amount = excluded.amount,
			purchase_price = excluded.purchase_price,
			selling_price = excluded.selling_price,
			currency = excluded.currency,
			exchange_rate = excluded.exchange_rate,
			is_voided = excluded.is_voided,
			is_revenue_only = excluded.is_revenue_only,
			is_purchase_only = excluded.is_purchase_only
	`)
	if err != nil {
		return fmt.Errorf("preparing transaction insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range txns {
		var date string
		if !t.Date.IsZero() {
			date = t.Date.Format(id.DateFormat)
		}
		if _, err := stmt.ExecContext(ctx,
			t.ID, string(t.Type), t.JournalEntryID, date, t.Description, t.Category,
			t.ProgramID, t.MasterTripID, t.SupplierID, t.CustomerID, t.TreasuryID,
			t.Amount.String(), t.PurchasePrice.String(), t.SellingPrice.String(), t.CurrencyCode, t.ExchangeRate.String(),
			t.IsVoided, t.IsRevenueOnly, t.IsPurchaseOnly,
		); err != nil {
			return fmt.Errorf("saving transaction %s: %w", t.ID, err)
		}
	}
	return nil
}

func saveCurrencies(ctx context.Context, tx *sql.Tx, currencies []model.Currency) error {
	for _, cur := range currencies {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO currencies (code, rate_to_base) VALUES (?, ?)
			ON CONFLICT(code) DO UPDATE SET rate_to_base = excluded.rate_to_base
		`, cur.Code, cur.RateToBase.String()); err != nil {
			return fmt.Errorf("saving currency %s: %w", cur.Code, err)
		}
	}
	return nil
}

// Load reads the whole stored dataset. Entries and transactions come back in
// the order they were saved.
func (c *Connection) Load(ctx context.Context) (*model.Dataset, error) {
	ds := &model.Dataset{}

	err := c.db.QueryRowContext(ctx,
		`SELECT value FROM metadata WHERE key = ?`, metaBaseCurrency,
	).Scan(&ds.BaseCurrency)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("loading base currency: %w", err)
	}

	if ds.Accounts, err = c.loadAccounts(ctx); err != nil {
		return nil, err
	}
	if ds.Entries, err = c.loadEntries(ctx); err != nil {
		return nil, err
	}
	if ds.Transactions, err = c.loadTransactions(ctx); err != nil {
		return nil, err
	}
	if ds.Currencies, err = c.loadCurrencies(ctx); err != nil {
		return nil, err
	}
	return ds, nil
}

func (c *Connection) loadAccounts(ctx context.Context) ([]model.Account, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT account_type, account_id, name, opening_balance, opening_currency, opening_balance_base
		FROM accounts
		ORDER BY account_type, account_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	var out []model.Account
	for rows.Next() {
		var (
			a                    model.Account
			typ, opening, openBs string
		)
		if err := rows.Scan(&typ, &a.Key.ID, &a.Name, &opening, &a.OpeningCurrency, &openBs); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		if a.Key.Type, err = model.ParseAccountType(typ); err != nil {
			return nil, err
		}
		if a.OpeningBalance, err = parseDecimal("opening_balance", opening); err != nil {
			return nil, err
		}
		if a.OpeningBalanceBase, err = parseDecimal("opening_balance_base", openBs); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (c *Connection) loadEntries(ctx context.Context) ([]model.JournalEntry, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT e.seq, e.entry_id, e.entry_date, e.description, e.reference,
			l.account_type, l.account_id, l.account_name, l.debit, l.credit,
			l.currency, l.exchange_rate, l.original_amount,
			l.cost_center_id, l.program_id, l.component_id
		FROM journal_entries e
		LEFT JOIN journal_lines l ON l.entry_seq = e.seq
		ORDER BY e.seq, l.line_no
	`)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var (
		out     []model.JournalEntry
		lastSeq int64 = -1
	)
	for rows.Next() {
		var (
			seq                            int64
			entryID, date, desc, ref       string
			typ, acctID, acctName          sql.NullString
			debit, credit, cur, rate       sql.NullString
			original                       sql.NullString
			costCenter, program, component sql.NullString
		)
		if err := rows.Scan(&seq, &entryID, &date, &desc, &ref,
			&typ, &acctID, &acctName, &debit, &credit,
			&cur, &rate, &original,
			&costCenter, &program, &component,
		); err != nil {
			return nil, fmt.Errorf("scanning journal row: %w", err)
		}

		if seq != lastSeq {
			d, err := id.ParseDate(date)
			if err != nil {
				return nil, fmt.Errorf("entry %s: %w", entryID, err)
			}
			out = append(out, model.JournalEntry{ID: entryID, Date: d, Description: desc, Reference: ref})
			lastSeq = seq
		}
		if !typ.Valid {
			continue // entry without lines
		}

		l := model.JournalLine{
			AccountType:  model.AccountType(typ.String),
			AccountID:    acctID.String,
			AccountName:  acctName.String,
			CurrencyCode: cur.String,
			CostCenterID: costCenter.String,
			ProgramID:    program.String,
			ComponentID:  component.String,
		}
		if l.Debit, err = parseDecimal("debit", debit.String); err != nil {
			return nil, fmt.Errorf("entry %s: %w", entryID, err)
		}
		if l.Credit, err = parseDecimal("credit", credit.String); err != nil {
			return nil, fmt.Errorf("entry %s: %w", entryID, err)
		}
		if l.ExchangeRate, err = parseDecimal("exchange_rate", rate.String); err != nil {
			return nil, fmt.Errorf("entry %s: %w", entryID, err)
		}
		if original.Valid {
			v, err := parseDecimal("original_amount", original.String)
			if err != nil {
				return nil, fmt.Errorf("entry %s: %w", entryID, err)
			}
			l.OriginalAmount = decimal.NewNullDecimal(v)
		}
		last := &out[len(out)-1]
		last.Lines = append(last.Lines, l)
	}
	return out, rows.Err()
}

func (c *Connection) loadTransactions(ctx context.Context) ([]model.Transaction, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, type, journal_entry_id, txn_date, description, category,
			program_id, master_trip_id, supplier_id, customer_id, treasury_id,
			amount, purchase_price, selling_price, currency, exchange_rate,
			is_voided, is_revenue_only, is_purchase_only
		FROM transactions
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		var (
			t                               model.Transaction
			typ, date                       string
			amount, purchase, selling, rate string
		)
		if err := rows.Scan(&t.ID, &typ, &t.JournalEntryID, &date, &t.Description, &t.Category,
			&t.ProgramID, &t.MasterTripID, &t.SupplierID, &t.CustomerID, &t.TreasuryID,
			&amount, &purchase, &selling, &t.CurrencyCode, &rate,
			&t.IsVoided, &t.IsRevenueOnly, &t.IsPurchaseOnly,
		); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		if t.Type, err = model.ParseTransactionType(typ); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		if date != "" {
			if t.Date, err = id.ParseDate(date); err != nil {
				return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
			}
		}
		for _, a := range []struct {
			name string
			src  string
			dst  *decimal.Decimal
		}{
			{"amount", amount, &t.Amount},
			{"purchase_price", purchase, &t.PurchasePrice},
			{"selling_price", selling, &t.SellingPrice},
			{"exchange_rate", rate, &t.ExchangeRate},
		} {
			if *a.dst, err = parseDecimal(a.name, a.src); err != nil {
				return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
			}
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (c *Connection) loadCurrencies(ctx context.Context) ([]model.Currency, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT code, rate_to_base FROM currencies ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("querying currencies: %w", err)
	}
	defer rows.Close()

	var out []model.Currency
	for rows.Next() {
		var (
			cur  model.Currency
			rate string
		)
		if err := rows.Scan(&cur.Code, &rate); err != nil {
			return nil, fmt.Errorf("scanning currency: %w", err)
		}
		if cur.RateToBase, err = parseDecimal("rate_to_base", rate); err != nil {
			return nil, err
		}
		out = append(out, cur)
	}
	return out, rows.Err()
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing %s %q: %w", field, s, err)
	}
	return d, nil
}
