package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerview/internal/model"
)

// Header is the CSV header for accounts.csv.
const Header = "account_type,account_id,name,opening_balance,opening_currency,opening_balance_base"

const (
	numFields      = 6
	colType        = 0
	colID          = 1
	colName        = 2
	colOpening     = 3
	colCurrency    = 4
	colOpeningBase = 5
)

// ReadAccounts reads accounts.csv.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colType] = string(acct.Key.Type)
	row[colID] = acct.Key.ID
	row[colName] = acct.Name
	if !acct.OpeningBalance.IsZero() {
		row[colOpening] = acct.OpeningBalance.String()
	}
	row[colCurrency] = acct.OpeningCurrency
	if !acct.OpeningBalanceBase.IsZero() {
		row[colOpeningBase] = acct.OpeningBalanceBase.String()
	}
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	at, err := model.ParseAccountType(record[colType])
	if err != nil {
		return model.Account{}, err
	}
	if strings.TrimSpace(record[colID]) == "" {
		return model.Account{}, fmt.Errorf("empty account_id")
	}

	opening, err := parseAmount("opening_balance", record[colOpening])
	if err != nil {
		return model.Account{}, err
	}
	openingBase, err := parseAmount("opening_balance_base", record[colOpeningBase])
	if err != nil {
		return model.Account{}, err
	}

	return model.Account{
		Key:                model.AccountKey{Type: at, ID: strings.TrimSpace(record[colID])},
		Name:               record[colName],
		OpeningBalance:     opening,
		OpeningCurrency:    strings.ToUpper(strings.TrimSpace(record[colCurrency])),
		OpeningBalanceBase: openingBase,
	}, nil
}

func parseAmount(field, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing %s %q: %w", field, s, err)
	}
	return d, nil
}
