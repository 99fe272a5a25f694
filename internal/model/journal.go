package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalLine is one debit or credit posting inside a journal entry.
// Debit and Credit are expressed in CurrencyCode. Exactly one of them is
// expected to be non-zero, but historical data violates that and readers
// must tolerate it.
type JournalLine struct {
	AccountType    AccountType
	AccountID      string
	AccountName    string
	Debit          decimal.Decimal
	Credit         decimal.Decimal
	CurrencyCode   string
	ExchangeRate   decimal.Decimal
	OriginalAmount decimal.NullDecimal
	CostCenterID   string
	ProgramID      string
	ComponentID    string
}

// Key returns the account the line posts to.
func (l JournalLine) Key() AccountKey {
	return AccountKey{Type: l.AccountType, ID: l.AccountID}
}

// JournalEntry is an atomic double-entry posting. IDs are not unique across
// the historical log; lookups by ID must return every match.
type JournalEntry struct {
	ID          string
	Date        time.Time
	Description string
	Reference   string
	Lines       []JournalLine
}

// Totals returns the sum of debits and credits over all lines.
func (e JournalEntry) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}
