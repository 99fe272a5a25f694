package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerview/internal/id"
	"github.com/cleared-dev/ledgerview/internal/model"
)

// TrialBalanceRow holds one account's totals. Debit and credit totals are in
// the base currency; SignedBalance is in the account's home currency and
// includes its opening balance.
type TrialBalanceRow struct {
	Account        model.Account
	LifetimeDebit  decimal.Decimal
	LifetimeCredit decimal.Decimal
	PeriodDebit    decimal.Decimal
	PeriodCredit   decimal.Decimal
	SignedBalance  decimal.Decimal
}

func (r TrialBalanceRow) active() bool {
	return !r.LifetimeDebit.IsZero() || !r.LifetimeCredit.IsZero() || !r.SignedBalance.IsZero()
}

// TrialBalance is the derived trial balance for a window.
type TrialBalance struct {
	From        time.Time
	To          time.Time
	Rows        []TrialBalanceRow
	PeriodDebit decimal.Decimal
	// PeriodCredit equals PeriodDebit for balanced, unfiltered input.
	PeriodCredit decimal.Decimal
	Diagnostics  Diagnostics
}

// Row returns the row for key.
func (tb TrialBalance) Row(key model.AccountKey) (TrialBalanceRow, bool) {
	for _, r := range tb.Rows {
		if r.Account.Key == key {
			return r, true
		}
	}
	return TrialBalanceRow{}, false
}

// TrialBalance accumulates every filtered-in posting. Postings dated on or
// after from also count toward the period totals.
func (ix *Index) TrialBalance(from time.Time) TrialBalance {
	from = id.Day(from)
	acc := make(map[model.AccountKey]*TrialBalanceRow, len(ix.accounts))
	for key, a := range ix.accounts {
		acc[key] = &TrialBalanceRow{
			Account:        a,
			LifetimeDebit:  decimal.Zero,
			LifetimeCredit: decimal.Zero,
			PeriodDebit:    decimal.Zero,
			PeriodCredit:   decimal.Zero,
			SignedBalance:  a.OpeningBalance,
		}
	}

	for _, p := range ix.postings {
		if p.Excluded() {
			continue
		}
		row := acc[p.Key()]
		row.LifetimeDebit = row.LifetimeDebit.Add(p.DebitBase)
		row.LifetimeCredit = row.LifetimeCredit.Add(p.CreditBase)
		if !p.Date.Before(from) {
			row.PeriodDebit = row.PeriodDebit.Add(p.DebitBase)
			row.PeriodCredit = row.PeriodCredit.Add(p.CreditBase)
		}
		row.SignedBalance = row.SignedBalance.Add(p.Signed())
	}

	tb := TrialBalance{
		From:         from,
		To:           ix.cutoff,
		PeriodDebit:  decimal.Zero,
		PeriodCredit: decimal.Zero,
		Diagnostics:  ix.diagnostics,
	}
	for _, key := range ix.AccountKeys() {
		row := acc[key]
		if !row.active() {
			continue
		}
		tb.Rows = append(tb.Rows, *row)
		tb.PeriodDebit = tb.PeriodDebit.Add(row.PeriodDebit)
		tb.PeriodCredit = tb.PeriodCredit.Add(row.PeriodCredit)
	}
	return tb
}
