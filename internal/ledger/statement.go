package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerview/internal/id"
	"github.com/cleared-dev/ledgerview/internal/model"
)

// StatementEntry is one line of a statement of account, in the account's
// home currency.
type StatementEntry struct {
	EntryID        string
	Date           time.Time
	Description    string
	Reference      string
	CurrencyCode   string
	OriginalAmount decimal.NullDecimal
	Debit          decimal.Decimal
	Credit         decimal.Decimal
	RunningBalance decimal.Decimal
}

// Statement is the running ledger of one account over a window.
type Statement struct {
	Account        model.Account
	From           time.Time
	To             time.Time
	OpeningBalance decimal.Decimal
	TotalDebit     decimal.Decimal
	TotalCredit    decimal.Decimal
	ClosingBalance decimal.Decimal
	Entries        []StatementEntry
}

// Statement replays every posting of key, filtered or not: a statement of
// account shows each line actually posted. Postings before from fold into
// the opening balance; the rest, up to the index cutoff, are listed in date
// order with ties in input order. It reports false for an unknown account.
func (ix *Index) Statement(key model.AccountKey, from time.Time) (Statement, bool) {
	acct, ok := ix.accounts[key]
	if !ok {
		return Statement{}, false
	}
	from = id.Day(from)

	st := Statement{
		Account:        acct,
		From:           from,
		To:             ix.cutoff,
		OpeningBalance: acct.OpeningBalance,
		TotalDebit:     decimal.Zero,
		TotalCredit:    decimal.Zero,
	}

	postings := ix.AccountPostings(key)
	for _, p := range postings {
		if p.Date.Before(from) {
			st.OpeningBalance = st.OpeningBalance.Add(p.Signed())
		}
	}

	running := st.OpeningBalance
	for _, p := range postings {
		if p.Date.Before(from) {
			continue
		}
		running = running.Add(p.Signed())
		st.TotalDebit = st.TotalDebit.Add(p.Debit)
		st.TotalCredit = st.TotalCredit.Add(p.Credit)
		st.Entries = append(st.Entries, StatementEntry{
			EntryID:        p.EntryID,
			Date:           p.Date,
			Description:    p.Description,
			Reference:      p.Reference,
			CurrencyCode:   p.Line.CurrencyCode,
			OriginalAmount: p.Line.OriginalAmount,
			Debit:          p.Debit,
			Credit:         p.Credit,
			RunningBalance: running,
		})
	}
	st.ClosingBalance = running
	return st, true
}
