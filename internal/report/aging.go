package report

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cleared-dev/ledgerview/internal/aging"
	"github.com/cleared-dev/ledgerview/internal/id"
	"github.com/cleared-dev/ledgerview/internal/ledger"
	"github.com/cleared-dev/ledgerview/internal/model"
)

// Aging is the aged balance of one customer or supplier, in the account's
// home currency.
type Aging struct {
	Account  model.Account
	Currency string
	AsOf     time.Time
	aging.Bucket
}

// AgingReport holds aged balances with the recoveries behind them.
type AgingReport struct {
	Rows        []Aging
	Diagnostics Diagnostics
}

// Aging ages the outstanding balance of key as of to. The report has
// exactly one row.
func (e *Engine) Aging(key model.AccountKey, to time.Time) (AgingReport, error) {
	if !key.Type.AgingEligible() {
		return AgingReport{}, fmt.Errorf("aging %s: %w", key, ErrNotAgingEligible)
	}
	to = id.Day(to)
	ix := e.index(to)
	acct, ok := ix.Account(key)
	if !ok {
		return AgingReport{}, fmt.Errorf("aging %s: %w", key, ErrUnknownAccount)
	}
	tb := ix.TrialBalance(to)
	d := fromLedger(ix.Diagnostics())
	e.logDiagnostics("aging", d)
	return AgingReport{
		Rows:        []Aging{ageAccount(ix, tb, acct, to, e.ds.BaseCurrency)},
		Diagnostics: d,
	}, nil
}

// AgingSchedule ages every customer and supplier with activity, one
// goroutine per account. Rows are in account order.
func (e *Engine) AgingSchedule(ctx context.Context, to time.Time) (AgingReport, error) {
	to = id.Day(to)
	ix := e.index(to)
	tb := ix.TrialBalance(to)

	var accounts []model.Account
	for _, row := range tb.Rows {
		if row.Account.Key.Type.AgingEligible() {
			accounts = append(accounts, row.Account)
		}
	}

	rows := make([]Aging, len(accounts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, acct := range accounts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows[i] = ageAccount(ix, tb, acct, to, e.ds.BaseCurrency)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return AgingReport{}, fmt.Errorf("aging schedule: %w", err)
	}
	e.logger.Debug("aging schedule computed", "accounts", len(rows), "as_of", to.Format(id.DateFormat))
	d := fromLedger(ix.Diagnostics())
	e.logDiagnostics("aging_schedule", d)
	return AgingReport{Rows: rows, Diagnostics: d}, nil
}

// ageAccount reads only from ix and tb, so it may run concurrently.
func ageAccount(ix *ledger.Index, tb ledger.TrialBalance, acct model.Account, to time.Time, base string) Aging {
	balance := acct.OpeningBalance
	if row, ok := tb.Row(acct.Key); ok {
		balance = row.SignedBalance
	}

	var movements []aging.Movement
	for _, p := range ix.AccountPostings(acct.Key) {
		if p.Excluded() {
			continue
		}
		amount := p.Debit
		if !acct.Key.Type.DebitNormal() {
			amount = p.Credit
		}
		if amount.Sign() > 0 {
			movements = append(movements, aging.Movement{Date: p.Date, Amount: amount})
		}
	}
	return Aging{
		Account:  acct,
		Currency: acct.HomeCurrency(base),
		AsOf:     to,
		Bucket:   aging.Allocate(balance, movements, to),
	}
}
