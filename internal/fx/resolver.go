// Package fx converts line amounts between transaction, base and account
// currencies.
package fx

import (
	"strings"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerview/internal/model"
)

// Resolver returns effective conversion rates to the base currency.
//
// A rate that resolves to zero or below is replaced by 1. That keeps a single
// bad historical record from aborting a report, but the converted amount is
// then wrong: callers that need to know should check Degenerate and Negative
// after use.
type Resolver struct {
	base       string
	table      map[string]decimal.Decimal
	degenerate atomic.Int64
	negative   atomic.Int64
}

// NewResolver indexes the currency table. Later duplicates win.
func NewResolver(base string, currencies []model.Currency) *Resolver {
	table := make(map[string]decimal.Decimal, len(currencies))
	for _, c := range currencies {
		table[normalize(c.Code)] = c.RateToBase
	}
	return &Resolver{base: normalize(base), table: table}
}

// Base returns the base currency code.
func (r *Resolver) Base() string {
	return r.base
}

// Rate returns the rate converting an amount in code into the base currency.
// The account's own opening-balance pair wins over the table when its
// currency matches code.
func (r *Resolver) Rate(acct model.Account, code string) decimal.Decimal {
	code = normalize(code)
	if code == "" {
		code = r.base
	}

	if !acct.OpeningBalance.IsZero() && normalize(acct.OpeningCurrency) == code {
		return r.guard(acct.OpeningBalanceBase.Div(acct.OpeningBalance))
	}

	rate, ok := r.table[code]
	if !ok {
		return decimal.NewFromInt(1)
	}
	return r.guard(rate)
}

// ToBase converts amount (in code) into the base currency.
func (r *Resolver) ToBase(acct model.Account, code string, amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(r.Rate(acct, code))
}

// ToAccountCurrency converts a base-currency amount into the account's home
// currency.
func (r *Resolver) ToAccountCurrency(acct model.Account, baseAmount decimal.Decimal) decimal.Decimal {
	home := acct.HomeCurrency(r.base)
	if normalize(home) == r.base {
		return baseAmount
	}
	return baseAmount.Div(r.Rate(acct, home))
}

// Degenerate returns how many lookups resolved to a zero rate and fell back to 1.
func (r *Resolver) Degenerate() int {
	return int(r.degenerate.Load())
}

// Negative returns how many lookups resolved to a negative rate and fell
// back to 1. These usually mean an opening balance and its base amount were
// entered with opposite signs.
func (r *Resolver) Negative() int {
	return int(r.negative.Load())
}

func (r *Resolver) guard(rate decimal.Decimal) decimal.Decimal {
	switch rate.Sign() {
	case 0:
		r.degenerate.Add(1)
	case -1:
		r.negative.Add(1)
	default:
		return rate
	}
	return decimal.NewFromInt(1)
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
