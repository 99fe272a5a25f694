// Package aging spreads an outstanding receivable or payable balance over
// age buckets, newest movements first.
package aging

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerview/internal/id"
)

// Bucket boundaries in days since the movement date, inclusive.
const (
	CurrentDays = 30
	Days30Limit = 60
	Days60Limit = 90
)

// Movement is one dated amount that grew the balance.
type Movement struct {
	Date   time.Time
	Amount decimal.Decimal
}

// Bucket is an aged balance. The four buckets always sum to Total.
type Bucket struct {
	Current decimal.Decimal
	Days30  decimal.Decimal
	Days60  decimal.Decimal
	Over90  decimal.Decimal
	Total   decimal.Decimal
}

// Zero returns a bucket with every field set to zero.
func Zero() Bucket {
	return Bucket{
		Current: decimal.Zero,
		Days30:  decimal.Zero,
		Days60:  decimal.Zero,
		Over90:  decimal.Zero,
		Total:   decimal.Zero,
	}
}

// Sum returns Current+Days30+Days60+Over90.
func (b Bucket) Sum() decimal.Decimal {
	return b.Current.Add(b.Days30).Add(b.Days60).Add(b.Over90)
}

func (b *Bucket) add(days int, amount decimal.Decimal) {
	switch {
	case days <= CurrentDays:
		b.Current = b.Current.Add(amount)
	case days <= Days30Limit:
		b.Days30 = b.Days30.Add(amount)
	case days <= Days60Limit:
		b.Days60 = b.Days60.Add(amount)
	default:
		b.Over90 = b.Over90.Add(amount)
	}
}

// Allocate attributes balance to the most recent movements first. Balance
// not covered by any movement is treated as older than 90 days. A balance of
// zero or less ages to an all-zero bucket. movements is not modified.
func Allocate(balance decimal.Decimal, movements []Movement, asOf time.Time) Bucket {
	b := Zero()
	if balance.Sign() <= 0 {
		return b
	}
	b.Total = balance

	sorted := make([]Movement, len(movements))
	copy(sorted, movements)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	remaining := balance
	for _, m := range sorted {
		if remaining.Sign() <= 0 {
			break
		}
		if m.Amount.Sign() <= 0 {
			continue
		}
		allocated := decimal.Min(m.Amount, remaining)
		b.add(id.DaysBetween(m.Date, asOf), allocated)
		remaining = remaining.Sub(allocated)
	}
	if remaining.Sign() > 0 {
		b.Over90 = b.Over90.Add(remaining)
	}
	return b
}
