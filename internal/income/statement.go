package income

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerview/internal/ledger"
	"github.com/cleared-dev/ledgerview/internal/model"
)

// Breakdown splits revenue or direct cost by service line.
type Breakdown struct {
	Flight            decimal.Decimal
	PilgrimagePackage decimal.Decimal
	OtherService      decimal.Decimal
	Total             decimal.Decimal
}

func zeroBreakdown() Breakdown {
	return Breakdown{
		Flight:            decimal.Zero,
		PilgrimagePackage: decimal.Zero,
		OtherService:      decimal.Zero,
		Total:             decimal.Zero,
	}
}

func (b *Breakdown) add(cat Category, amount decimal.Decimal) {
	switch cat {
	case CategoryFlight:
		b.Flight = b.Flight.Add(amount)
	case CategoryPilgrimagePackage:
		b.PilgrimagePackage = b.PilgrimagePackage.Add(amount)
	default:
		b.OtherService = b.OtherService.Add(amount)
	}
	b.Total = b.Total.Add(amount)
}

// Line is one account's contribution to the statement, in base currency.
type Line struct {
	Account    model.AccountKey
	Name       string
	Category   Category
	Amount     decimal.Decimal
	Classified bool
}

// Statement is the income statement for a window. Amounts are in the base
// currency.
type Statement struct {
	From           time.Time
	To             time.Time
	Revenue        Breakdown
	DirectCost     Breakdown
	Administrative decimal.Decimal
	GrossProfit    decimal.Decimal
	NetProfit      decimal.Decimal
	Lines          []Line
	// Unclassified counts postings that fell back to a default bucket.
	Unclassified int
	// Clearing counts postings dropped as counterparty postings.
	Clearing int
}

// Aggregate rolls the kept revenue and expense postings dated within
// [from, to] into a statement. Postings excluded by reconciliation and
// postings to other account types are ignored.
func Aggregate(postings []ledger.Posting, from, to time.Time, c *Classifier) Statement {
	st := Statement{
		From:           from,
		To:             to,
		Revenue:        zeroBreakdown(),
		DirectCost:     zeroBreakdown(),
		Administrative: decimal.Zero,
	}
	lines := make(map[model.AccountKey]*Line)

	for _, p := range postings {
		if p.Excluded() || !p.Key().Type.ProfitAndLoss() {
			continue
		}
		if p.Date.Before(from) || p.Date.After(to) {
			continue
		}
		name := p.Account.Name
		if name == "" {
			name = p.Line.AccountName
		}
		if c.Clearing(p.Key().ID, name) {
			st.Clearing++
			continue
		}

		var (
			cat    Category
			ok     bool
			amount decimal.Decimal
		)
		switch p.Key().Type {
		case model.AccountTypeRevenue:
			cat, ok = c.Revenue(p.Key().ID, name)
			amount = p.CreditBase.Sub(p.DebitBase)
			st.Revenue.add(cat, amount)
		case model.AccountTypeExpense:
			cat, ok = c.Expense(p.Key().ID, name)
			amount = p.DebitBase.Sub(p.CreditBase)
			if cat == CategoryAdministrative {
				st.Administrative = st.Administrative.Add(amount)
			} else {
				st.DirectCost.add(cat, amount)
			}
		}
		if !ok {
			st.Unclassified++
		}

		l, seen := lines[p.Key()]
		if !seen {
			l = &Line{Account: p.Key(), Name: name, Category: cat, Amount: decimal.Zero, Classified: ok}
			lines[p.Key()] = l
		}
		l.Amount = l.Amount.Add(amount)
	}

	st.GrossProfit = st.Revenue.Total.Sub(st.DirectCost.Total)
	st.NetProfit = st.GrossProfit.Sub(st.Administrative)

	st.Lines = make([]Line, 0, len(lines))
	for _, l := range lines {
		st.Lines = append(st.Lines, *l)
	}
	sort.Slice(st.Lines, func(i, j int) bool {
		return st.Lines[i].Account.Less(st.Lines[j].Account)
	})
	return st
}
