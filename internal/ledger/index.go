// Package ledger flattens journal entries and unposted transactions into
// dated postings and derives trial balances and account statements from them.
package ledger

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerview/internal/fx"
	"github.com/cleared-dev/ledgerview/internal/id"
	"github.com/cleared-dev/ledgerview/internal/model"
	"github.com/cleared-dev/ledgerview/internal/reconcile"
)

// Posting is one journal line placed on the timeline, with its amounts
// converted and its reconciliation verdict attached.
type Posting struct {
	Seq         int
	EntryID     string
	Date        time.Time
	Description string
	Reference   string
	Line        model.JournalLine
	Account     model.Account
	Synthetic   bool

	DebitBase  decimal.Decimal
	CreditBase decimal.Decimal
	// Debit and Credit in the account's home currency.
	Debit  decimal.Decimal
	Credit decimal.Decimal

	Reason reconcile.Reason
}

// Key returns the account the posting belongs to.
func (p Posting) Key() model.AccountKey {
	return p.Account.Key
}

// Signed returns the account-currency movement under the account's polarity.
func (p Posting) Signed() decimal.Decimal {
	return p.Account.Key.Type.Signed(p.Debit, p.Credit)
}

// Excluded reports whether the reconciliation filter dropped the posting.
func (p Posting) Excluded() bool {
	return p.Reason != reconcile.ReasonKeep
}

// Diagnostics counts the silent recoveries made while indexing.
type Diagnostics struct {
	MissingAccounts   int
	DegenerateRates   int
	NegativeRates     int
	AmbiguousLinks    int
	VoidedEntries     int
	ExcludedLines     int
	SyntheticPostings int
}

// LogValue implements slog.LogValuer.
func (d Diagnostics) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("missing_accounts", d.MissingAccounts),
		slog.Int("degenerate_rates", d.DegenerateRates),
		slog.Int("negative_rates", d.NegativeRates),
		slog.Int("ambiguous_links", d.AmbiguousLinks),
		slog.Int("voided_entries", d.VoidedEntries),
		slog.Int("excluded_lines", d.ExcludedLines),
		slog.Int("synthetic_postings", d.SyntheticPostings),
	)
}

// Problems counts the recoveries caused by bad input data, as opposed to
// lines the reconciliation rules dropped on purpose.
func (d Diagnostics) Problems() int {
	return d.MissingAccounts + d.DegenerateRates + d.NegativeRates + d.AmbiguousLinks
}

// Options controls index construction.
type Options struct {
	// Reconcile applies the reconciliation filter verdicts.
	Reconcile bool
}

// Index is the per-request, read-only timeline of postings up to a cutoff.
type Index struct {
	cutoff      time.Time
	rates       *fx.Resolver
	postings    []Posting
	byAccount   map[model.AccountKey][]int
	accounts    map[model.AccountKey]model.Account
	diagnostics Diagnostics
}

type builder struct {
	ix   *Index
	opts Options
}

// BuildIndex walks every entry dated on or before cutoff, plus a synthetic
// entry for each live transaction that never materialized into a journal
// entry. ds is not modified.
func BuildIndex(ds *model.Dataset, cutoff time.Time, rates *fx.Resolver, flags *reconcile.FlagIndex, opts Options) *Index {
	cutoff = id.Day(cutoff)
	ix := &Index{
		cutoff:    cutoff,
		rates:     rates,
		byAccount: make(map[model.AccountKey][]int),
		accounts:  make(map[model.AccountKey]model.Account, len(ds.Accounts)),
	}
	for _, a := range ds.Accounts {
		ix.accounts[a.Key] = a
	}
	b := &builder{ix: ix, opts: opts}

	// Transactions whose journal-entry id resolves to at least one entry are
	// already represented by that entry.
	journalized := make(map[[2]string]bool)
	for _, l := range flags.Links(ds.Entries) {
		if l.Ambiguous() {
			ix.diagnostics.AmbiguousLinks++
		}
		if !l.Dangling() {
			journalized[[2]string{l.TransactionID, l.EntryID}] = true
		}
	}

	for _, e := range ds.Entries {
		if id.Day(e.Date).After(cutoff) {
			continue
		}
		if flags.Voided(e.ID) {
			ix.diagnostics.VoidedEntries++
			continue
		}
		b.addEntry(e, flags.Resolve(e), false)
	}

	for _, t := range ds.Transactions {
		if t.IsVoided {
			continue
		}
		if journalized[[2]string{t.ID, t.JournalEntryID}] {
			continue
		}
		entry, ok := syntheticEntry(t)
		if !ok || id.Day(entry.Date).After(cutoff) {
			continue
		}
		f := reconcile.EntryFlags{
			Natures:     reconcile.NewNatureSet(t.Natures()...),
			ProgramID:   t.ProgramID,
			BulkProgram: flags.BulkProgram(t.ProgramID),
		}
		b.addEntry(entry, f, true)
	}

	sort.SliceStable(ix.postings, func(i, j int) bool {
		return ix.postings[i].Date.Before(ix.postings[j].Date)
	})
	for i, p := range ix.postings {
		ix.byAccount[p.Key()] = append(ix.byAccount[p.Key()], i)
	}
	ix.diagnostics.DegenerateRates = rates.Degenerate()
	ix.diagnostics.NegativeRates = rates.Negative()
	return ix
}

func (b *builder) addEntry(e model.JournalEntry, f reconcile.EntryFlags, synthetic bool) {
	for _, l := range e.Lines {
		acct := b.account(l)
		p := Posting{
			Seq:         len(b.ix.postings),
			EntryID:     e.ID,
			Date:        id.Day(e.Date),
			Description: e.Description,
			Reference:   e.Reference,
			Line:        l,
			Account:     acct,
			Synthetic:   synthetic,
			Reason:      reconcile.ReasonKeep,
		}
		p.DebitBase = b.ix.rates.ToBase(acct, l.CurrencyCode, l.Debit)
		p.CreditBase = b.ix.rates.ToBase(acct, l.CurrencyCode, l.Credit)
		if sameCurrency(l.CurrencyCode, acct.HomeCurrency(b.ix.rates.Base()), b.ix.rates.Base()) {
			p.Debit, p.Credit = l.Debit, l.Credit
		} else {
			p.Debit = b.ix.rates.ToAccountCurrency(acct, p.DebitBase)
			p.Credit = b.ix.rates.ToAccountCurrency(acct, p.CreditBase)
		}
		if b.opts.Reconcile {
			p.Reason = reconcile.Decide(l, f)
			if p.Excluded() {
				b.ix.diagnostics.ExcludedLines++
			}
		}
		if synthetic {
			b.ix.diagnostics.SyntheticPostings++
		}
		b.ix.postings = append(b.ix.postings, p)
	}
}

// account returns master data for the line's account, materializing a
// zero-opening placeholder on first sight of an unknown id.
func (b *builder) account(l model.JournalLine) model.Account {
	key := l.Key()
	if a, ok := b.ix.accounts[key]; ok {
		return a
	}
	a := model.Placeholder(key, l.AccountName)
	b.ix.accounts[key] = a
	b.ix.diagnostics.MissingAccounts++
	return a
}

// Cutoff returns the inclusive date the index was built up to.
func (ix *Index) Cutoff() time.Time {
	return ix.cutoff
}

// Diagnostics returns the recoveries made while indexing.
func (ix *Index) Diagnostics() Diagnostics {
	return ix.diagnostics
}

// Postings returns every posting in date order. The slice must not be modified.
func (ix *Index) Postings() []Posting {
	return ix.postings
}

// AccountPostings returns the postings of one account in date order.
func (ix *Index) AccountPostings(key model.AccountKey) []Posting {
	idx := ix.byAccount[key]
	out := make([]Posting, len(idx))
	for i, n := range idx {
		out[i] = ix.postings[n]
	}
	return out
}

// Account returns master data (or a placeholder) for key.
func (ix *Index) Account(key model.AccountKey) (model.Account, bool) {
	a, ok := ix.accounts[key]
	return a, ok
}

// AccountKeys returns every known account key in report order.
func (ix *Index) AccountKeys() []model.AccountKey {
	keys := make([]model.AccountKey, 0, len(ix.accounts))
	for k := range ix.accounts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

func sameCurrency(code, home, base string) bool {
	if code == "" {
		code = base
	}
	return strings.EqualFold(strings.TrimSpace(code), strings.TrimSpace(home))
}
