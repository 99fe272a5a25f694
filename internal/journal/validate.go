package journal

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerview/internal/model"
	"github.com/cleared-dev/ledgerview/internal/reconcile"
)

// Data-quality invariants reported by Check. The report engine recovers from
// every one of these silently; Check is the explicit, strict pass.
const (
	InvariantBalanced      = 1 // single-currency entries balance
	InvariantOneSide       = 2 // each line has exactly one positive side
	InvariantKnownAccount  = 3 // lines reference master data
	InvariantKnownCurrency = 4 // line currencies are in the currency table
	InvariantLinks         = 5 // transaction links resolve to exactly one entry
	InvariantDecimals      = 6 // at most 2 decimal places
)

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Invariant   int
	EntryID     string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, e.EntryID, e.Description)
}

// AccountChecker tests whether an account exists in master data.
type AccountChecker interface {
	Exists(key model.AccountKey) bool
}

// Check runs every data-quality invariant over ds.
func Check(ds *model.Dataset, accounts AccountChecker) []ValidationError {
	errs := ValidateEntries(ds.Entries, accounts, knownCurrencies(ds))
	return append(errs, ValidateLinks(ds.Transactions, ds.Entries)...)
}

func knownCurrencies(ds *model.Dataset) map[string]bool {
	known := map[string]bool{strings.ToUpper(ds.BaseCurrency): true}
	for _, c := range ds.Currencies {
		known[strings.ToUpper(strings.TrimSpace(c.Code))] = true
	}
	return known
}

// ValidateEntries checks line-level invariants. An empty currency code means
// the base currency and is always known.
func ValidateEntries(entries []model.JournalEntry, accounts AccountChecker, currencies map[string]bool) []ValidationError {
	var errs []ValidationError
	hundred := decimal.NewFromInt(100)

	for _, e := range entries {
		// Invariant 1: entries in one currency balance.
		if singleCurrency(e) {
			debit, credit := e.Totals()
			if !debit.Equal(credit) {
				errs = append(errs, ValidationError{
					Invariant:   InvariantBalanced,
					EntryID:     e.ID,
					Description: fmt.Sprintf("debits (%s) != credits (%s)", debit.StringFixed(2), credit.StringFixed(2)),
				})
			}
		}

		for i, l := range e.Lines {
			// Invariant 2: exactly one of debit/credit, never negative.
			hasDebit := !l.Debit.IsZero()
			hasCredit := !l.Credit.IsZero()
			if hasDebit == hasCredit || l.Debit.IsNegative() || l.Credit.IsNegative() {
				errs = append(errs, ValidationError{
					Invariant:   InvariantOneSide,
					EntryID:     e.ID,
					Description: fmt.Sprintf("line %d must have exactly one positive debit or credit", i+1),
				})
			}

			// Invariant 3: valid account references.
			if !accounts.Exists(l.Key()) {
				errs = append(errs, ValidationError{
					Invariant:   InvariantKnownAccount,
					EntryID:     e.ID,
					Description: fmt.Sprintf("line %d: unknown account %s", i+1, l.Key()),
				})
			}

			// Invariant 4: known currency.
			code := strings.ToUpper(strings.TrimSpace(l.CurrencyCode))
			if code != "" && !currencies[code] {
				errs = append(errs, ValidationError{
					Invariant:   InvariantKnownCurrency,
					EntryID:     e.ID,
					Description: fmt.Sprintf("line %d: unknown currency %q", i+1, l.CurrencyCode),
				})
			}

			// Invariant 6: exact decimals, no more than 2 places.
			for _, amt := range []decimal.Decimal{l.Debit, l.Credit} {
				if !amt.Mul(hundred).Equal(amt.Mul(hundred).Floor()) {
					errs = append(errs, ValidationError{
						Invariant:   InvariantDecimals,
						EntryID:     e.ID,
						Description: fmt.Sprintf("line %d: amount %s has more than 2 decimal places", i+1, amt),
					})
				}
			}
		}
	}
	return errs
}

// ValidateLinks reports transactions whose journal-entry id matches no entry
// or more than one. Voided transactions are ignored.
func ValidateLinks(txns []model.Transaction, entries []model.JournalEntry) []ValidationError {
	var errs []ValidationError
	for _, l := range reconcile.BuildFlagIndex(txns).Links(entries) {
		switch {
		case l.Dangling():
			errs = append(errs, ValidationError{
				Invariant:   InvariantLinks,
				EntryID:     l.EntryID,
				Description: fmt.Sprintf("transaction %s links to a missing entry", l.TransactionID),
			})
		case l.Ambiguous():
			errs = append(errs, ValidationError{
				Invariant:   InvariantLinks,
				EntryID:     l.EntryID,
				Description: fmt.Sprintf("transaction %s links to %d entries", l.TransactionID, l.Matches),
			})
		}
	}
	return errs
}

func singleCurrency(e model.JournalEntry) bool {
	if len(e.Lines) == 0 {
		return true
	}
	first := strings.ToUpper(e.Lines[0].CurrencyCode)
	for _, l := range e.Lines[1:] {
		if strings.ToUpper(l.CurrencyCode) != first {
			return false
		}
	}
	return true
}
