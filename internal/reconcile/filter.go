package reconcile

import (
	"github.com/cleared-dev/ledgerview/internal/model"
)

// Reason explains a filter verdict.
type Reason string

const (
	ReasonKeep Reason = "keep"
	// A purchase-only booking was posted with a revenue side.
	ReasonPurchaseOnlyRevenue Reason = "purchase_only_revenue"
	// A revenue-only booking was posted with a cost side.
	ReasonRevenueOnlyCost Reason = "revenue_only_cost"
	// A booking drawn from a bulk-purchased program re-posted the program's cost.
	ReasonBulkProgramCost Reason = "bulk_program_cost"
)

// Decide classifies one line of an entry whose flags are f.
//
// Older journal entries recorded both a revenue and a cost side for every
// booking regardless of the transaction's nature, which double counts P&L.
// Decide is pure; ledger statements never consult it.
func Decide(line model.JournalLine, f EntryFlags) Reason {
	revenueOnly := f.Natures.Has(model.NatureRevenueOnly)
	purchaseOnly := f.Natures.Has(model.NaturePurchaseOnly)

	switch line.AccountType {
	case model.AccountTypeRevenue, model.AccountTypeCustomer:
		if purchaseOnly && !revenueOnly {
			return ReasonPurchaseOnlyRevenue
		}
	case model.AccountTypeExpense, model.AccountTypeSupplier:
		if revenueOnly && !purchaseOnly {
			return ReasonRevenueOnlyCost
		}
		if f.BulkProgram && !purchaseOnly {
			return ReasonBulkProgramCost
		}
	case model.AccountTypePartner, model.AccountTypeEmployeeLiability,
		model.AccountTypeEmployeeAdvance, model.AccountTypeTreasury,
		model.AccountTypeAsset, model.AccountTypeEquity:
	}
	return ReasonKeep
}

// Exclude reports whether line must be left out of P&L aggregation.
func Exclude(line model.JournalLine, f EntryFlags) bool {
	return Decide(line, f) != ReasonKeep
}
