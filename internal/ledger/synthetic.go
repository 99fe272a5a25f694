package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerview/internal/id"
	"github.com/cleared-dev/ledgerview/internal/model"
)

const (
	unassignedID      = "unassigned"
	uncategorizedName = "uncategorized"
)

// syntheticEntry builds the postings a transaction would have produced had it
// been journalized:
//
//	income:        Dr treasury          / Cr revenue:<category>   Amount
//	expense:       Dr expense:<category> / Cr treasury           Amount
//	normal:        both pairs below
//	revenue_only:  Dr customer          / Cr revenue:<category>   SellingPrice
//	purchase_only: Dr expense:<category> / Cr supplier           PurchasePrice
//
// It reports false when no line has a non-zero amount.
func syntheticEntry(t model.Transaction) (model.JournalEntry, bool) {
	category := t.Category
	if category == "" {
		category = uncategorizedName
	}
	revenue := model.AccountKey{Type: model.AccountTypeRevenue, ID: category}
	expense := model.AccountKey{Type: model.AccountTypeExpense, ID: category}
	treasury := model.AccountKey{Type: model.AccountTypeTreasury, ID: orUnassigned(t.TreasuryID)}
	customer := model.AccountKey{Type: model.AccountTypeCustomer, ID: orUnassigned(t.CustomerID)}
	supplier := model.AccountKey{Type: model.AccountTypeSupplier, ID: orUnassigned(t.SupplierID)}

	var lines []model.JournalLine
	pair := func(dr, cr model.AccountKey, amount decimal.Decimal) {
		if amount.IsZero() {
			return
		}
		lines = append(lines,
			syntheticLine(t, dr, category, amount, decimal.Zero),
			syntheticLine(t, cr, category, decimal.Zero, amount),
		)
	}

	switch t.Type {
	case model.TransactionIncome:
		pair(treasury, revenue, t.Amount)
	case model.TransactionExpense:
		pair(expense, treasury, t.Amount)
	case model.TransactionNormal, model.TransactionRevenueOnly, model.TransactionPurchaseOnly:
		natures := t.Natures()
		revenueSide, costSide := true, true
		if len(natures) == 1 {
			revenueSide = natures[0] != model.NaturePurchaseOnly
			costSide = natures[0] != model.NatureRevenueOnly
		}
		if revenueSide {
			pair(customer, revenue, t.SellingPrice)
		}
		if costSide {
			pair(expense, supplier, t.PurchasePrice)
		}
	}

	if len(lines) == 0 {
		return model.JournalEntry{}, false
	}
	return model.JournalEntry{
		ID:          id.SyntheticEntryID(t.ID),
		Date:        t.Date,
		Description: t.Description,
		Reference:   t.ID,
		Lines:       lines,
	}, true
}

func syntheticLine(t model.Transaction, key model.AccountKey, category string, debit, credit decimal.Decimal) model.JournalLine {
	name := key.ID
	if key.Type.ProfitAndLoss() {
		name = category
	}
	return model.JournalLine{
		AccountType:  key.Type,
		AccountID:    key.ID,
		AccountName:  name,
		Debit:        debit,
		Credit:       credit,
		CurrencyCode: t.CurrencyCode,
		ExchangeRate: t.ExchangeRate,
		ProgramID:    t.ProgramID,
	}
}

func orUnassigned(s string) string {
	if s == "" {
		return unassignedID
	}
	return s
}
