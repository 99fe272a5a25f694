package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the business kind of a transaction.
type TransactionType string

const (
	TransactionNormal       TransactionType = "normal"
	TransactionIncome       TransactionType = "income"
	TransactionExpense      TransactionType = "expense"
	TransactionRevenueOnly  TransactionType = "revenue_only"
	TransactionPurchaseOnly TransactionType = "purchase_only"
)

// ParseTransactionType accepts the canonical names; empty means normal.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case "":
		return TransactionNormal, nil
	case TransactionNormal, TransactionIncome, TransactionExpense,
		TransactionRevenueOnly, TransactionPurchaseOnly:
		return t, nil
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

// Nature is the canonical P&L reach of a transaction.
type Nature string

const (
	NatureNormal       Nature = "normal"
	NatureRevenueOnly  Nature = "revenue_only"
	NaturePurchaseOnly Nature = "purchase_only"
)

// Transaction is a business event that may or may not have been posted as
// one or more journal entries.
type Transaction struct {
	ID             string
	Type           TransactionType
	JournalEntryID string
	Date           time.Time
	Description    string
	Category       string
	ProgramID      string
	MasterTripID   string
	SupplierID     string
	CustomerID     string
	TreasuryID     string
	Amount         decimal.Decimal
	PurchasePrice  decimal.Decimal
	SellingPrice   decimal.Decimal
	CurrencyCode   string
	ExchangeRate   decimal.Decimal
	IsVoided       bool
	// Legacy side flags; older records carry the nature here instead of in Type.
	IsRevenueOnly  bool
	IsPurchaseOnly bool
}

// Natures normalizes Type and the legacy side flags into canonical natures.
// A record flagged both ways reports both.
func (t Transaction) Natures() []Nature {
	revenueOnly := t.Type == TransactionRevenueOnly || t.IsRevenueOnly
	purchaseOnly := t.Type == TransactionPurchaseOnly || t.IsPurchaseOnly
	switch {
	case revenueOnly && purchaseOnly:
		return []Nature{NatureRevenueOnly, NaturePurchaseOnly}
	case revenueOnly:
		return []Nature{NatureRevenueOnly}
	case purchaseOnly:
		return []Nature{NaturePurchaseOnly}
	}
	return []Nature{NatureNormal}
}

// Currency is one row of the global currency table.
type Currency struct {
	Code       string
	RateToBase decimal.Decimal
}

// Dataset is the complete, already-loaded input of one report request.
type Dataset struct {
	BaseCurrency string
	Accounts     []Account
	Entries      []JournalEntry
	Transactions []Transaction
	Currencies   []Currency
}
