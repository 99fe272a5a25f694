package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AccountType classifies the ledgers an agency posts to.
type AccountType string

const (
	AccountTypeCustomer          AccountType = "customer"
	AccountTypeSupplier          AccountType = "supplier"
	AccountTypePartner           AccountType = "partner"
	AccountTypeEmployeeLiability AccountType = "employee_liability"
	AccountTypeEmployeeAdvance   AccountType = "employee_advance"
	AccountTypeTreasury          AccountType = "treasury"
	AccountTypeRevenue           AccountType = "revenue"
	AccountTypeExpense           AccountType = "expense"
	AccountTypeAsset             AccountType = "asset"
	AccountTypeEquity            AccountType = "equity"
)

// AccountTypes lists every account type in report order.
var AccountTypes = []AccountType{
	AccountTypeTreasury,
	AccountTypeCustomer,
	AccountTypeEmployeeAdvance,
	AccountTypeAsset,
	AccountTypeSupplier,
	AccountTypeEmployeeLiability,
	AccountTypePartner,
	AccountTypeEquity,
	AccountTypeRevenue,
	AccountTypeExpense,
}

// ParseAccountType accepts the canonical lower-case names.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown account type %q", s)
	}
	return t, nil
}

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeCustomer, AccountTypeSupplier, AccountTypePartner,
		AccountTypeEmployeeLiability, AccountTypeEmployeeAdvance, AccountTypeTreasury,
		AccountTypeRevenue, AccountTypeExpense, AccountTypeAsset, AccountTypeEquity:
		return true
	}
	return false
}

// DebitNormal reports whether balances of this type grow with debits.
func (t AccountType) DebitNormal() bool {
	switch t {
	case AccountTypeCustomer, AccountTypeTreasury, AccountTypeEmployeeAdvance,
		AccountTypeAsset, AccountTypeExpense:
		return true
	case AccountTypeSupplier, AccountTypeEmployeeLiability, AccountTypePartner,
		AccountTypeEquity, AccountTypeRevenue:
		return false
	}
	return true
}

// AgingEligible reports whether receivable/payable aging applies.
func (t AccountType) AgingEligible() bool {
	return t == AccountTypeCustomer || t == AccountTypeSupplier
}

// ProfitAndLoss reports whether the type feeds the income statement.
func (t AccountType) ProfitAndLoss() bool {
	return t == AccountTypeRevenue || t == AccountTypeExpense
}

// Signed returns debit-credit for debit-normal types and credit-debit otherwise.
func (t AccountType) Signed(debit, credit decimal.Decimal) decimal.Decimal {
	if t.DebitNormal() {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

// Order returns the position of t in AccountTypes, or len(AccountTypes) if unknown.
func (t AccountType) Order() int {
	for i, at := range AccountTypes {
		if at == t {
			return i
		}
	}
	return len(AccountTypes)
}

// AccountKey identifies an account across all master-data tables.
type AccountKey struct {
	Type AccountType
	ID   string
}

func (k AccountKey) String() string {
	return string(k.Type) + ":" + k.ID
}

// Less orders keys by type (report order) then id.
func (k AccountKey) Less(o AccountKey) bool {
	if k.Type != o.Type {
		return k.Type.Order() < o.Type.Order()
	}
	return k.ID < o.ID
}

// Account is one row of account master data. Accounts are never mutated
// by the engine.
type Account struct {
	Key                AccountKey
	Name               string
	OpeningBalance     decimal.Decimal // in OpeningCurrency
	OpeningCurrency    string
	OpeningBalanceBase decimal.Decimal // same balance in the base currency
}

// HomeCurrency is the currency the account's own balance is kept in.
func (a Account) HomeCurrency(base string) string {
	if a.OpeningCurrency == "" {
		return base
	}
	return a.OpeningCurrency
}

// Placeholder materializes an account that is referenced but has no master data.
func Placeholder(key AccountKey, name string) Account {
	return Account{Key: key, Name: name}
}
