package accounts

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerview/internal/model"
)

// SampleChart returns the starter account master data written by init for a
// travel agency keeping its books in base.
func SampleChart(base string) []model.Account {
	acct := func(at model.AccountType, id, name string) model.Account {
		return model.Account{Key: model.AccountKey{Type: at, ID: id}, Name: name}
	}
	usdCustomer := acct(model.AccountTypeCustomer, "C-002", "Gulf Corporate Travel")
	usdCustomer.OpeningBalance = decimal.NewFromInt(100)
	usdCustomer.OpeningCurrency = "USD"
	usdCustomer.OpeningBalanceBase = decimal.NewFromInt(5000)

	capital := acct(model.AccountTypeEquity, "capital", "Owner's capital")
	capital.OpeningBalance = decimal.NewFromInt(20000)
	capital.OpeningCurrency = base
	capital.OpeningBalanceBase = decimal.NewFromInt(20000)

	cash := acct(model.AccountTypeTreasury, "main", "Main cashbox")
	cash.OpeningBalance = decimal.NewFromInt(20000)
	cash.OpeningCurrency = base
	cash.OpeningBalanceBase = decimal.NewFromInt(20000)

	return []model.Account{
		cash,
		acct(model.AccountTypeTreasury, "bank", "Bank current account"),
		acct(model.AccountTypeCustomer, "C-001", "Walk-in customers"),
		usdCustomer,
		acct(model.AccountTypeEmployeeAdvance, "EMP-1", "Advance, sales agent"),
		acct(model.AccountTypeAsset, "equipment", "Office equipment"),
		acct(model.AccountTypeSupplier, "S-AIR", "National airline"),
		acct(model.AccountTypeSupplier, "S-HOTEL", "Makkah hotel"),
		acct(model.AccountTypeEmployeeLiability, "EMP-1", "Payable, sales agent"),
		acct(model.AccountTypePartner, "P-1", "Managing partner"),
		capital,
		acct(model.AccountTypeRevenue, "flight", "Flight ticket sales"),
		acct(model.AccountTypeRevenue, "umrah", "Umrah package sales"),
		acct(model.AccountTypeRevenue, "visa", "Visa services"),
		acct(model.AccountTypeExpense, "flight", "Flight ticket cost"),
		acct(model.AccountTypeExpense, "umrah", "Umrah package cost"),
		acct(model.AccountTypeExpense, "rent", "Office rent"),
		acct(model.AccountTypeExpense, "salaries", "Salaries"),
	}
}
