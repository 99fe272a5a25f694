package income

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerview/internal/fx"
	"github.com/cleared-dev/ledgerview/internal/ledger"
	"github.com/cleared-dev/ledgerview/internal/model"
	"github.com/cleared-dev/ledgerview/internal/reconcile"
)

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func line(at model.AccountType, id string, debit, credit string) model.JournalLine {
	return model.JournalLine{AccountType: at, AccountID: id, Debit: dec(debit), Credit: dec(credit)}
}

func postings(t *testing.T, ds *model.Dataset, to string) []ledger.Posting {
	t.Helper()
	rates := fx.NewResolver(ds.BaseCurrency, ds.Currencies)
	ix := ledger.BuildIndex(ds, date(to), rates, reconcile.BuildFlagIndex(ds.Transactions), ledger.Options{Reconcile: true})
	return ix.Postings()
}

func TestClassifier(t *testing.T) {
	c := NewClassifier(DefaultRules())

	tests := []struct {
		name    string
		at      model.AccountType
		id      string
		acct    string
		want    Category
		matched bool
	}{
		{"flight revenue", model.AccountTypeRevenue, "R1", "Flight tickets", CategoryFlight, true},
		{"case folded", model.AccountTypeRevenue, "R2", "UMRAH PROGRAMS", CategoryPilgrimagePackage, true},
		{"flight wins over package", model.AccountTypeExpense, "E1", "Package air tickets", CategoryFlight, true},
		{"administrative first", model.AccountTypeExpense, "E2", "Office rent", CategoryAdministrative, true},
		{"arabic payroll", model.AccountTypeExpense, "E3", "رواتب الموظفين", CategoryAdministrative, true},
		{"arabic pilgrimage", model.AccountTypeRevenue, "R3", "إيرادات عمرة", CategoryPilgrimagePackage, true},
		{"id carries the keyword", model.AccountTypeRevenue, "hajj-2026", "", CategoryPilgrimagePackage, true},
		{"unclassified revenue", model.AccountTypeRevenue, "R4", "Visa services", CategoryOtherService, false},
		{"unclassified expense", model.AccountTypeExpense, "E4", "Visa fees", CategoryOtherService, false},
	}
	for _, tt := range tests {
		var (
			got Category
			ok  bool
		)
		if tt.at == model.AccountTypeRevenue {
			got, ok = c.Revenue(tt.id, tt.acct)
		} else {
			got, ok = c.Expense(tt.id, tt.acct)
		}
		assert.Equal(t, tt.want, got, tt.name)
		assert.Equal(t, tt.matched, ok, tt.name)
	}

	assert.True(t, c.Clearing("R9", "Customer clearing"))
	assert.True(t, c.Clearing("E9", "تسوية نقدية"))
	assert.False(t, c.Clearing("R1", "Flight tickets"))
}

func TestClassifier_UnclassifiedExpenseBucket(t *testing.T) {
	r := DefaultRules()
	r.UnclassifiedExpense = CategoryAdministrative
	require.NoError(t, r.Validate())

	got, ok := NewClassifier(r).Expense("E4", "Visa fees")
	assert.Equal(t, CategoryAdministrative, got)
	assert.False(t, ok)

	r.UnclassifiedExpense = CategoryFlight
	assert.Error(t, r.Validate())
}

func TestAggregate_RevenueOnlyAndBulkPurchase(t *testing.T) {
	ds := &model.Dataset{
		BaseCurrency: "EGP",
		Accounts: []model.Account{
			{Key: model.AccountKey{Type: model.AccountTypeRevenue, ID: "umrah"}, Name: "Umrah revenue"},
			{Key: model.AccountKey{Type: model.AccountTypeExpense, ID: "umrah"}, Name: "Umrah cost"},
		},
		Entries: []model.JournalEntry{
			{ID: "JE-A", Date: date("2026-01-05"), Lines: []model.JournalLine{
				line(model.AccountTypeCustomer, "C1", "1000", "0"),
				line(model.AccountTypeRevenue, "umrah", "0", "1000"),
			}},
			{ID: "JE-B", Date: date("2026-01-20"), Lines: []model.JournalLine{
				line(model.AccountTypeSupplier, "S1", "0", "400"),
				line(model.AccountTypeExpense, "umrah", "400", "0"),
			}},
		},
		Transactions: []model.Transaction{
			{ID: "T-A", JournalEntryID: "JE-A", Type: model.TransactionRevenueOnly, ProgramID: "P1"},
			{ID: "T-B", JournalEntryID: "JE-B", Type: model.TransactionPurchaseOnly, ProgramID: "P1"},
		},
	}

	st := Aggregate(postings(t, ds, "2026-01-31"), date("2026-01-01"), date("2026-01-31"), NewClassifier(DefaultRules()))

	assert.True(t, st.Revenue.Total.Equal(dec("1000")))
	assert.True(t, st.Revenue.PilgrimagePackage.Equal(dec("1000")))
	assert.True(t, st.DirectCost.Total.Equal(dec("400")))
	assert.True(t, st.GrossProfit.Equal(dec("600")))
	assert.True(t, st.NetProfit.Equal(dec("600")))
	assert.Zero(t, st.Unclassified)
	require.Len(t, st.Lines, 2)
	assert.Equal(t, model.AccountTypeRevenue, st.Lines[0].Account.Type)
}

func TestAggregate_PurchaseOnlyDropsRevenueSide(t *testing.T) {
	ds := &model.Dataset{
		BaseCurrency: "EGP",
		Entries: []model.JournalEntry{
			{ID: "JE-1", Date: date("2026-02-10"), Lines: []model.JournalLine{
				line(model.AccountTypeCustomer, "C1", "900", "0"),
				line(model.AccountTypeRevenue, "flight-sales", "0", "900"),
				line(model.AccountTypeExpense, "flight-cost", "700", "0"),
				line(model.AccountTypeSupplier, "S1", "0", "700"),
			}},
		},
		Transactions: []model.Transaction{
			{ID: "T1", JournalEntryID: "JE-1", Type: model.TransactionPurchaseOnly},
		},
	}

	st := Aggregate(postings(t, ds, "2026-02-28"), date("2026-02-01"), date("2026-02-28"), NewClassifier(DefaultRules()))

	assert.True(t, st.Revenue.Total.IsZero(), "customer-side revenue is excluded")
	assert.True(t, st.DirectCost.Flight.Equal(dec("700")), "supplier-side cost is retained")
	assert.True(t, st.GrossProfit.Equal(dec("-700")))
}

func TestAggregate_WindowClearingAndAdministrative(t *testing.T) {
	ds := &model.Dataset{
		BaseCurrency: "EGP",
		Entries: []model.JournalEntry{
			{ID: "JE-1", Date: date("2025-12-31"), Lines: []model.JournalLine{
				line(model.AccountTypeRevenue, "R1", "0", "5000"),
				line(model.AccountTypeTreasury, "main", "5000", "0"),
			}},
			{ID: "JE-2", Date: date("2026-01-15"), Lines: []model.JournalLine{
				{AccountType: model.AccountTypeExpense, AccountID: "E1", AccountName: "Office rent", Debit: dec("300"), Credit: decimal.Zero},
				{AccountType: model.AccountTypeRevenue, AccountID: "R9", AccountName: "Customer clearing", Debit: decimal.Zero, Credit: dec("50")},
				{AccountType: model.AccountTypeRevenue, AccountID: "R4", AccountName: "Visa services", Debit: decimal.Zero, Credit: dec("120")},
				line(model.AccountTypeTreasury, "main", "0", "370"),
			}},
		},
	}

	st := Aggregate(postings(t, ds, "2026-01-31"), date("2026-01-01"), date("2026-01-31"), NewClassifier(DefaultRules()))

	assert.True(t, st.Revenue.Total.Equal(dec("120")), "prior-period revenue is outside the window")
	assert.True(t, st.Revenue.OtherService.Equal(dec("120")))
	assert.True(t, st.Administrative.Equal(dec("300")))
	assert.True(t, st.GrossProfit.Equal(dec("120")))
	assert.True(t, st.NetProfit.Equal(dec("-180")))
	assert.Equal(t, 1, st.Clearing)
	assert.Equal(t, 1, st.Unclassified)
}
