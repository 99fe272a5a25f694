package report

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerview/internal/model"
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

func key(at model.AccountType, id string) model.AccountKey {
	return model.AccountKey{Type: at, ID: id}
}

func line(k model.AccountKey, debit, credit string) model.JournalLine {
	return model.JournalLine{AccountType: k.Type, AccountID: k.ID, Debit: dec(debit), Credit: dec(credit)}
}

var (
	cust = key(model.AccountTypeCustomer, "C1")
	supp = key(model.AccountTypeSupplier, "S1")
	rev  = key(model.AccountTypeRevenue, "umrah")
	exp  = key(model.AccountTypeExpense, "umrah")
	cash = key(model.AccountTypeTreasury, "main")
)

func dataset() *model.Dataset {
	return &model.Dataset{
		BaseCurrency: "EGP",
		Accounts: []model.Account{
			{Key: cust, Name: "Customer One", OpeningBalance: dec("200")},
			{Key: supp, Name: "Supplier One"},
			{Key: rev, Name: "Umrah revenue"},
			{Key: exp, Name: "Umrah cost"},
			{Key: cash, Name: "Main cashbox"},
			{Key: key(model.AccountTypeCustomer, "idle"), Name: "Idle customer"},
		},
		Entries: []model.JournalEntry{
			{ID: "JE-A", Date: date("2026-01-05"), Lines: []model.JournalLine{line(cust, "1000", "0"), line(rev, "0", "1000")}},
			{ID: "JE-B", Date: date("2026-01-20"), Lines: []model.JournalLine{line(supp, "0", "400"), line(exp, "400", "0")}},
			{ID: "JE-C", Date: date("2026-01-25"), Lines: []model.JournalLine{line(cash, "300", "0"), line(cust, "0", "300")}},
		},
		Transactions: []model.Transaction{
			{ID: "T-A", JournalEntryID: "JE-A", Type: model.TransactionRevenueOnly, ProgramID: "P1"},
			{ID: "T-B", JournalEntryID: "JE-B", Type: model.TransactionPurchaseOnly, ProgramID: "P1"},
		},
	}
}

func TestEngine_TrialBalanceAndIncome(t *testing.T) {
	e := NewEngine(dataset())

	tb, err := e.TrialBalance(date("2026-01-01"), date("2026-01-31"))
	require.NoError(t, err)
	row, ok := tb.Row(cust)
	require.True(t, ok)
	assert.True(t, row.SignedBalance.Equal(dec("900")))
	assert.True(t, tb.PeriodDebit.Equal(tb.PeriodCredit))

	is, err := e.IncomeStatement(date("2026-01-01"), date("2026-01-31"))
	require.NoError(t, err)
	assert.True(t, is.Revenue.Total.Equal(dec("1000")))
	assert.True(t, is.DirectCost.Total.Equal(dec("400")))
	assert.True(t, is.GrossProfit.Equal(dec("600")))
	assert.True(t, is.Diagnostics.Clean())
}

func TestEngine_InvalidWindow(t *testing.T) {
	e := NewEngine(dataset())

	_, err := e.TrialBalance(date("2026-02-01"), date("2026-01-31"))
	assert.ErrorIs(t, err, ErrInvalidWindow)
	_, err = e.AccountLedger(cust, date("2026-02-01"), date("2026-01-31"))
	assert.ErrorIs(t, err, ErrInvalidWindow)
	_, err = e.IncomeStatement(date("2026-02-01"), date("2026-01-31"))
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestEngine_AccountLedger(t *testing.T) {
	e := NewEngine(dataset())

	st, err := e.AccountLedger(cust, date("2026-01-10"), date("2026-01-31"))
	require.NoError(t, err)
	assert.True(t, st.OpeningBalance.Equal(dec("1200")))
	require.Len(t, st.Entries, 1)
	assert.True(t, st.ClosingBalance.Equal(dec("900")))

	_, err = e.AccountLedger(key(model.AccountTypeCustomer, "nobody"), date("2026-01-01"), date("2026-01-31"))
	assert.ErrorIs(t, err, ErrUnknownAccount)
}

func TestEngine_Aging(t *testing.T) {
	e := NewEngine(dataset())

	ar, err := e.Aging(cust, date("2026-04-10"))
	require.NoError(t, err)
	require.Len(t, ar.Rows, 1)
	assert.True(t, ar.Diagnostics.Clean())
	a := ar.Rows[0]
	// 900 outstanding, fully covered by the 01-05 booking 95 days earlier.
	assert.True(t, a.Total.Equal(dec("900")))
	assert.True(t, a.Over90.Equal(dec("900")))
	assert.True(t, a.Sum().Equal(a.Total))
	assert.Equal(t, "EGP", a.Currency)

	ar, err = e.Aging(supp, date("2026-02-01"))
	require.NoError(t, err)
	require.Len(t, ar.Rows, 1)
	assert.True(t, ar.Rows[0].Current.Equal(dec("400")))

	_, err = e.Aging(rev, date("2026-02-01"))
	assert.ErrorIs(t, err, ErrNotAgingEligible)
	_, err = e.Aging(key(model.AccountTypeSupplier, "nobody"), date("2026-02-01"))
	assert.ErrorIs(t, err, ErrUnknownAccount)
}

func TestEngine_AgingSchedule(t *testing.T) {
	e := NewEngine(dataset())

	ar, err := e.AgingSchedule(context.Background(), date("2026-01-31"))
	require.NoError(t, err)
	assert.True(t, ar.Diagnostics.Clean())
	rows := ar.Rows
	require.Len(t, rows, 2, "idle accounts are skipped")
	assert.Equal(t, cust, rows[0].Account.Key)
	assert.Equal(t, supp, rows[1].Account.Key)
	for _, r := range rows {
		assert.True(t, r.Sum().Equal(r.Total), r.Account.Key.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.AgingSchedule(ctx, date("2026-01-31"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_WithoutReconciliationBalances(t *testing.T) {
	ds := dataset()
	ds.Entries = append(ds.Entries, model.JournalEntry{
		ID: "JE-D", Date: date("2026-01-28"),
		Lines: []model.JournalLine{line(cust, "70", "0"), line(rev, "0", "70"), line(exp, "70", "0"), line(supp, "0", "70")},
	})
	ds.Transactions = append(ds.Transactions, model.Transaction{ID: "T-D", JournalEntryID: "JE-D", Type: model.TransactionPurchaseOnly})

	filtered, err := NewEngine(ds).TrialBalance(date("2026-01-01"), date("2026-01-31"))
	require.NoError(t, err)
	assert.Equal(t, 2, filtered.Diagnostics.ExcludedLines)

	raw, err := NewEngine(ds, WithoutReconciliation()).TrialBalance(date("2026-01-01"), date("2026-01-31"))
	require.NoError(t, err)
	assert.Zero(t, raw.Diagnostics.ExcludedLines)
	assert.True(t, raw.PeriodDebit.Equal(raw.PeriodCredit))
}

func TestEngine_LogsDiagnostics(t *testing.T) {
	ds := dataset()
	ds.Entries = append(ds.Entries, model.JournalEntry{
		ID: "JE-X", Date: date("2026-01-30"),
		Lines: []model.JournalLine{line(key(model.AccountTypePartner, "ghost"), "0", "10"), line(cash, "10", "0")},
	})
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tb, err := NewEngine(ds, WithLogger(logger)).TrialBalance(date("2026-01-01"), date("2026-01-31"))
	require.NoError(t, err)
	assert.Equal(t, 1, fromLedger(tb.Diagnostics).Problems())
	assert.Contains(t, buf.String(), "report=trial_balance")
	assert.Contains(t, buf.String(), "diagnostics.missing_accounts=1")
}

func TestEngine_LedgerAndAgingCarryDiagnostics(t *testing.T) {
	ds := dataset()
	ds.Entries = append(ds.Entries, model.JournalEntry{
		ID: "JE-X", Date: date("2026-01-30"),
		Lines: []model.JournalLine{line(key(model.AccountTypePartner, "ghost"), "0", "10"), line(cust, "10", "0")},
	})
	e := NewEngine(ds)

	st, err := e.AccountLedger(cust, date("2026-01-01"), date("2026-01-31"))
	require.NoError(t, err)
	assert.Equal(t, 1, st.Diagnostics.MissingAccounts)
	assert.Equal(t, 1, st.Diagnostics.Problems())

	ar, err := e.Aging(cust, date("2026-01-31"))
	require.NoError(t, err)
	assert.Equal(t, 1, ar.Diagnostics.Problems())

	ar, err = e.AgingSchedule(context.Background(), date("2026-01-31"))
	require.NoError(t, err)
	assert.Equal(t, 1, ar.Diagnostics.MissingAccounts)
}
