package importer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerview/internal/model"
	"github.com/cleared-dev/ledgerview/internal/store"
)

const agencyRepo = "../../testdata/agency"

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCSVSource_Load(t *testing.T) {
	ds, err := CSVSource{}.Load(context.Background(), agencyRepo)
	require.NoError(t, err)

	assert.Len(t, ds.Accounts, 8)
	require.Len(t, ds.Entries, 4)
	assert.Equal(t, "JE-1", ds.Entries[0].ID)
	assert.Len(t, ds.Entries[0].Lines, 2)

	usd := ds.Entries[3].Lines[0]
	assert.Equal(t, "USD", usd.CurrencyCode)
	require.True(t, usd.OriginalAmount.Valid)
	assert.True(t, dec("20").Equal(usd.OriginalAmount.Decimal))

	require.Len(t, ds.Transactions, 4)
	assert.Equal(t, model.TransactionRevenueOnly, ds.Transactions[0].Type)
	assert.True(t, ds.Transactions[0].IsRevenueOnly)
	assert.True(t, ds.Transactions[1].IsPurchaseOnly)
	assert.Empty(t, ds.Transactions[2].JournalEntryID)
	assert.True(t, dec("250").Equal(ds.Transactions[2].Amount))
	assert.True(t, ds.Transactions[3].IsVoided)

	require.Len(t, ds.Currencies, 2)
	assert.True(t, dec("48.5").Equal(ds.Currencies[1].RateToBase))
}

func TestCSVSource_OptionalFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "accounts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "accounts", "accounts.csv"),
		[]byte("account_type,account_id,name,opening_balance,opening_currency,opening_balance_base\ntreasury,main,Cash,,,\n"), 0o644))

	ds, err := CSVSource{}.Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, ds.Accounts, 1)
	assert.Empty(t, ds.Entries)
	assert.Nil(t, ds.Transactions)
	assert.Nil(t, ds.Currencies)
}

func TestCSVSource_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := CSVSource{}.Load(ctx, agencyRepo)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCSVSource_SaveThenLoad(t *testing.T) {
	ctx := context.Background()
	ds, err := CSVSource{}.Load(ctx, agencyRepo)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, CSVSource{}.Save(ctx, dir, ds))
	got, err := CSVSource{}.Load(ctx, dir)
	require.NoError(t, err)

	require.Len(t, got.Accounts, len(ds.Accounts))
	for i := range ds.Accounts {
		assert.Equal(t, ds.Accounts[i].Key, got.Accounts[i].Key)
	}
	require.Len(t, got.Entries, len(ds.Entries))
	for i, e := range ds.Entries {
		assert.Equal(t, e.ID, got.Entries[i].ID)
		require.Len(t, got.Entries[i].Lines, len(e.Lines))
		for j, l := range e.Lines {
			assert.True(t, l.Debit.Equal(got.Entries[i].Lines[j].Debit), "%s line %d", e.ID, j+1)
			assert.True(t, l.Credit.Equal(got.Entries[i].Lines[j].Credit), "%s line %d", e.ID, j+1)
		}
	}
	require.Len(t, got.Transactions, len(ds.Transactions))
	assert.True(t, got.Transactions[3].IsVoided)
	require.Len(t, got.Currencies, len(ds.Currencies))
	assert.True(t, dec("48.5").Equal(got.Currencies[1].RateToBase))

	err = CSVSource{}.Save(ctx, dir, ds)
	assert.ErrorContains(t, err, "already exists")
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get("nonexistent"))
}

func TestRegistry_CaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.Register(CSVSource{})
	assert.NotNil(t, r.Get("CSV"))
	assert.NotNil(t, r.Get("csv"))
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(CSVSource{})
	assert.Panics(t, func() { r.Register(CSVSource{}) })
}

func TestRegistry_LoadUnknownFormat(t *testing.T) {
	_, err := DefaultRegistry().Load(context.Background(), "parquet", agencyRepo)
	assert.ErrorContains(t, err, `unknown source format "parquet"`)
}

func TestDefaultRegistry_SQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := DefaultRegistry()
	require.NotNil(t, r.Get("csv"))
	require.NotNil(t, r.Get("sqlite"))

	fromCSV, err := r.Load(ctx, "csv", agencyRepo)
	require.NoError(t, err)

	dbPath := filepath.Join(t.TempDir(), "agency.db")
	conn, err := store.Open(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, conn.Save(ctx, fromCSV))
	require.NoError(t, conn.Close())

	fromDB, err := r.Load(ctx, "sqlite", dbPath)
	require.NoError(t, err)
	assert.Len(t, fromDB.Accounts, len(fromCSV.Accounts))
	assert.Len(t, fromDB.Entries, len(fromCSV.Entries))
	assert.Len(t, fromDB.Transactions, len(fromCSV.Transactions))
	assert.Len(t, fromDB.Currencies, len(fromCSV.Currencies))
}

func TestTransactions_RoundTrip(t *testing.T) {
	f, err := os.Open(filepath.Join(agencyRepo, TransactionsFile))
	require.NoError(t, err)
	defer f.Close()

	txns, err := ReadTransactions(f)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, txns))
	again, err := ReadTransactions(&buf)
	require.NoError(t, err)
	require.Len(t, again, len(txns))
	for i := range txns {
		assert.Equal(t, txns[i].ID, again[i].ID)
		assert.Equal(t, txns[i].Natures(), again[i].Natures())
		assert.True(t, txns[i].SellingPrice.Equal(again[i].SellingPrice))
	}
}

func TestReadTransactions_Errors(t *testing.T) {
	cases := map[string]string{
		"empty id":                 ",normal,,,,,,,,,,,,,,,,,",
		"unknown transaction type": "T-1,refund,,,,,,,,,,,,,,,,,",
		"parsing amount":           "T-1,income,,,,,,,,,,abc,,,,,,,",
		"parsing is_voided":        "T-1,income,,,,,,,,,,,,,,,maybe,,",
	}
	for want, row := range cases {
		t.Run(want, func(t *testing.T) {
			_, err := ReadTransactions(strings.NewReader(TransactionsHeader + "\n" + row + "\n"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "row 2")
			assert.Contains(t, err.Error(), want)
		})
	}
}

func TestMergeTransactions(t *testing.T) {
	dir := t.TempDir()

	added, err := MergeTransactions(dir, []model.Transaction{
		{ID: "T-1", Type: model.TransactionIncome, Amount: dec("100")},
		{ID: "T-2", Type: model.TransactionExpense, Amount: dec("40")},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	added, err = MergeTransactions(dir, []model.Transaction{
		{ID: "T-2", Type: model.TransactionExpense, Amount: dec("45")},
		{ID: "T-3", Type: model.TransactionIncome, Amount: dec("10")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	f, err := os.Open(filepath.Join(dir, TransactionsFile))
	require.NoError(t, err)
	defer f.Close()
	txns, err := ReadTransactions(f)
	require.NoError(t, err)
	require.Len(t, txns, 3)
	assert.Equal(t, "T-2", txns[1].ID)
	assert.True(t, dec("45").Equal(txns[1].Amount))
}

func TestScan_FindsCSVs(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(importDir, "bank.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "other.txt"), []byte("data"), 0o644))

	files, err := Scan(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, "bank.csv", files[0].Name)
}

func TestScan_IgnoresProcessedDir(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	processedDir := filepath.Join(importDir, "processed")
	require.NoError(t, os.MkdirAll(processedDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(importDir, "new.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(processedDir, "old.csv"), []byte("data"), 0o644))

	files, err := Scan(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, "new.csv", files[0].Name)
}

func TestScan_EmptyDir(t *testing.T) {
	dir := t.TempDir()
	files, err := Scan(dir)
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestMarkProcessed(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "bank.csv"), []byte("data"), 0o644))

	err := MarkProcessed(dir, "bank.csv")
	require.NoError(t, err)

	// Source gone.
	_, err = os.Stat(filepath.Join(importDir, "bank.csv"))
	assert.True(t, os.IsNotExist(err))

	// Destination exists.
	_, err = os.Stat(filepath.Join(dir, "import", "processed", "bank.csv"))
	assert.NoError(t, err)
}

func TestMarkProcessed_CreatesDir(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "a.csv"), []byte("data"), 0o644))

	err := MarkProcessed(dir, "a.csv")
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dir, "import", "processed"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
