package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerview/internal/id"
	"github.com/cleared-dev/ledgerview/internal/model"
)

// TransactionsHeader is the CSV header for transactions.csv.
const TransactionsHeader = "id,type,journal_entry_id,date,description,category,program_id,master_trip_id,supplier_id,customer_id,treasury_id,amount,purchase_price,selling_price,currency,exchange_rate,is_voided,is_revenue_only,is_purchase_only"

const (
	txnNumFields    = 19
	txnColID        = 0
	txnColType      = 1
	txnColJournal   = 2
	txnColDate      = 3
	txnColDesc      = 4
	txnColCategory  = 5
	txnColProgram   = 6
	txnColTrip      = 7
	txnColSupplier  = 8
	txnColCustomer  = 9
	txnColTreasury  = 10
	txnColAmount    = 11
	txnColPurchase  = 12
	txnColSelling   = 13
	txnColCurrency  = 14
	txnColRate      = 15
	txnColVoided    = 16
	txnColRevOnly   = 17
	txnColPurchOnly = 18
)

// CurrenciesHeader is the CSV header for currencies.csv.
const CurrenciesHeader = "code,rate_to_base"

// ReadTransactions reads a transactions.csv export.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = txnNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var txns []model.Transaction
	for i, rec := range records[1:] {
		txn, err := parseTransactionRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// WriteTransactions writes transactions.csv (including header).
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(TransactionsHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, t := range txns {
		if err := cw.Write(MarshalTransaction(t)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(t model.Transaction) []string {
	rec := make([]string, txnNumFields)
	rec[txnColID] = t.ID
	rec[txnColType] = string(t.Type)
	rec[txnColJournal] = t.JournalEntryID
	if !t.Date.IsZero() {
		rec[txnColDate] = t.Date.Format(id.DateFormat)
	}
	rec[txnColDesc] = t.Description
	rec[txnColCategory] = t.Category
	rec[txnColProgram] = t.ProgramID
	rec[txnColTrip] = t.MasterTripID
	rec[txnColSupplier] = t.SupplierID
	rec[txnColCustomer] = t.CustomerID
	rec[txnColTreasury] = t.TreasuryID
	rec[txnColAmount] = amountCell(t.Amount)
	rec[txnColPurchase] = amountCell(t.PurchasePrice)
	rec[txnColSelling] = amountCell(t.SellingPrice)
	rec[txnColCurrency] = t.CurrencyCode
	rec[txnColRate] = amountCell(t.ExchangeRate)
	rec[txnColVoided] = boolCell(t.IsVoided)
	rec[txnColRevOnly] = boolCell(t.IsRevenueOnly)
	rec[txnColPurchOnly] = boolCell(t.IsPurchaseOnly)
	return rec
}

func parseTransactionRow(rec []string) (model.Transaction, error) {
	if strings.TrimSpace(rec[txnColID]) == "" {
		return model.Transaction{}, fmt.Errorf("empty id")
	}
	typ, err := model.ParseTransactionType(rec[txnColType])
	if err != nil {
		return model.Transaction{}, err
	}
	t := model.Transaction{
		ID:             strings.TrimSpace(rec[txnColID]),
		Type:           typ,
		JournalEntryID: strings.TrimSpace(rec[txnColJournal]),
		Description:    rec[txnColDesc],
		Category:       strings.TrimSpace(rec[txnColCategory]),
		ProgramID:      strings.TrimSpace(rec[txnColProgram]),
		MasterTripID:   strings.TrimSpace(rec[txnColTrip]),
		SupplierID:     strings.TrimSpace(rec[txnColSupplier]),
		CustomerID:     strings.TrimSpace(rec[txnColCustomer]),
		TreasuryID:     strings.TrimSpace(rec[txnColTreasury]),
		CurrencyCode:   strings.ToUpper(strings.TrimSpace(rec[txnColCurrency])),
	}

	if s := strings.TrimSpace(rec[txnColDate]); s != "" {
		if t.Date, err = id.ParseDate(s); err != nil {
			return model.Transaction{}, err
		}
	}

	amounts := []struct {
		name string
		col  int
		dst  *decimal.Decimal
	}{
		{"amount", txnColAmount, &t.Amount},
		{"purchase_price", txnColPurchase, &t.PurchasePrice},
		{"selling_price", txnColSelling, &t.SellingPrice},
		{"exchange_rate", txnColRate, &t.ExchangeRate},
	}
	for _, a := range amounts {
		if *a.dst, err = parseAmount(a.name, rec[a.col]); err != nil {
			return model.Transaction{}, err
		}
	}

	flags := []struct {
		name string
		col  int
		dst  *bool
	}{
		{"is_voided", txnColVoided, &t.IsVoided},
		{"is_revenue_only", txnColRevOnly, &t.IsRevenueOnly},
		{"is_purchase_only", txnColPurchOnly, &t.IsPurchaseOnly},
	}
	for _, f := range flags {
		if *f.dst, err = parseBool(f.name, rec[f.col]); err != nil {
			return model.Transaction{}, err
		}
	}
	return t, nil
}

// ReadCurrencies reads currencies.csv.
func ReadCurrencies(r io.Reader) ([]model.Currency, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading currencies CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var out []model.Currency
	for i, rec := range records[1:] {
		rate, err := parseAmount("rate_to_base", rec[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, model.Currency{Code: strings.ToUpper(strings.TrimSpace(rec[0])), RateToBase: rate})
	}
	return out, nil
}

// WriteCurrencies writes currencies.csv (including header).
func WriteCurrencies(w io.Writer, currencies []model.Currency) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(CurrenciesHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, c := range currencies {
		if err := cw.Write([]string{c.Code, c.RateToBase.String()}); err != nil {
			return fmt.Errorf("writing %s: %w", c.Code, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func parseAmount(field, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing %s %q: %w", field, s, err)
	}
	return d, nil
}

func parseBool(field, s string) (bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("parsing %s %q: %w", field, s, err)
	}
	return b, nil
}

func amountCell(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func boolCell(b bool) string {
	if !b {
		return ""
	}
	return "true"
}
