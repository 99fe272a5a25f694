package journal

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

// Header is the CSV header for journal.csv. Each row is one journal line;
// consecutive rows sharing an entry_id form one entry, and line_no 1 always
// starts a new one.
const Header = "entry_id,line_no,date,description,reference,account_type,account_id,account_name,debit,credit,currency,exchange_rate,original_amount,cost_center_id,program_id,component_id"

const (
	numFields     = 16
	colEntryID    = 0
	colLineNo     = 1
	colDate       = 2
	colDesc       = 3
	colRef        = 4
	colAcctType   = 5
	colAcctID     = 6
	colAcctName   = 7
	colDebit      = 8
	colCredit     = 9
	colCurrency   = 10
	colRate       = 11
	colOriginal   = 12
	colCostCenter = 13
	colProgram    = 14
	colComponent  = 15
)

// row is one parsed journal.csv line before grouping.
type row struct {
	entryID string
	lineNo  int
	entry   model.JournalEntry
	line    model.JournalLine
}

// ReadEntries reads all entries from a journal.csv reader.
func ReadEntries(r io.Reader) ([]model.JournalEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var entries []model.JournalEntry
	for i, rec := range records[1:] {
		rw, err := unmarshalRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		n := len(entries)
		if n == 0 || rw.lineNo == 1 || entries[n-1].ID != rw.entryID {
			entries = append(entries, rw.entry)
			n++
		}
		entries[n-1].Lines = append(entries[n-1].Lines, rw.line)
	}
	return entries, nil
}

// WriteEntries writes entries to a journal.csv writer (including header).
func WriteEntries(w io.Writer, entries []model.JournalEntry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := writeRows(cw, entries); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// AppendEntries appends entries to an existing journal.csv writer (no header).
func AppendEntries(w io.Writer, entries []model.JournalEntry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := writeRows(cw, entries); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func writeRows(cw *csv.Writer, entries []model.JournalEntry) error {
	for _, e := range entries {
		for i, l := range e.Lines {
			if err := cw.Write(MarshalLine(e, i+1, l)); err != nil {
				return fmt.Errorf("writing entry %s line %d: %w", e.ID, i+1, err)
			}
		}
	}
	return nil
}

// MarshalLine converts one line of e to a CSV row ([]string).
func MarshalLine(e model.JournalEntry, lineNo int, l model.JournalLine) []string {
	rec := make([]string, numFields)
	rec[colEntryID] = e.ID
	rec[colLineNo] = strconv.Itoa(lineNo)
	rec[colDate] = e.Date.Format(id.DateFormat)
	rec[colDesc] = e.Description
	rec[colRef] = e.Reference
	rec[colAcctType] = string(l.AccountType)
	rec[colAcctID] = l.AccountID
	rec[colAcctName] = l.AccountName

	if !l.Debit.IsZero() {
		rec[colDebit] = l.Debit.StringFixed(2)
	}
	if !l.Credit.IsZero() {
		rec[colCredit] = l.Credit.StringFixed(2)
	}

	rec[colCurrency] = l.CurrencyCode
	if !l.ExchangeRate.IsZero() {
		rec[colRate] = l.ExchangeRate.String()
	}
	if l.OriginalAmount.Valid {
		rec[colOriginal] = l.OriginalAmount.Decimal.String()
	}
	rec[colCostCenter] = l.CostCenterID
	rec[colProgram] = l.ProgramID
	rec[colComponent] = l.ComponentID
	return rec
}

func unmarshalRow(rec []string) (row, error) {
	if len(rec) != numFields {
		return row{}, fmt.Errorf("expected %d fields, got %d", numFields, len(rec))
	}

	lineNo, err := strconv.Atoi(rec[colLineNo])
	if err != nil {
		return row{}, fmt.Errorf("parsing line_no %q: %w", rec[colLineNo], err)
	}

	date, err := id.ParseDate(rec[colDate])
	if err != nil {
		return row{}, err
	}

	at, err := model.ParseAccountType(rec[colAcctType])
	if err != nil {
		return row{}, err
	}

	debit, err := parseAmount("debit", rec[colDebit])
	if err != nil {
		return row{}, err
	}
	credit, err := parseAmount("credit", rec[colCredit])
	if err != nil {
		return row{}, err
	}
	rate, err := parseAmount("exchange_rate", rec[colRate])
	if err != nil {
		return row{}, err
	}

	var original decimal.NullDecimal
	if rec[colOriginal] != "" {
		if err := original.Scan(rec[colOriginal]); err != nil {
			return row{}, fmt.Errorf("parsing original_amount %q: %w", rec[colOriginal], err)
		}
	}

	return row{
		entryID: rec[colEntryID],
		lineNo:  lineNo,
		entry: model.JournalEntry{
			ID:          rec[colEntryID],
			Date:        date,
			Description: rec[colDesc],
			Reference:   rec[colRef],
		},
		line: model.JournalLine{
			AccountType:    at,
			AccountID:      rec[colAcctID],
			AccountName:    rec[colAcctName],
			Debit:          debit,
			Credit:         credit,
			CurrencyCode:   rec[colCurrency],
			ExchangeRate:   rate,
			OriginalAmount: original,
			CostCenterID:   rec[colCostCenter],
			ProgramID:      rec[colProgram],
			ComponentID:    rec[colComponent],
		},
	}, nil
}

// parseAmount treats an empty cell as zero.
func parseAmount(field, s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing %s %q: %w", field, s, err)
	}
	return d, nil
}
