// Package runlog keeps an append-only CSV audit trail of report runs in
// <repo>/logs/report-log.csv.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entry is one row in the report log.
type Entry struct {
	RunID    uuid.UUID
	Started  time.Time
	Report   string
	Source   string
	From     string
	To       string
	Account  string
	Rows     int
	Issues   int
	Duration time.Duration
	Error    string
}

// Header is the CSV header for report-log.csv.
const Header = "run_id,started,report,source,from,to,account,rows,issues,duration_ms,error"

const (
	numFields   = 11
	logDir      = "logs"
	logFile     = "logs/report-log.csv"
	colRunID    = 0
	colStarted  = 1
	colReport   = 2
	colSource   = 3
	colFrom     = 4
	colTo       = 5
	colAccount  = 6
	colRows     = 7
	colIssues   = 8
	colDuration = 9
	colError    = 10
)

// New starts an entry for report with a fresh run id.
func New(report string, now time.Time) Entry {
	return Entry{RunID: uuid.New(), Started: now.UTC(), Report: report}
}

// Finish records the outcome of the run.
func (e *Entry) Finish(now time.Time, rows, issues int, err error) {
	e.Duration = now.Sub(e.Started)
	e.Rows = rows
	e.Issues = issues
	if err != nil {
		e.Error = err.Error()
	}
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colRunID] = e.RunID.String()
	row[colStarted] = e.Started.Format(time.RFC3339)
	row[colReport] = e.Report
	row[colSource] = e.Source
	row[colFrom] = e.From
	row[colTo] = e.To
	row[colAccount] = e.Account
	row[colRows] = strconv.Itoa(e.Rows)
	row[colIssues] = strconv.Itoa(e.Issues)
	row[colDuration] = strconv.FormatInt(e.Duration.Milliseconds(), 10)
	row[colError] = e.Error
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	runID, err := uuid.Parse(record[colRunID])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing run_id %q: %w", record[colRunID], err)
	}
	started, err := time.Parse(time.RFC3339, record[colStarted])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing started %q: %w", record[colStarted], err)
	}
	ints := make([]int, 3)
	for i, col := range []int{colRows, colIssues, colDuration} {
		if ints[i], err = strconv.Atoi(record[col]); err != nil {
			return Entry{}, fmt.Errorf("parsing column %d %q: %w", col, record[col], err)
		}
	}

	return Entry{
		RunID:    runID,
		Started:  started,
		Report:   record[colReport],
		Source:   record[colSource],
		From:     record[colFrom],
		To:       record[colTo],
		Account:  record[colAccount],
		Rows:     ints[0],
		Issues:   ints[1],
		Duration: time.Duration(ints[2]) * time.Millisecond,
		Error:    record[colError],
	}, nil
}

// Append writes entries to <repoRoot>/logs/report-log.csv, creating the file and header if needed.
func Append(repoRoot string, entries ...Entry) error {
	dir := filepath.Join(repoRoot, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(repoRoot, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening report log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <repoRoot>/logs/report-log.csv.
// Returns an empty slice if the file does not exist.
func Read(repoRoot string) ([]Entry, error) {
	path := filepath.Join(repoRoot, logFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening report log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading report log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
