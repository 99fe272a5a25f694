package id

import (
	"fmt"
	"strings"
	"time"

	"github.com/cleared-dev/ledgerview/internal/model"
)

// DateFormat is the calendar-date layout used in every file and flag.
const DateFormat = "2006-01-02"

// ParseAccountKey parses "customer:42" into an AccountKey.
// The ID part may itself contain colons.
func ParseAccountKey(s string) (model.AccountKey, error) {
	typ, rest, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || rest == "" {
		return model.AccountKey{}, fmt.Errorf("invalid account key %q: want <type>:<id>", s)
	}
	at, err := model.ParseAccountType(typ)
	if err != nil {
		return model.AccountKey{}, fmt.Errorf("invalid account key %q: %w", s, err)
	}
	return model.AccountKey{Type: at, ID: rest}, nil
}

// ParseDate parses a calendar date (UTC midnight).
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// Day truncates t to its calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// SyntheticEntryID is the journal id given to postings derived from a
// transaction that never produced a journal entry.
func SyntheticEntryID(transactionID string) string {
	return "txn:" + transactionID
}
