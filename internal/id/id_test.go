package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerview/internal/model"
)

func TestParseAccountKey(t *testing.T) {
	tests := []struct {
		input string
		want  model.AccountKey
	}{
		{"customer:42", model.AccountKey{Type: model.AccountTypeCustomer, ID: "42"}},
		{"supplier:EGYPTAIR", model.AccountKey{Type: model.AccountTypeSupplier, ID: "EGYPTAIR"}},
		{"revenue:umrah:2026", model.AccountKey{Type: model.AccountTypeRevenue, ID: "umrah:2026"}},
		{" treasury:main ", model.AccountKey{Type: model.AccountTypeTreasury, ID: "main"}},
	}
	for _, tt := range tests {
		got, err := ParseAccountKey(tt.input)
		require.NoError(t, err, "input: %s", tt.input)
		assert.Equal(t, tt.want, got)
		roundTrip, err := ParseAccountKey(got.String())
		require.NoError(t, err)
		assert.Equal(t, got, roundTrip)
	}
}

func TestParseAccountKey_Errors(t *testing.T) {
	badInputs := []string{
		"",
		"customer",
		"customer:",
		"liability:1",
		":42",
	}
	for _, input := range badInputs {
		_, err := ParseAccountKey(input)
		assert.Error(t, err, "expected error for input: %s", input)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-01-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("05/01/2026")
	assert.Error(t, err)
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		b    time.Time
		want int
	}{
		{a, 0},
		{time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), 30},
		{time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), 60},
		{time.Date(2026, 1, 2, 23, 59, 0, 0, time.UTC), 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DaysBetween(a, tt.b), "to %s", tt.b)
	}
}

func TestSyntheticEntryID(t *testing.T) {
	assert.Equal(t, "txn:T-9", SyntheticEntryID("T-9"))
}
