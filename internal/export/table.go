// Package export renders reports as plain-text tables or XLSX workbooks.
package export

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerview/internal/id"
	"github.com/cleared-dev/ledgerview/internal/income"
	"github.com/cleared-dev/ledgerview/internal/ledger"
	"github.com/cleared-dev/ledgerview/internal/report"
)

// Cell is either text or an amount.
type Cell struct {
	Text    string
	Amount  decimal.Decimal
	Numeric bool
}

// Text returns a text cell.
func Text(s string) Cell { return Cell{Text: s} }

// Amount returns an amount cell.
func Amount(d decimal.Decimal) Cell { return Cell{Amount: d, Numeric: true} }

// String formats amounts with two decimals.
func (c Cell) String() string {
	if c.Numeric {
		return c.Amount.StringFixed(2)
	}
	return c.Text
}

// Table is one rendered report. Name doubles as the worksheet name.
type Table struct {
	Name    string
	Title   string
	Columns []string
	Rows    [][]Cell
	Footer  []Cell
}

func (t *Table) add(cells ...Cell) {
	t.Rows = append(t.Rows, cells)
}

// TrialBalanceTable lists every account with activity.
func TrialBalanceTable(tb ledger.TrialBalance) Table {
	t := Table{
		Name:    "Trial Balance",
		Title:   "Trial balance " + tb.From.Format(id.DateFormat) + " to " + tb.To.Format(id.DateFormat),
		Columns: []string{"Type", "Account", "Name", "Period Debit", "Period Credit", "Lifetime Debit", "Lifetime Credit", "Balance"},
	}
	for _, r := range tb.Rows {
		t.add(
			Text(string(r.Account.Key.Type)), Text(r.Account.Key.ID), Text(r.Account.Name),
			Amount(r.PeriodDebit), Amount(r.PeriodCredit),
			Amount(r.LifetimeDebit), Amount(r.LifetimeCredit),
			Amount(r.SignedBalance),
		)
	}
	t.Footer = []Cell{Text("Total"), Text(""), Text(""), Amount(tb.PeriodDebit), Amount(tb.PeriodCredit)}
	return t
}

// StatementTable lists a statement of account with its running balance.
func StatementTable(st ledger.Statement) Table {
	t := Table{
		Name:    "Ledger",
		Title:   "Ledger " + st.Account.Key.String() + " " + st.Account.Name,
		Columns: []string{"Date", "Entry", "Description", "Reference", "Currency", "Original", "Debit", "Credit", "Balance"},
	}
	t.add(Text(st.From.Format(id.DateFormat)), Text(""), Text("Opening balance"), Text(""), Text(""), Text(""),
		Text(""), Text(""), Amount(st.OpeningBalance))
	for _, e := range st.Entries {
		original := Text("")
		if e.OriginalAmount.Valid {
			original = Amount(e.OriginalAmount.Decimal)
		}
		t.add(
			Text(e.Date.Format(id.DateFormat)), Text(e.EntryID), Text(e.Description), Text(e.Reference),
			Text(e.CurrencyCode), original,
			Amount(e.Debit), Amount(e.Credit), Amount(e.RunningBalance),
		)
	}
	t.Footer = []Cell{Text(st.To.Format(id.DateFormat)), Text(""), Text("Closing balance"), Text(""), Text(""), Text(""),
		Amount(st.TotalDebit), Amount(st.TotalCredit), Amount(st.ClosingBalance)}
	return t
}

// AgingTable lists aged balances, one account per row.
func AgingTable(rows []report.Aging) Table {
	t := Table{
		Name:    "Aging",
		Columns: []string{"Type", "Account", "Name", "Currency", "0-30", "31-60", "61-90", "Over 90", "Total"},
	}
	totals := make([]decimal.Decimal, 5)
	for _, r := range rows {
		if t.Title == "" {
			t.Title = "Aging as of " + r.AsOf.Format(id.DateFormat)
		}
		t.add(
			Text(string(r.Account.Key.Type)), Text(r.Account.Key.ID), Text(r.Account.Name), Text(r.Currency),
			Amount(r.Current), Amount(r.Days30), Amount(r.Days60), Amount(r.Over90), Amount(r.Total),
		)
		for i, d := range []decimal.Decimal{r.Current, r.Days30, r.Days60, r.Over90, r.Total} {
			totals[i] = totals[i].Add(d)
		}
	}
	t.Footer = []Cell{Text("Total"), Text(""), Text(""), Text("")}
	for _, d := range totals {
		t.Footer = append(t.Footer, Amount(d))
	}
	return t
}

// IncomeTable renders the income statement as a two-column report
// followed by the per-account lines.
func IncomeTable(is report.IncomeStatement) Table {
	t := Table{
		Name:    "Income Statement",
		Title:   "Income statement " + is.From.Format(id.DateFormat) + " to " + is.To.Format(id.DateFormat),
		Columns: []string{"Section", "Line", "Amount"},
	}
	section := func(name string, b income.Breakdown) {
		t.add(Text(name), Text("Flight"), Amount(b.Flight))
		t.add(Text(name), Text("Pilgrimage packages"), Amount(b.PilgrimagePackage))
		t.add(Text(name), Text("Other services"), Amount(b.OtherService))
		t.add(Text(name), Text("Total"), Amount(b.Total))
	}
	section("Revenue", is.Revenue)
	section("Direct cost", is.DirectCost)
	t.add(Text("Gross profit"), Text(""), Amount(is.GrossProfit))
	t.add(Text("Administrative"), Text(""), Amount(is.Administrative))
	for _, l := range is.Lines {
		name := l.Name
		if !l.Classified {
			name += " (unclassified)"
		}
		t.add(Text(string(l.Category)), Text(l.Account.String()+" "+name), Amount(l.Amount))
	}
	t.Footer = []Cell{Text("Net profit"), Text(""), Amount(is.NetProfit)}
	return t
}
