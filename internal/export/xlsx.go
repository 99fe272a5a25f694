package export

import (
	"fmt"

	"github.com/tealeg/xlsx"
)

const (
	amountFormat = "#,##0.00"
	maxSheetName = 30
)

// WriteXLSX saves tables as one worksheet each. Amounts become numeric cells
// shown with two decimals.
func WriteXLSX(path string, tables ...Table) error {
	f := xlsx.NewFile()
	for _, t := range tables {
		if err := addSheet(f, t); err != nil {
			return err
		}
	}
	if err := f.Save(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func addSheet(f *xlsx.File, t Table) error {
	name := t.Name
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	sheet, err := f.AddSheet(name)
	if err != nil {
		return fmt.Errorf("adding sheet %q: %w", name, err)
	}

	if t.Title != "" {
		sheet.AddRow().AddCell().SetString(t.Title)
	}
	header := sheet.AddRow()
	for _, c := range t.Columns {
		header.AddCell().SetString(c)
	}
	for _, cells := range t.Rows {
		writeRow(sheet.AddRow(), cells)
	}
	if len(t.Footer) > 0 {
		writeRow(sheet.AddRow(), t.Footer)
	}
	return nil
}

func writeRow(row *xlsx.Row, cells []Cell) {
	for _, c := range cells {
		cell := row.AddCell()
		if c.Numeric {
			v, _ := c.Amount.Float64()
			cell.SetFloatWithFormat(v, amountFormat)
			continue
		}
		cell.SetString(c.Text)
	}
}
