package export

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// WriteText writes each table as aligned columns under its title.
func WriteText(w io.Writer, tables ...Table) error {
	for i, t := range tables {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if t.Title != "" {
			if _, err := fmt.Fprintln(w, t.Title); err != nil {
				return err
			}
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(t.Columns, "\t")+"\t")
		for _, row := range t.Rows {
			fmt.Fprintln(tw, joinCells(row)+"\t")
		}
		if len(t.Footer) > 0 {
			fmt.Fprintln(tw, joinCells(t.Footer)+"\t")
		}
		if err := tw.Flush(); err != nil {
			return fmt.Errorf("writing %s: %w", t.Name, err)
		}
	}
	return nil
}

func joinCells(cells []Cell) string {
	s := make([]string, len(cells))
	for i, c := range cells {
		s[i] = c.String()
	}
	return strings.Join(s, "\t")
}
