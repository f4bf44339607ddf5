package season

import (
	"fmt"
	"io"
	"strings"

	"github.com/rivo/uniseg"
)

var header = []string{"Kategorie", "Name", "Reifezeit", "Fundort"}

// Render writes items as a left-aligned table. Column widths are measured in
// grapheme clusters so decomposed umlauts line up.
func Render(w io.Writer, items []Item) error {
	table := [][]string{header}
	for _, it := range items {
		loc := it.Location
		if loc == "" {
			loc = Unknown
		}
		table = append(table, []string{it.Category.Label(), it.Name, it.Period(), loc})
	}

	widths := make([]int, len(header))
	for _, row := range table {
		for i, cell := range row {
			widths[i] = max(widths[i], uniseg.StringWidth(cell))
		}
	}

	for _, row := range table {
		var b strings.Builder
		for i, cell := range row {
			b.WriteString(cell)
			if i < len(row)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-uniseg.StringWidth(cell)+2))
			}
		}
		if _, err := fmt.Fprintln(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}
