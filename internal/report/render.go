// Package report renders query results for the terminal.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/topngx/topngx/internal/relation"
)

// clearScreen moves the cursor home and clears the terminal, so a
// refreshed report replaces the previous one.
const clearScreen = "\033[2J\033[H"

// Clear clears the terminal before a refreshed report.
func Clear(w io.Writer) {
	fmt.Fprint(w, clearScreen)
}

// Render writes each query result as an aligned table, separated by
// blank lines.
func Render(w io.Writer, results []*relation.QueryResult) error {
	for i, result := range results {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := renderTable(w, result); err != nil {
			return err
		}
	}
	return nil
}

func renderTable(w io.Writer, result *relation.QueryResult) error {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(result.Columns, "\t"))

	cells := make([]string, len(result.Columns))
	for _, row := range result.Rows {
		for i, value := range row {
			cells[i] = formatValue(value)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	return tw.Flush()
}

// formatValue renders one SQLite value. Floats use the shortest exact
// representation so averages of whole numbers print without noise.
func formatValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "-"
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
