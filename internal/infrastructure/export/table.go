// Package export renders tabular data as CSV or XLSX downloads.
package export

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateTimeLayout is used for timestamps in exported files
const DateTimeLayout = "2006-01-02 15:04"

// Table is a sheet of rows under a header. Cells may be strings, numbers, bools,
// times, decimals or nil.
type Table struct {
	Sheet   string
	Headers []string
	Rows    [][]any
}

// NewTable creates an empty table
func NewTable(sheet string, headers ...string) *Table {
	return &Table{Sheet: sheet, Headers: headers}
}

// Append adds a row
func (t *Table) Append(cells ...any) {
	t.Rows = append(t.Rows, cells)
}

// FormatCell renders a cell as text
func FormatCell(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case bool:
		if c {
			return "Sí"
		}
		return "No"
	case time.Time:
		if c.IsZero() {
			return ""
		}
		return c.Format(DateTimeLayout)
	case *time.Time:
		if c == nil {
			return ""
		}
		return FormatCell(*c)
	case decimal.Decimal:
		return c.StringFixed(2)
	case fmt.Stringer:
		return c.String()
	default:
		return fmt.Sprint(c)
	}
}
