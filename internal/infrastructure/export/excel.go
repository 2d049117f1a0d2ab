package export

import (
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// XLSXContentType is the content type of spreadsheet downloads
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	minColumnWidth = 10
	maxColumnWidth = 50
)

// WriteXLSX writes every table as a sheet of one workbook. Headers are bold with
// a fill, the header row is frozen and an auto filter covers the data.
func WriteXLSX(w io.Writer, tables ...*Table) error {
	if len(tables) == 0 {
		return fmt.Errorf("no tables to export")
	}
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F4E78"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("failed to create money style: %w", err)
	}

	for i, t := range tables {
		sheet := t.Sheet
		if sheet == "" {
			sheet = fmt.Sprintf("Hoja%d", i+1)
		}
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet: %w", err)
		}
		if err := writeSheet(f, sheet, t, headerStyle, moneyStyle); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, t *Table, headerStyle, moneyStyle int) error {
	widths := make([]int, len(t.Headers))
	for col, header := range t.Headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to set header %s: %w", cell, err)
		}
		widths[col] = utf8.RuneCountInString(header)
	}
	if len(t.Headers) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(t.Headers), 1)
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}

	for r, row := range t.Rows {
		for col := 0; col < len(t.Headers) && col < len(row); col++ {
			cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
			value := cellValue(row[col])
			if value == nil {
				continue
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
			if _, ok := value.(float64); ok {
				if _, isMoney := row[col].(decimal.Decimal); isMoney {
					_ = f.SetCellStyle(sheet, cell, cell, moneyStyle)
				}
			}
			if n := utf8.RuneCountInString(FormatCell(row[col])); n > widths[col] {
				widths[col] = n
			}
		}
	}

	for col, width := range widths {
		name, _ := excelize.ColumnNumberToName(col + 1)
		w := float64(min(max(width+2, minColumnWidth), maxColumnWidth))
		if err := f.SetColWidth(sheet, name, name, w); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	if len(t.Headers) == 0 {
		return nil
	}
	lastCell, _ := excelize.CoordinatesToCellName(len(t.Headers), len(t.Rows)+1)
	if err := f.AutoFilter(sheet, "A1:"+lastCell, nil); err != nil {
		return fmt.Errorf("failed to set auto filter: %w", err)
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// cellValue converts a cell to a value excelize stores natively
func cellValue(v any) any {
	switch c := v.(type) {
	case nil:
		return nil
	case decimal.Decimal:
		f, _ := c.Float64()
		return f
	case time.Time:
		if c.IsZero() {
			return nil
		}
		return c.Format(DateTimeLayout)
	case *time.Time:
		if c == nil {
			return nil
		}
		return cellValue(*c)
	case bool:
		return FormatCell(c)
	case string, int, int64, float64:
		return c
	default:
		return FormatCell(c)
	}
}
