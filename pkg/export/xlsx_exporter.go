package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXExporter renders datasets into a single-sheet workbook.
type XLSXExporter struct {
	SheetName string
}

// NewXLSXExporter builds an exporter writing to the named sheet.
func NewXLSXExporter(sheetName string) *XLSXExporter {
	if sheetName == "" {
		sheetName = "Archive"
	}
	return &XLSXExporter{SheetName: sheetName}
}

// Render writes an optional merged title row, a styled header row and one row per record.
func (e *XLSXExporter) Render(data Dataset, title string) ([]byte, error) {
	if err := data.validate("xlsx"); err != nil {
		return nil, err
	}
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	sheet := e.SheetName
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("drop default sheet: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(data.Headers))
	if err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 20); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	row := 1
	if title != "" {
		if err := f.SetCellValue(sheet, "A1", title); err != nil {
			return nil, err
		}
		if len(data.Headers) > 1 {
			if err := f.MergeCell(sheet, "A1", lastCol+"1"); err != nil {
				return nil, fmt.Errorf("merge title: %w", err)
			}
		}
		row++
	}

	for i, header := range data.Headers {
		if err := f.SetCellValue(sheet, cellName(i, row), header); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(sheet, cellName(0, row), cellName(len(data.Headers)-1, row), headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}
	row++

	for _, record := range data.Rows {
		for i, header := range data.Headers {
			if err := f.SetCellValue(sheet, cellName(i, row), record[header]); err != nil {
				return nil, err
			}
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// cellName converts a zero-based column index and one-based row into A1 notation.
func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row)
	return name
}
