package export

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const maxColumnWidth = 50

// ExcelExporter builds a single-sheet workbook with a styled, frozen header.
type ExcelExporter struct {
	file    *excelize.File
	sheet   string
	columns []string
	next    int
	widths  []float64
	options Options
}

func NewExcelExporter(sheet string, columns []string, options Options) (*ExcelExporter, error) {
	file := excelize.NewFile()
	if err := file.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	return &ExcelExporter{
		file:    file,
		sheet:   sheet,
		columns: columns,
		next:    1,
		widths:  make([]float64, len(columns)),
		options: options,
	}, nil
}

func (e *ExcelExporter) WriteHeader() error {
	style, err := e.file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, col := range e.columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, e.next)
		if err := e.file.SetCellValue(e.sheet, cell, col); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		e.track(i, col)
	}
	first, _ := excelize.CoordinatesToCellName(1, e.next)
	last, _ := excelize.CoordinatesToCellName(len(e.columns), e.next)
	if err := e.file.SetCellStyle(e.sheet, first, last, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	if err := e.file.SetPanes(e.sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}
	e.next++
	return nil
}

func (e *ExcelExporter) WriteRows(rows []map[string]interface{}) error {
	for _, row := range rows {
		for i, col := range e.columns {
			cell, _ := excelize.CoordinatesToCellName(i+1, e.next)
			val := e.cellValue(row[col])
			if err := e.file.SetCellValue(e.sheet, cell, val); err != nil {
				return fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
			e.track(i, val)
		}
		e.next++
	}
	return nil
}

// WriteTo sizes the columns and writes the workbook.
func (e *ExcelExporter) WriteTo(w io.Writer) error {
	for i, width := range e.widths {
		name, _ := excelize.ColumnNumberToName(i + 1)
		if width < 10 {
			width = 10
		}
		if width > maxColumnWidth {
			width = maxColumnWidth
		}
		if err := e.file.SetColWidth(e.sheet, name, name, width); err != nil {
			return fmt.Errorf("failed to size column %s: %w", name, err)
		}
	}
	if _, err := e.file.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (e *ExcelExporter) Close() error {
	return e.file.Close()
}

// Rows reports the number of data rows written.
func (e *ExcelExporter) Rows() int {
	return e.next - 2
}

func (e *ExcelExporter) cellValue(val interface{}) interface{} {
	switch v := val.(type) {
	case nil:
		return e.options.NullValue
	case decimal.Decimal:
		f, _ := v.Float64()
		return f
	case time.Time:
		if v.IsZero() {
			return e.options.NullValue
		}
		return v.UTC().Format(e.options.TimestampFormat)
	case *time.Time:
		if v == nil || v.IsZero() {
			return e.options.NullValue
		}
		return v.UTC().Format(e.options.TimestampFormat)
	case fmt.Stringer:
		return v.String()
	}
	return val
}

func (e *ExcelExporter) track(col int, val interface{}) {
	width := float64(len(fmt.Sprintf("%v", val))) * 1.2
	if width > e.widths[col] {
		e.widths[col] = width
	}
}
