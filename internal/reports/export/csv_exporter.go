package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Options shared by the tabular exporters.
type Options struct {
	Delimiter       rune
	TimestampFormat string
	NullValue       string
}

func DefaultOptions() Options {
	return Options{
		Delimiter:       ',',
		TimestampFormat: time.RFC3339,
	}
}

// CSVExporter writes rows keyed by column name as CSV.
type CSVExporter struct {
	writer  *csv.Writer
	options Options
	columns []string
	rows    int
}

func NewCSVExporter(w io.Writer, columns []string, options Options) *CSVExporter {
	writer := csv.NewWriter(w)
	if options.Delimiter != 0 {
		writer.Comma = options.Delimiter
	}
	return &CSVExporter{writer: writer, options: options, columns: columns}
}

// WriteHeader writes the column names.
func (e *CSVExporter) WriteHeader() error {
	if err := e.writer.Write(e.columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	return nil
}

// WriteRows writes one record per row, in column order. Missing keys become
// the null value.
func (e *CSVExporter) WriteRows(rows []map[string]interface{}) error {
	for _, row := range rows {
		record := make([]string, len(e.columns))
		for i, col := range e.columns {
			val, ok := row[col]
			if !ok {
				record[i] = e.options.NullValue
				continue
			}
			record[i] = e.formatValue(val)
		}
		if err := e.writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
		e.rows++
	}
	e.writer.Flush()
	return e.writer.Error()
}

// Finish flushes buffered output and reports the number of data rows written.
func (e *CSVExporter) Finish() (int, error) {
	e.writer.Flush()
	return e.rows, e.writer.Error()
}

func (e *CSVExporter) formatValue(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return e.options.NullValue
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case decimal.Decimal:
		return v.String()
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
	default:
		return fmt.Sprintf("%v", v)
	}
}
