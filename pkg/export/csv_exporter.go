package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVOption tweaks CSV output.
type CSVOption func(*CSVExporter)

// WithBOM prefixes the output with a UTF-8 byte order mark so spreadsheet
// applications detect the encoding of Chinese text.
func WithBOM() CSVOption {
	return func(e *CSVExporter) { e.bom = true }
}

// CSVExporter renders a Dataset as RFC 4180 CSV.
type CSVExporter struct {
	bom bool
}

func NewCSVExporter(opts ...CSVOption) *CSVExporter {
	e := &CSVExporter{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render writes the header line and one line per row. Cells that a spreadsheet
// would evaluate as a formula are prefixed with a quote.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate("csv"); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if e.bom {
		buf.Write(utf8BOM)
	}
	w := csv.NewWriter(&buf)
	if err := w.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for i := range data.Rows {
		record := data.record(i)
		for j, cell := range record {
			record[j] = neutralizeFormula(cell)
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func neutralizeFormula(cell string) string {
	if cell != "" && strings.ContainsRune("=+-@", rune(cell[0])) {
		return "'" + cell
	}
	return cell
}
