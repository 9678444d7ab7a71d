package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const unicodeFamily = "unicode"

// PDFExporter renders datasets into a basic tabular PDF.
// Core fonts only cover Latin-1; set FontPath to a UTF-8 TrueType font for CJK text.
type PDFExporter struct {
	FontPath string
}

// NewPDFExporter constructs a PDF exporter. fontPath may be empty.
func NewPDFExporter(fontPath string) *PDFExporter {
	return &PDFExporter{FontPath: fontPath}
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if err := data.validate("pdf"); err != nil {
		return nil, err
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)

	family := "Arial"
	text := func(s string) string { return s }
	if e.FontPath != "" {
		pdf.AddUTF8Font(unicodeFamily, "", e.FontPath)
		pdf.AddUTF8Font(unicodeFamily, "B", e.FontPath)
		family = unicodeFamily
	} else {
		text = pdf.UnicodeTranslatorFromDescriptor("")
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("load pdf font: %w", err)
	}
	pdf.AddPage()

	if title != "" {
		pdf.SetFont(family, "B", 14)
		pdf.CellFormat(0, 10, text(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	width, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := (width - left - right) / float64(len(data.Headers))

	pdf.SetFont(family, "B", 10)
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, text(header), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(family, "", 9)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, text(truncate(row[header], 48)), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
