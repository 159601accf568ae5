package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/port"
)

// PDFExtractor implements port.TextExtractor for PDF invoices. It is a plain
// text-layer reader: no OCR, no layout reconstruction. Scanned documents with
// no text layer come back empty and are rejected downstream as empty input.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor { return &PDFExtractor{} }

// Extract reads every page's text rows and concatenates them.
func (e *PDFExtractor) Extract(r io.Reader) (string, error) {
	// The PDF reader needs the total size, so buffer the upload first.
	buf := new(bytes.Buffer)
	size, err := buf.ReadFrom(r)
	if err != nil {
		return "", fmt.Errorf("%w: read upload: %v", port.ErrExtractionFailed, err)
	}

	pdfReader, err := pdf.NewReader(bytes.NewReader(buf.Bytes()), size)
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %v", port.ErrExtractionFailed, err)
	}

	var text strings.Builder
	for pageNum := 1; pageNum <= pdfReader.NumPage(); pageNum++ {
		page := pdfReader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", port.ErrExtractionFailed, pageNum, err)
		}
		for _, row := range rows {
			for _, word := range row.Content {
				text.WriteString(word.S)
				text.WriteString(" ")
			}
			text.WriteString("\n")
		}
	}

	return text.String(), nil
}
