package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

var pdfMagic = []byte("%PDF-")

// PDFParser extracts the text layer of PDF files.
type PDFParser struct{}

// NewPDFParser creates a PDF parser.
func NewPDFParser() *PDFParser { return &PDFParser{} }

// Name returns the format name.
func (p *PDFParser) Name() string { return "pdf" }

// Extensions returns the file extensions handled by this parser.
func (p *PDFParser) Extensions() []string { return []string{".pdf"} }

// Sniff reports whether data starts with the PDF header.
func (p *PDFParser) Sniff(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}

// Parse returns the plain text of every page, in page order.
func (p *PDFParser) Parse(ctx context.Context, data []byte) (text string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	// the pdf reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	out, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return string(out), nil
}
