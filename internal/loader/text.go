package loader

import (
	"bytes"
	"context"
	"errors"
	"unicode/utf8"
)

// sniffLen bounds how much of a file is inspected when sniffing text.
const sniffLen = 512

// TextParser handles plain text and lightweight markup formats.
type TextParser struct{}

// NewTextParser creates a plain text parser.
func NewTextParser() *TextParser { return &TextParser{} }

// Name returns the format name.
func (p *TextParser) Name() string { return "text" }

// Extensions returns the file extensions handled by this parser.
func (p *TextParser) Extensions() []string {
	return []string{".txt", ".md", ".markdown", ".rst", ".csv", ".log"}
}

// Sniff reports whether the head of data is valid UTF-8 without NUL bytes.
func (p *TextParser) Sniff(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
		// do not reject a multi-byte rune cut at the boundary
		for i := 0; i < utf8.UTFMax && !utf8.Valid(head); i++ {
			head = head[:len(head)-1]
		}
	}
	return utf8.Valid(head) && bytes.IndexByte(head, 0) < 0
}

// Parse returns data as text after dropping a UTF-8 byte order mark.
func (p *TextParser) Parse(_ context.Context, data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", errors.New("text: invalid UTF-8")
	}
	return string(data), nil
}
