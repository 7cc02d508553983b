package loader

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxBodyPath = "word/document.xml"

// DOCXParser extracts paragraph text from Office Open XML documents.
type DOCXParser struct{}

// NewDOCXParser creates a DOCX parser.
func NewDOCXParser() *DOCXParser { return &DOCXParser{} }

// Name returns the format name.
func (p *DOCXParser) Name() string { return "docx" }

// Extensions returns the file extensions handled by this parser.
func (p *DOCXParser) Extensions() []string { return []string{".docx"} }

// Sniff reports whether data is a ZIP archive containing a Word body part.
func (p *DOCXParser) Sniff(data []byte) bool {
	if !bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		return false
	}
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range reader.File {
		if f.Name == docxBodyPath {
			return true
		}
	}
	return false
}

// Parse returns one line per paragraph, separated by blank lines.
func (p *DOCXParser) Parse(_ context.Context, data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	for _, f := range reader.File {
		if f.Name != docxBodyPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", docxBodyPath, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("read %s: %w", docxBodyPath, err)
		}
		return parseDocumentXML(content)
	}
	return "", errors.New("docx: missing " + docxBodyPath)
}

// wordNS is the WordprocessingML main namespace.
const wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// parseDocumentXML walks the body token by token so paragraphs nested in
// tables, text boxes and content controls are read too. Every w:p becomes
// one paragraph; w:tab and w:br inside it become a tab and a newline.
func parseDocumentXML(content []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(content))
	var (
		paras  []string
		cur    strings.Builder
		inText bool
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			paras = append(paras, s)
		}
		cur.Reset()
	}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode %s: %w", docxBodyPath, err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if !isWord(el.Name) {
				continue
			}
			switch el.Name.Local {
			case "t":
				inText = true
			case "tab":
				cur.WriteByte('\t')
			case "br", "cr":
				cur.WriteByte('\n')
			case "p":
				// a nested paragraph (text box) ends the outer run of text
				flush()
			}
		case xml.EndElement:
			if !isWord(el.Name) {
				continue
			}
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				flush()
			case "tc":
				// cells without their own paragraph break still separate
				flush()
			}
		case xml.CharData:
			if inText {
				cur.Write(el)
			}
		}
	}
	flush()
	return strings.Join(paras, "\n\n"), nil
}

// isWord accepts the main namespace, plus an undeclared "w" prefix or no
// namespace at all, both seen in files written by other tools.
func isWord(name xml.Name) bool {
	return name.Space == wordNS || name.Space == "w" || name.Space == ""
}
