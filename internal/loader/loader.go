// Package loader reads a document from disk and turns it into plain text.
// The concrete format is chosen by sniffing the file content first and the
// file extension second; each format is handled by its own domain.Parser.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"ragchat/internal/domain"
	"ragchat/internal/logger"
)

var (
	// ErrUnsupportedFormat is returned when no parser accepts the file.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrEmptyDocument is returned when a parser extracts no text.
	ErrEmptyDocument = errors.New("document contains no text")
)

// documentNamespace scopes document IDs derived from file paths.
var documentNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("ragchat/document"))

// Loader loads single documents through a set of format parsers.
type Loader struct {
	parsers  []domain.Parser
	readFile func(string) ([]byte, error)
}

// New creates a loader. Without arguments it registers the PDF, DOCX and
// plain text parsers, in that sniffing order.
func New(parsers ...domain.Parser) *Loader {
	if len(parsers) == 0 {
		parsers = []domain.Parser{NewPDFParser(), NewDOCXParser(), NewTextParser()}
	}
	return &Loader{parsers: parsers, readFile: os.ReadFile}
}

// Load reads the file at path and returns its normalised text content.
func (l *Loader) Load(ctx context.Context, path string) (*domain.Document, error) {
	data, err := l.readFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	parser, err := l.parserFor(path, data)
	if err != nil {
		return nil, err
	}
	logger.Debug("parsing %s with %s parser (%d bytes)", path, parser.Name(), len(data))

	text, err := parser.Parse(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("parse %s as %s: %w", path, parser.Name(), err)
	}
	content := Normalize(text)
	if content == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyDocument)
	}

	return &domain.Document{
		ID:      DocumentID(path),
		Path:    path,
		Title:   extractTitle(path),
		Format:  parser.Name(),
		Content: content,
	}, nil
}

// Formats lists the names of the registered parsers.
func (l *Loader) Formats() []string {
	names := make([]string, len(l.parsers))
	for i, p := range l.parsers {
		names[i] = p.Name()
	}
	return names
}

func (l *Loader) parserFor(path string, data []byte) (domain.Parser, error) {
	for _, p := range l.parsers {
		if p.Sniff(data) {
			return p, nil
		}
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, p := range l.parsers {
		for _, e := range p.Extensions() {
			if e == ext {
				return p, nil
			}
		}
	}
	return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}

// DocumentID derives a stable identifier from the document path.
func DocumentID(path string) string {
	return uuid.NewSHA1(documentNamespace, []byte(filepath.Clean(path))).String()
}

var (
	horizontalSpaceRe = regexp.MustCompile(`[ \t\f\v\r\x{00a0}]+`)
	blankLinesRe      = regexp.MustCompile(`\n\s*\n\s*`)
)

// Normalize collapses runs of horizontal whitespace, trims every line and
// keeps at most one blank line between paragraphs.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = horizontalSpaceRe.ReplaceAllString(text, " ")
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	text = strings.Join(lines, "\n")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// extractTitle builds a human-readable title from the file name.
func extractTitle(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return name
}
