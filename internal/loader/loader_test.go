package loader

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/domain"
)

// stubParser is a test double for domain.Parser.
type stubParser struct {
	name  string
	exts  []string
	sniff bool
	text  string
	err   error
}

func (s *stubParser) Name() string                                  { return s.name }
func (s *stubParser) Extensions() []string                          { return s.exts }
func (s *stubParser) Sniff([]byte) bool                             { return s.sniff }
func (s *stubParser) Parse(context.Context, []byte) (string, error) { return s.text, s.err }

// createTestDOCX creates a minimal DOCX archive in memory.
func createTestDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)
	ct, err := w.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = ct.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Types/>`))
	require.NoError(t, err)
	if documentXML != "" {
		doc, err := w.Create(docxBodyPath)
		require.NoError(t, err)
		_, err = doc.Write([]byte(documentXML))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoad_TextFile(t *testing.T) {
	path := writeFile(t, "release_notes.md", []byte("# Notes\r\n\r\n\r\n\r\nFirst   line.\t\tSecond.\n"))

	doc, err := New().Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "text", doc.Format)
	assert.Equal(t, "# Notes\n\nFirst line. Second.", doc.Content)
	assert.Equal(t, "release notes", doc.Title)
	assert.Equal(t, path, doc.Path)
	assert.Equal(t, DocumentID(path), doc.ID)
}

func TestLoad_DOCXFile(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Hello </w:t></w:r><w:r><w:t>World</w:t></w:r></w:p>
<w:p></w:p>
<w:p><w:r><w:t>Second paragraph.</w:t></w:r></w:p>
</w:body>
</w:document>`
	// a misleading extension still resolves through content sniffing
	path := writeFile(t, "report.bin", createTestDOCX(t, body))

	doc, err := New().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "docx", doc.Format)
	assert.Equal(t, "Hello World\n\nSecond paragraph.", doc.Content)
}

func TestLoad_PDFFile(t *testing.T) {
	path := writeFile(t, "rag.pdf", buildTestPDF(t, "Retrieval augmented generation"))

	doc, err := New().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "pdf", doc.Format)
	assert.Equal(t, "rag", doc.Title)
	assert.Contains(t, doc.Content, "Retrieval augmented generation")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := New().Load(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	path := writeFile(t, "image.png", []byte{0x89, 'P', 'N', 'G', 0, 0, 0, 0})

	_, err := New().Load(context.Background(), path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad_EmptyDocument(t *testing.T) {
	path := writeFile(t, "blank.txt", []byte(" \n\n\t "))

	_, err := New().Load(context.Background(), path)
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestLoad_CorruptPDF(t *testing.T) {
	path := writeFile(t, "rag.pdf", []byte("%PDF-1.4\nnot really a pdf"))

	_, err := New().Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdf")
}

func TestParserFor_SniffBeforeExtension(t *testing.T) {
	byExt := &stubParser{name: "ext", exts: []string{".pdf"}}
	bySniff := &stubParser{name: "sniff", sniff: true}
	l := New(byExt, bySniff)

	p, err := l.parserFor("file.pdf", []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, "sniff", p.Name())
}

func TestParserFor_ExtensionFallback(t *testing.T) {
	l := New(&stubParser{name: "a", exts: []string{".a"}}, &stubParser{name: "b", exts: []string{".b"}})

	p, err := l.parserFor("FILE.B", nil)
	require.NoError(t, err)
	assert.Equal(t, "b", p.Name())
}

func TestLoad_ParserError(t *testing.T) {
	l := New(&stubParser{name: "broken", sniff: true, err: assert.AnError})
	l.readFile = func(string) ([]byte, error) { return []byte("x"), nil }

	_, err := l.Load(context.Background(), "doc.any")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestFormats(t *testing.T) {
	assert.Equal(t, []string{"pdf", "docx", "text"}, New().Formats())
}

func TestDocumentID_Stable(t *testing.T) {
	assert.Equal(t, DocumentID("a/b.pdf"), DocumentID("a/./b.pdf"))
	assert.NotEqual(t, DocumentID("a.pdf"), DocumentID("b.pdf"))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "collapse spaces", in: "a  \t b", want: "a b"},
		{name: "trim lines", in: "  a  \n  b  ", want: "a\nb"},
		{name: "single blank line kept", in: "a\n\nb", want: "a\n\nb"},
		{name: "many blank lines collapsed", in: "a\n \n\n  \n\nb", want: "a\n\nb"},
		{name: "crlf", in: "a\r\nb", want: "a\nb"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestInterfaceCompliance(t *testing.T) {
	var _ domain.Parser = (*PDFParser)(nil)
	var _ domain.Parser = (*DOCXParser)(nil)
	var _ domain.Parser = (*TextParser)(nil)
}
