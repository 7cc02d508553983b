package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/chunker"
	"ragchat/internal/domain"
	"ragchat/internal/embedding/tfidf"
	"ragchat/internal/summarizer"
	"ragchat/internal/vectorstore/memory"
)

type stubLoader struct {
	doc   *domain.Document
	err   error
	paths []string
}

func (l *stubLoader) Load(_ context.Context, path string) (*domain.Document, error) {
	l.paths = append(l.paths, path)
	if l.err != nil {
		return nil, l.err
	}
	return l.doc, nil
}

type failingEmbedder struct {
	domain.Embedder
	failAfter int
	calls     int
}

func (e *failingEmbedder) EmbedAll(ctx context.Context, texts []string) ([][]float64, error) {
	e.calls++
	if e.calls > e.failAfter {
		return nil, errors.New("quota exceeded")
	}
	return e.Embedder.EmbedAll(ctx, texts)
}

func testDocument() *domain.Document {
	paragraphs := []string{
		"Retrieval augmented generation combines search with a language model.",
		"Documents are split into overlapping segments before they are embedded.",
		"Each segment is stored in a vector index for similarity search.",
		"At question time the closest segments are added to the prompt.",
	}
	content := strings.Repeat(strings.Join(paragraphs, "\n\n")+"\n\n", 4)
	return &domain.Document{ID: "doc", Path: "rag.txt", Format: "text", Content: strings.TrimSpace(content)}
}

func TestIngest_Success(t *testing.T) {
	loader := &stubLoader{doc: testDocument()}
	store := memory.NewStorage()
	svc := NewRAGService(loader, chunker.NewRecursiveChunker(300, 30), tfidf.NewEmbedder(), store,
		summarizer.NewFrequencySummarizer(), 2).WithBatchSize(2)

	var progress [][2]int
	report, err := svc.Ingest(context.Background(), "rag.txt", func(done, total int) {
		progress = append(progress, [2]int{done, total})
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"rag.txt"}, loader.paths)
	assert.Greater(t, report.Segments, 1)
	assert.Equal(t, report.Segments, store.Count())
	assert.Greater(t, report.Dimension, 0)
	assert.NotEmpty(t, report.Summary)
	assert.Same(t, loader.doc, report.Document)

	require.NotEmpty(t, progress)
	last := progress[len(progress)-1]
	assert.Equal(t, [2]int{report.Segments, report.Segments}, last)
	for i := 1; i < len(progress); i++ {
		assert.Greater(t, progress[i][0], progress[i-1][0])
	}
}

func TestIngest_NilSummarizer(t *testing.T) {
	svc := NewRAGService(&stubLoader{doc: testDocument()}, chunker.NewRecursiveChunker(300, 30),
		tfidf.NewEmbedder(), memory.NewStorage(), nil, 3)
	report, err := svc.Ingest(context.Background(), "x", nil)
	require.NoError(t, err)
	assert.Empty(t, report.Summary)
}

func TestIngest_LoadError(t *testing.T) {
	store := memory.NewStorage()
	svc := NewRAGService(&stubLoader{err: errors.New("no such file")}, chunker.NewRecursiveChunker(300, 30),
		tfidf.NewEmbedder(), store, nil, 3)

	_, err := svc.Ingest(context.Background(), "missing.pdf", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load document: no such file")
	assert.Zero(t, store.Count())
}

func TestIngest_EmbedErrorStoresNothing(t *testing.T) {
	store := memory.NewStorage()
	emb := &failingEmbedder{Embedder: tfidf.NewEmbedder(), failAfter: 1}
	svc := NewRAGService(&stubLoader{doc: testDocument()}, chunker.NewRecursiveChunker(300, 30),
		emb, store, nil, 3).WithBatchSize(1)

	_, err := svc.Ingest(context.Background(), "x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Zero(t, store.Count())
}

func TestWithBatchSize_IgnoresNonPositive(t *testing.T) {
	svc := NewRAGService(nil, nil, nil, nil, nil, 0).WithBatchSize(0)
	assert.Equal(t, DefaultBatchSize, svc.batchSize)
}
