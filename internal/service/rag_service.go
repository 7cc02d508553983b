// Package service runs the startup pipeline that turns a document into a
// searchable vector index.
package service

import (
	"context"
	"errors"
	"fmt"

	"ragchat/internal/domain"
	"ragchat/internal/logger"
)

// DefaultBatchSize is the number of segments embedded per EmbedAll call.
const DefaultBatchSize = 32

// DocumentLoader reads and parses one document from disk.
type DocumentLoader interface {
	Load(ctx context.Context, path string) (*domain.Document, error)
}

// ProgressFunc is called after every embedded batch.
type ProgressFunc func(done, total int)

// IngestReport describes a completed ingestion.
type IngestReport struct {
	Document  *domain.Document
	Segments  int
	Dimension int
	Summary   string
}

// RAGService wires the loader, segmenter, embedder and vector store.
type RAGService struct {
	loader              DocumentLoader
	chunker             domain.Chunker
	embedder            domain.Embedder
	store               domain.VectorStore
	summarizer          domain.Summarizer
	summaryMaxSentences int
	batchSize           int
}

// NewRAGService creates the ingestion service. summarizer may be nil.
func NewRAGService(loader DocumentLoader, chunker domain.Chunker, embedder domain.Embedder, store domain.VectorStore, summarizer domain.Summarizer, summaryMaxSentences int) *RAGService {
	return &RAGService{
		loader:              loader,
		chunker:             chunker,
		embedder:            embedder,
		store:               store,
		summarizer:          summarizer,
		summaryMaxSentences: summaryMaxSentences,
		batchSize:           DefaultBatchSize,
	}
}

// WithBatchSize overrides the embedding batch size.
func (s *RAGService) WithBatchSize(n int) *RAGService {
	if n > 0 {
		s.batchSize = n
	}
	return s
}

// Ingest loads path, splits it, embeds every segment and stores the
// vectors. Each stage completes before the next begins; any error aborts
// the whole ingestion.
func (s *RAGService) Ingest(ctx context.Context, path string, progress ProgressFunc) (*IngestReport, error) {
	logger.Section("Ingestion")
	doc, err := s.loader.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	logger.Debug("loaded %s (%s, %d bytes of text)", doc.Path, doc.Format, len(doc.Content))

	chunks, err := s.chunker.Chunk(*doc)
	if err != nil {
		return nil, fmt.Errorf("split document: %w", err)
	}
	if len(chunks) == 0 {
		return nil, errors.New("split document: no segments produced")
	}
	logger.Debug("split into %d segments", len(chunks))

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	if err := s.embedder.Prepare(texts); err != nil {
		return nil, fmt.Errorf("prepare embedder: %w", err)
	}

	vectors := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += s.batchSize {
		end := min(start+s.batchSize, len(texts))
		batch, err := s.embedder.EmbedAll(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed segments %d-%d: %w", start, end-1, err)
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("embed segments %d-%d: got %d vectors", start, end-1, len(batch))
		}
		vectors = append(vectors, batch...)
		if progress != nil {
			progress(len(vectors), len(texts))
		}
	}

	dimension := len(vectors[0])
	if err := s.store.Init(dimension); err != nil {
		return nil, fmt.Errorf("init vector store: %w", err)
	}
	if err := s.store.AddAll(chunks, vectors); err != nil {
		return nil, fmt.Errorf("store embeddings: %w", err)
	}
	logger.Debug("stored %d vectors of dimension %d using %s", len(vectors), dimension, s.embedder.Name())

	report := &IngestReport{Document: doc, Segments: len(chunks), Dimension: dimension}
	if s.summarizer != nil {
		summary, err := s.summarizer.Summarize(doc.Content, s.summaryMaxSentences)
		if err != nil {
			logger.Warn("summary unavailable: %v", err)
		} else {
			report.Summary = summary
		}
	}
	return report, nil
}
