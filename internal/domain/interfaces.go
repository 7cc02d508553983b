package domain

import (
	"context"
	"errors"
)

// Errors shared by every VectorStore implementation.
var (
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	ErrLengthMismatch    = errors.New("chunks and vectors length mismatch")
)

// Document is the parsed content of a single source file.
type Document struct {
	ID      string
	Path    string
	Title   string
	Format  string
	Content string
}

// Chunk is a contiguous piece of a document used for retrieval.
// Start and End are rune offsets into Document.Content.
type Chunk struct {
	DocumentID string
	ChunkID    string
	Text       string
	Index      int
	Start      int
	End        int
}

// SearchResult represents a matching chunk with a relevance score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Chat roles understood by every ChatModel.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single entry of a chat request.
type Message struct {
	Role    string
	Content string
}

// Turn is one completed question/answer exchange.
type Turn struct {
	Question string
	Answer   string
}

// ChatOptions configures a single completion request.
type ChatOptions struct {
	Temperature float64
	MaxTokens   int
}

// Parser extracts plain text from the bytes of one document format.
type Parser interface {
	Name() string
	Extensions() []string
	// Sniff reports whether data looks like this parser's format.
	Sniff(data []byte) bool
	Parse(ctx context.Context, data []byte) (string, error)
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
	// EmbedAll returns exactly one vector per input text, in input order.
	EmbedAll(ctx context.Context, texts []string) ([][]float64, error)
}

// VectorStore holds chunk vectors and supports similarity search.
type VectorStore interface {
	Init(dimension int) error
	AddAll(chunks []Chunk, vectors [][]float64) error
	// Search returns at most maxResults entries ordered by descending score,
	// none of them scoring below minScore.
	Search(vector []float64, maxResults int, minScore float64) ([]SearchResult, error)
	Count() int
	Clear() error
}

// ChatModel generates a reply for a conversation.
type ChatModel interface {
	ModelName() string
	Chat(ctx context.Context, messages []Message, opts ChatOptions) (string, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
