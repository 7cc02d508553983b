package chunker

import (
	"strconv"
	"strings"

	"ragchat/internal/domain"
)

// Default sizes, in characters (runes).
const (
	DefaultMaxChars     = 300
	DefaultOverlapChars = 30
)

// defaultSeparators are tried in order: paragraphs, lines, sentences, words.
// When none fits, the chunk is cut at the size limit.
var defaultSeparators = []string{"\n\n", "\n", ". ", "! ", "? ", "; ", " "}

// RecursiveChunker splits text at the coarsest natural boundary that keeps a
// chunk within maxChars. Every chunk after the first starts with the last
// overlap characters of its predecessor, so dropping that prefix from each
// chunk and concatenating yields the original text.
type RecursiveChunker struct {
	maxChars   int
	overlap    int
	separators [][]rune
}

// NewRecursiveChunker creates a chunker with the given size and overlap.
func NewRecursiveChunker(maxChars, overlap int) *RecursiveChunker {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChars {
		overlap = maxChars / 4
	}
	seps := make([][]rune, len(defaultSeparators))
	for i, s := range defaultSeparators {
		seps[i] = []rune(s)
	}
	return &RecursiveChunker{maxChars: maxChars, overlap: overlap, separators: seps}
}

// MaxChars returns the maximum chunk length.
func (c *RecursiveChunker) MaxChars() int { return c.maxChars }

// Overlap returns the number of characters shared by consecutive chunks.
func (c *RecursiveChunker) Overlap() int { return c.overlap }

// Chunk splits the document content into ordered, overlapping chunks.
func (c *RecursiveChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	if strings.TrimSpace(document.Content) == "" {
		return nil, nil
	}
	text := []rune(document.Content)

	var chunks []domain.Chunk
	start := 0
	for idx := 0; ; idx++ {
		end := len(text)
		if end-start > c.maxChars {
			// the cut must leave room for progress past the overlap
			end = c.cut(text, start+c.overlap+1, start+c.maxChars, c.separators)
		}
		chunks = append(chunks, domain.Chunk{
			DocumentID: document.ID,
			ChunkID:    document.ID + ":" + strconv.Itoa(idx),
			Text:       string(text[start:end]),
			Index:      idx,
			Start:      start,
			End:        end,
		})
		if end == len(text) {
			break
		}
		start = end - c.overlap
	}
	return chunks, nil
}

// cut returns the end offset of the next chunk: just after the last
// occurrence of the first separator that ends within [minEnd, maxEnd].
// Finer separators are only tried when coarser ones do not occur.
func (c *RecursiveChunker) cut(text []rune, minEnd, maxEnd int, seps [][]rune) int {
	if len(seps) == 0 {
		return maxEnd
	}
	sep := seps[0]
	for end := maxEnd; end >= minEnd; end-- {
		if endsWith(text[:end], sep) {
			return end
		}
	}
	return c.cut(text, minEnd, maxEnd, seps[1:])
}

func endsWith(text, suffix []rune) bool {
	if len(suffix) > len(text) {
		return false
	}
	tail := text[len(text)-len(suffix):]
	for i := range suffix {
		if tail[i] != suffix[i] {
			return false
		}
	}
	return true
}
