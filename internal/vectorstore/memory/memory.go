package memory

import (
	"errors"
	"math"
	"sort"
	"sync"

	"ragchat/internal/domain"
)

var (
	// ErrDimensionMismatch is returned when a vector does not match the store dimension.
	ErrDimensionMismatch = domain.ErrDimensionMismatch
	// ErrLengthMismatch is returned when chunks and vectors differ in length.
	ErrLengthMismatch = domain.ErrLengthMismatch
)

// Storage is a simple in-memory vector store using brute-force cosine similarity.
// Scores are relevance scores in [0, 1]: (cosine + 1) / 2.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float64
	chunks    []domain.Chunk
}

// NewStorage creates an empty store.
func NewStorage() *Storage { return &Storage{} }

// Init fixes the vector dimension and drops any stored entries.
func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = nil
	s.chunks = nil
	return nil
}

// AddAll stores the parallel chunk and vector slices. Nothing is stored
// when any vector has the wrong dimension.
func (s *Storage) AddAll(chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return ErrLengthMismatch
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return ErrDimensionMismatch
		}
	}
	s.chunks = append(s.chunks, chunks...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

// Search ranks all entries against vector and returns at most maxResults
// of them scoring at least minScore. Equal scores keep insertion order.
// The zero vector matches no entry.
func (s *Storage) Search(vector []float64, maxResults int, minScore float64) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if maxResults <= 0 {
		return nil, nil
	}
	if len(s.vectors) > 0 && len(vector) != s.dimension {
		return nil, ErrDimensionMismatch
	}
	qnorm := norm(vector)
	if qnorm == 0 {
		// a query with no signal is similar to nothing
		return nil, nil
	}
	results := make([]domain.SearchResult, 0, len(s.vectors))
	for i, v := range s.vectors {
		score := RelevanceScore(cosine(v, vector, qnorm))
		if score < minScore {
			continue
		}
		results = append(results, domain.SearchResult{Chunk: s.chunks[i], Score: score})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// Count returns the number of stored entries.
func (s *Storage) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}

// Clear drops all entries but keeps the dimension.
func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	s.chunks = nil
	return nil
}

// RelevanceScore maps a cosine similarity in [-1, 1] onto [0, 1].
func RelevanceScore(cos float64) float64 {
	return (cos + 1) / 2
}

// cosine returns the cosine similarity of a and b, given the norm of b.
// A zero vector on either side has similarity 0.
func cosine(a, b []float64, bnorm float64) float64 {
	anorm := norm(a)
	if anorm == 0 || bnorm == 0 {
		return 0
	}
	return dot(a, b) / (anorm * bnorm)
}

func dot(a, b []float64) float64 {
	n := min(len(a), len(b))
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func norm(v []float64) float64 {
	return math.Sqrt(dot(v, v))
}
