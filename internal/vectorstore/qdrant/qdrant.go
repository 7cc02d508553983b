package qdrant

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"ragchat/internal/domain"
	"ragchat/internal/logger"
)

// pointNamespace scopes point IDs; Qdrant only accepts integers and UUIDs.
var pointNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("ragchat/qdrant-point"))

// Storage is a minimal REST client to Qdrant.
// It assumes cosine distance and creates the collection if missing.
// Scores use the same (cosine + 1) / 2 relevance scale as the memory store.
type Storage struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	client     *http.Client
}

// Config holds connection settings.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// NewStorage creates a client for one collection.
func NewStorage(cfg Config) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if cfg.Collection == "" {
		cfg.Collection = "ragchat"
	}
	return &Storage{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// Init recreates the collection with the given vector size, dropping
// points left by a previous run.
func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.dimension = dimension
	_ = s.Clear()
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return s.do(http.MethodPut, s.collectionURL(""), body, nil)
}

// AddAll upserts one point per chunk and waits for the write to apply.
func (s *Storage) AddAll(chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return domain.ErrLengthMismatch
	}
	if len(chunks) == 0 {
		return nil
	}
	points := make([]map[string]any, len(chunks))
	for i := range chunks {
		if len(vectors[i]) != s.dimension {
			return domain.ErrDimensionMismatch
		}
		points[i] = map[string]any{
			"id":     PointID(chunks[i].ChunkID),
			"vector": vectors[i],
			"payload": map[string]any{
				"document_id": chunks[i].DocumentID,
				"chunk_id":    chunks[i].ChunkID,
				"index":       chunks[i].Index,
				"start":       chunks[i].Start,
				"end":         chunks[i].End,
				"text":        chunks[i].Text,
			},
		}
	}
	return s.do(http.MethodPut, s.collectionURL("/points?wait=true"), map[string]any{"points": points}, nil)
}

// Search asks Qdrant for the nearest points above the threshold.
func (s *Storage) Search(vector []float64, maxResults int, minScore float64) ([]domain.SearchResult, error) {
	if maxResults <= 0 || isZero(vector) {
		return nil, nil
	}
	req := map[string]any{
		"vector":          vector,
		"limit":           maxResults,
		"with_payload":    true,
		"score_threshold": 2*minScore - 1,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := s.do(http.MethodPost, s.collectionURL("/points/search"), req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, domain.SearchResult{
			Chunk: chunkFromPayload(r.Payload),
			Score: (r.Score + 1) / 2,
		})
	}
	return results, nil
}

// Count returns the number of points, or 0 when Qdrant cannot be reached.
func (s *Storage) Count() int {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	if err := s.do(http.MethodPost, s.collectionURL("/points/count"), map[string]any{"exact": true}, &resp); err != nil {
		logger.Warn("qdrant count failed: %v", err)
		return 0
	}
	return resp.Result.Count
}

// Clear drops the collection. Errors are ignored.
func (s *Storage) Clear() error {
	if err := s.do(http.MethodDelete, s.collectionURL(""), nil, nil); err != nil {
		logger.Debug("qdrant clear: %v", err)
	}
	return nil
}

func isZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// PointID maps a chunk ID onto a deterministic UUID.
func PointID(chunkID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(chunkID)).String()
}

func chunkFromPayload(payload map[string]any) domain.Chunk {
	chunk := domain.Chunk{}
	if v, ok := payload["document_id"].(string); ok {
		chunk.DocumentID = v
	}
	if v, ok := payload["chunk_id"].(string); ok {
		chunk.ChunkID = v
	}
	if v, ok := payload["index"].(float64); ok {
		chunk.Index = int(v)
	}
	if v, ok := payload["start"].(float64); ok {
		chunk.Start = int(v)
	}
	if v, ok := payload["end"].(float64); ok {
		chunk.End = int(v)
	}
	if v, ok := payload["text"].(string); ok {
		chunk.Text = v
	}
	return chunk
}

func (s *Storage) collectionURL(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", s.url, s.collection, suffix)
}

func (s *Storage) do(method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
