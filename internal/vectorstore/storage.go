// Package vectorstore selects the configured vector store implementation.
package vectorstore

import (
	"fmt"
	"time"

	"ragchat/internal/config"
	"ragchat/internal/domain"
	"ragchat/internal/vectorstore/memory"
	"ragchat/internal/vectorstore/qdrant"
)

// Sentinel errors returned by every store.
var (
	ErrDimensionMismatch = domain.ErrDimensionMismatch
	ErrLengthMismatch    = domain.ErrLengthMismatch
)

// New builds the store named by cfg.Type. The empty type selects the
// in-memory store.
func New(cfg config.VectorStoreConfig) (domain.VectorStore, error) {
	switch cfg.Type {
	case "memory", "":
		return memory.NewStorage(), nil
	case "qdrant":
		if cfg.Qdrant == nil {
			return nil, fmt.Errorf("qdrant config missing")
		}
		return qdrant.NewStorage(qdrant.Config{
			URL:        cfg.Qdrant.URL,
			APIKey:     cfg.Qdrant.APIKey,
			Collection: cfg.Qdrant.Collection,
			Timeout:    time.Duration(cfg.Qdrant.TimeoutSecs) * time.Second,
		}), nil
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.Type)
	}
}
