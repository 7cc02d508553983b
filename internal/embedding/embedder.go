// Package embedding selects the configured embedder implementation.
package embedding

import (
	"fmt"
	"time"

	"ragchat/internal/config"
	"ragchat/internal/domain"
	"ragchat/internal/embedding/ollama"
	"ragchat/internal/embedding/openai"
	"ragchat/internal/embedding/tfidf"
)

// New builds the embedder named by cfg.Type. The empty type selects the
// local TF-IDF embedder.
func New(cfg config.EmbedderConfig) (domain.Embedder, error) {
	switch cfg.Type {
	case "tfidf", "":
		return tfidf.NewEmbedder(), nil
	case "openai":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.OpenAI.BaseURL,
			APIKeyEnv: cfg.OpenAI.APIKeyEnv,
			Model:     cfg.OpenAI.Model,
			BatchSize: cfg.OpenAI.BatchSize,
			Timeout:   time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder init failed: %w", err)
		}
		return client, nil
	case "ollama":
		o := cfg.Ollama
		if o == nil {
			o = &config.OllamaEmbedderConfig{}
		}
		return ollama.NewEmbedder(o.BaseURL, o.Model, time.Duration(o.TimeoutSecs)*time.Second), nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Type)
	}
}
