// Package llm builds the chat model selected by configuration.
package llm

import (
	"fmt"
	"strings"
	"time"

	"ragchat/internal/config"
	"ragchat/internal/domain"
	"ragchat/internal/llm/gemini"
	"ragchat/internal/llm/openai"
)

// ErrNoCandidates is returned by the Gemini model when no answer text comes back.
var ErrNoCandidates = gemini.ErrNoCandidates

// New creates a chat model for cfg.Provider using apiKey.
func New(cfg config.ChatConfig, apiKey string) (domain.ChatModel, error) {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "gemini":
		m, err := gemini.New(gemini.Config{APIKey: apiKey, BaseURL: cfg.BaseURL, Model: cfg.Model, Timeout: timeout})
		if err != nil {
			return nil, fmt.Errorf("gemini chat init failed: %w", err)
		}
		return m, nil
	case "openai":
		m, err := openai.New(openai.Config{APIKey: apiKey, BaseURL: cfg.BaseURL, Model: cfg.Model, Timeout: timeout})
		if err != nil {
			return nil, fmt.Errorf("openai chat init failed: %w", err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown chat provider: %s", cfg.Provider)
	}
}
