package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DocumentConfig points at the single source document.
type DocumentConfig struct {
	Path string `yaml:"path"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	BatchSize   int    `yaml:"batch_size"`
}

// OllamaEmbedderConfig holds configuration for a local Ollama server.
type OllamaEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the text embedder implementation.
//
// "tfidf" (default) needs no network but is fitted to the loaded document,
// so a question word absent from the document carries no weight. "ollama"
// with the all-minilm model is the fixed pretrained local embedder and is
// the setup to use when questions may be phrased in other words than the
// document. "openai" calls a hosted embeddings API.
type EmbedderConfig struct {
	Type      string                `yaml:"type"`
	BatchSize int                   `yaml:"batch_size"`
	OpenAI    *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
	Ollama    *OllamaEmbedderConfig `yaml:"ollama,omitempty"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	Type         string `yaml:"type"`
	MaxChars     int    `yaml:"max_chars"`
	OverlapChars int    `yaml:"overlap_chars"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// RetrieverConfig bounds what a single retrieval returns.
type RetrieverConfig struct {
	MaxResults int     `yaml:"max_results"`
	MinScore   float64 `yaml:"min_score"`
}

// ChatConfig selects and configures the hosted chat model.
type ChatConfig struct {
	Provider     string   `yaml:"provider"`
	Model        string   `yaml:"model"`
	Temperature  *float64 `yaml:"temperature,omitempty"`
	BaseURL      string   `yaml:"base_url"`
	TimeoutSecs  int      `yaml:"timeout_secs"`
	SystemPrompt string   `yaml:"system_prompt"`
}

// MemoryConfig bounds the conversation history.
type MemoryConfig struct {
	MaxTurns int `yaml:"max_turns"`
}

// SummarizerConfig selects and configures the summarizer.
type SummarizerConfig struct {
	Type         string `yaml:"type"`
	MaxSentences int    `yaml:"max_sentences"`
}

// LoggingConfig controls diagnostic output.
type LoggingConfig struct {
	Verbose bool `yaml:"verbose"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Document    DocumentConfig    `yaml:"document"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Retriever   RetrieverConfig   `yaml:"retriever"`
	Chat        ChatConfig        `yaml:"chat"`
	Memory      MemoryConfig      `yaml:"memory"`
	Summarizer  SummarizerConfig  `yaml:"summarizer"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// Defaults used when a field is left empty.
const (
	DefaultDocumentPath = "data/rag.pdf"
	DefaultMaxChars     = 300
	DefaultOverlapChars = 30
	DefaultMaxResults   = 3
	DefaultMinScore     = 0.5
	DefaultChatProvider = "gemini"
	DefaultGeminiModel  = "gemini-2.0-flash-exp"
	DefaultOpenAIModel  = "gpt-4o-mini"
	DefaultTemperature  = 0.7
	DefaultChatTimeout  = 120
	DefaultMaxTurns     = 10
	DefaultSummaryLen   = 3
	DefaultBatchSize    = 32
)

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/ragchat/config.yaml.
// If neither exists, it writes defaults to ~/.config/ragchat/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := DefaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ragchat", "config.yaml"), nil
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *AppConfig {
	cfg := &AppConfig{
		Document:    DocumentConfig{Path: DefaultDocumentPath},
		Embedder:    EmbedderConfig{Type: "tfidf", BatchSize: DefaultBatchSize},
		Chunker:     ChunkerConfig{Type: "recursive", MaxChars: DefaultMaxChars, OverlapChars: DefaultOverlapChars},
		VectorStore: VectorStoreConfig{Type: "memory"},
		Retriever:   RetrieverConfig{MaxResults: DefaultMaxResults, MinScore: DefaultMinScore},
		Chat: ChatConfig{
			Provider:    DefaultChatProvider,
			Model:       DefaultGeminiModel,
			Temperature: Float(DefaultTemperature),
			TimeoutSecs: DefaultChatTimeout,
		},
		Memory:     MemoryConfig{MaxTurns: DefaultMaxTurns},
		Summarizer: SummarizerConfig{Type: "frequency", MaxSentences: DefaultSummaryLen},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Document.Path == "" {
		cfg.Document.Path = DefaultDocumentPath
	}
	if cfg.Chunker.MaxChars <= 0 {
		cfg.Chunker.MaxChars = DefaultMaxChars
	}
	if cfg.Chunker.OverlapChars < 0 {
		cfg.Chunker.OverlapChars = DefaultOverlapChars
	}
	if cfg.Retriever.MaxResults <= 0 {
		cfg.Retriever.MaxResults = DefaultMaxResults
	}
	// min_score: 0 is a valid threshold, so only negative values are reset
	if cfg.Retriever.MinScore < 0 {
		cfg.Retriever.MinScore = DefaultMinScore
	}
	if cfg.Chat.Provider == "" {
		cfg.Chat.Provider = DefaultChatProvider
	}
	if cfg.Chat.Model == "" {
		switch cfg.Chat.Provider {
		case "openai":
			cfg.Chat.Model = DefaultOpenAIModel
		default:
			cfg.Chat.Model = DefaultGeminiModel
		}
	}
	// an explicit temperature of 0 is kept
	if cfg.Chat.Temperature == nil {
		cfg.Chat.Temperature = Float(DefaultTemperature)
	}
	if cfg.Chat.TimeoutSecs == 0 {
		cfg.Chat.TimeoutSecs = DefaultChatTimeout
	}
	if cfg.Embedder.BatchSize <= 0 {
		cfg.Embedder.BatchSize = DefaultBatchSize
	}
	if cfg.Memory.MaxTurns <= 0 {
		cfg.Memory.MaxTurns = DefaultMaxTurns
	}
	if cfg.Summarizer.MaxSentences == 0 {
		cfg.Summarizer.MaxSentences = DefaultSummaryLen
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
		if cfg.Embedder.OpenAI.BatchSize == 0 {
			cfg.Embedder.OpenAI.BatchSize = 32
		}
	}
	if cfg.Embedder.Type == "ollama" && cfg.Embedder.Ollama == nil {
		cfg.Embedder.Ollama = &OllamaEmbedderConfig{}
	}
	if cfg.Embedder.Ollama != nil {
		if cfg.Embedder.Ollama.BaseURL == "" {
			cfg.Embedder.Ollama.BaseURL = "http://localhost:11434"
		}
		if cfg.Embedder.Ollama.Model == "" {
			cfg.Embedder.Ollama.Model = "all-minilm"
		}
		if cfg.Embedder.Ollama.TimeoutSecs == 0 {
			cfg.Embedder.Ollama.TimeoutSecs = 60
		}
	}
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
