package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	// File receives log output when set; required in TUI mode so log
	// lines do not corrupt the terminal.
	File string `yaml:"file"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url" validate:"omitempty,url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs" validate:"min=0"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type" validate:"omitempty,oneof=tfidf openai"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	SentencesPerChunk int `yaml:"sentences_per_chunk" validate:"min=0"`
	OverlapSentences  int `yaml:"overlap_sentences" validate:"min=0"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url" validate:"omitempty,url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs" validate:"min=0"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type" validate:"omitempty,oneof=memory qdrant"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// DocumentsConfig configures the document retrieval source.
type DocumentsConfig struct {
	TopK                int               `yaml:"top_k" validate:"min=0,max=10"`
	SummaryMaxSentences int               `yaml:"summary_max_sentences" validate:"min=0"`
	Embedder            EmbedderConfig    `yaml:"embedder"`
	Chunker             ChunkerConfig     `yaml:"chunker"`
	VectorStore         VectorStoreConfig `yaml:"vector_store"`
}

// TavilyConfig configures the primary web search provider.
type TavilyConfig struct {
	BaseURL     string `yaml:"base_url" validate:"omitempty,url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TimeoutSecs int    `yaml:"timeout_secs" validate:"min=0"`
}

// WebConfig configures the web retrieval source. Type "live" uses
// Tavily with a DuckDuckGo fallback, "demo" serves the fixed result
// table, "off" disables web retrieval entirely.
type WebConfig struct {
	Type        string        `yaml:"type" validate:"omitempty,oneof=live demo off"`
	MaxResults  int           `yaml:"max_results" validate:"min=0,max=10"`
	TimeoutSecs int           `yaml:"timeout_secs" validate:"min=0"`
	Tavily      *TavilyConfig `yaml:"tavily,omitempty"`
}

// RetrievalConfig bounds the merged snippet list handed to synthesis.
type RetrievalConfig struct {
	MaxSnippets     int             `yaml:"max_snippets" validate:"min=0,max=10"`
	SnippetMaxChars int             `yaml:"snippet_max_chars" validate:"min=0"`
	Documents       DocumentsConfig `yaml:"documents"`
	Web             WebConfig       `yaml:"web"`
}

// OpenRouterConfig configures the OpenRouter generation backend.
type OpenRouterConfig struct {
	BaseURL     string  `yaml:"base_url" validate:"omitempty,url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature" validate:"min=0,max=2"`
	MaxTokens   int     `yaml:"max_tokens" validate:"min=0"`
	TimeoutSecs int     `yaml:"timeout_secs" validate:"min=0"`
	AppURL      string  `yaml:"app_url" validate:"omitempty,url"`
}

// ClaudeConfig configures the Anthropic generation backend.
type ClaudeConfig struct {
	APIKeyEnv   string  `yaml:"api_key_env"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature" validate:"min=0,max=1"`
	MaxTokens   int     `yaml:"max_tokens" validate:"min=0"`
	TimeoutSecs int     `yaml:"timeout_secs" validate:"min=0"`
}

// GenerationConfig selects and configures the generation backend.
type GenerationConfig struct {
	Type       string            `yaml:"type" validate:"omitempty,oneof=openrouter claude"`
	OpenRouter *OpenRouterConfig `yaml:"openrouter,omitempty"`
	Claude     *ClaudeConfig     `yaml:"claude,omitempty"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Generation GenerationConfig `yaml:"generation"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/ask/config.yaml.
// If neither exists, it writes defaults to ~/.config/ask/config.yaml and returns them.
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
	cfg := defaultConfig()
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
	return filepath.Join(home, ".config", "ask", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	r := &cfg.Retrieval
	if r.MaxSnippets == 0 {
		r.MaxSnippets = 8
	}
	if r.SnippetMaxChars == 0 {
		r.SnippetMaxChars = 3000
	}
	d := &r.Documents
	if d.TopK == 0 {
		d.TopK = 3
	}
	if d.SummaryMaxSentences == 0 {
		d.SummaryMaxSentences = 5
	}
	if d.Chunker.SentencesPerChunk == 0 {
		d.Chunker.SentencesPerChunk = 5
	}
	if d.Embedder.Type == "" {
		d.Embedder.Type = "tfidf"
	}
	if d.Embedder.Type == "openai" && d.Embedder.OpenAI != nil {
		oa := d.Embedder.OpenAI
		if oa.BaseURL == "" {
			oa.BaseURL = "https://api.openai.com/v1"
		}
		if oa.APIKeyEnv == "" {
			oa.APIKeyEnv = "OPENAI_API_KEY"
		}
		if oa.Model == "" {
			oa.Model = "text-embedding-3-small"
		}
		if oa.TimeoutSecs == 0 {
			oa.TimeoutSecs = 30
		}
	}
	if d.VectorStore.Type == "" {
		d.VectorStore.Type = "memory"
	}
	w := &r.Web
	if w.Type == "" {
		w.Type = "live"
	}
	if w.MaxResults == 0 {
		w.MaxResults = 5
	}
	if w.TimeoutSecs == 0 {
		w.TimeoutSecs = 10
	}
	if w.Type == "live" {
		if w.Tavily == nil {
			w.Tavily = &TavilyConfig{}
		}
		if w.Tavily.BaseURL == "" {
			w.Tavily.BaseURL = "https://api.tavily.com"
		}
		if w.Tavily.APIKeyEnv == "" {
			w.Tavily.APIKeyEnv = "TAVILY_API_KEY"
		}
		if w.Tavily.TimeoutSecs == 0 {
			w.Tavily.TimeoutSecs = 10
		}
	}
	g := &cfg.Generation
	if g.Type == "" {
		g.Type = "openrouter"
	}
	if g.Type == "openrouter" {
		if g.OpenRouter == nil {
			g.OpenRouter = &OpenRouterConfig{}
		}
		or := g.OpenRouter
		if or.BaseURL == "" {
			or.BaseURL = "https://openrouter.ai/api/v1"
		}
		if or.APIKeyEnv == "" {
			or.APIKeyEnv = "OPENROUTER_API_KEY"
		}
		if or.Model == "" {
			or.Model = "deepseek/deepseek-chat"
		}
		if or.Temperature == 0 {
			or.Temperature = 0.2
		}
		if or.MaxTokens == 0 {
			or.MaxTokens = 4000
		}
		if or.TimeoutSecs == 0 {
			or.TimeoutSecs = 60
		}
		if or.AppURL == "" {
			or.AppURL = "http://localhost:7860"
		}
	}
	if g.Type == "claude" {
		if g.Claude == nil {
			g.Claude = &ClaudeConfig{}
		}
		cl := g.Claude
		if cl.APIKeyEnv == "" {
			cl.APIKeyEnv = "ANTHROPIC_API_KEY"
		}
		if cl.Model == "" {
			cl.Model = "claude-sonnet-4-20250514"
		}
		if cl.Temperature == 0 {
			cl.Temperature = 0.2
		}
		if cl.MaxTokens == 0 {
			cl.MaxTokens = 4000
		}
		if cl.TimeoutSecs == 0 {
			cl.TimeoutSecs = 60
		}
	}
}
