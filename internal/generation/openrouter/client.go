package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/phuslu/log"

	"ask/internal/domain"
	"ask/internal/generation"
)

// Client is a chat-completions client for OpenRouter (or any
// OpenAI-compatible endpoint pointed at via base_url).
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	appURL      string
	temperature float64
	maxTokens   int
	client      *http.Client
	logger      *log.Logger
}

// Config configures the OpenRouter client.
type Config struct {
	BaseURL     string
	APIKeyEnv   string
	Model       string
	AppURL      string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// NewClient creates an OpenRouter client. The credential is resolved
// from the configured environment variable once, at construction.
func NewClient(cfg Config, logger *log.Logger) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("generation credential %s not set: %w", cfg.APIKeyEnv, domain.ErrMissingCredential)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "deepseek/deepseek-chat"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.2
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4000
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:     cfg.BaseURL,
		apiKey:      key,
		model:       cfg.Model,
		appURL:      cfg.AppURL,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
	}, nil
}

// Name identifies this backend in logs.
func (c *Client) Name() string { return "openrouter" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generate performs a single chat-completion call. No retries: callers
// decide whether to re-invoke.
func (c *Client) Generate(ctx context.Context, question, contextBlock string) (string, error) {
	system, user := generation.Messages(question, contextBlock)
	body := map[string]any{
		"model": c.model,
		"messages": []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		"temperature": c.temperature,
		"max_tokens":  c.maxTokens,
		"stream":      false,
	}
	data, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.appURL != "" {
		req.Header.Set("HTTP-Referer", c.appURL)
	}
	req.Header.Set("X-Title", "ask research assistant")

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation request not sent: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", fmt.Errorf("%w: %s (check the configured API key)", domain.ErrAuthFailed, apiErrorMessage(resp))
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("generation backend error: %s - %s", resp.Status, apiErrorMessage(resp))
	}

	var out struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("generation response decode failed: %w", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: backend returned an empty choice list", domain.ErrNoCompletion)
	}

	answer := out.Choices[0].Message.Content
	c.logger.Debug().
		Str("model", c.model).
		Int("answer_length", len(answer)).
		Dur("duration", time.Since(started)).
		Msg("completion received")
	return answer, nil
}

// apiErrorMessage pulls the error message out of an OpenRouter error
// body, falling back to the HTTP status.
func apiErrorMessage(resp *http.Response) string {
	var out struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err == nil && out.Error.Message != "" {
		return out.Error.Message
	}
	return resp.Status
}
