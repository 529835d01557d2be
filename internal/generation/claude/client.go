package claude

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/phuslu/log"

	"ask/internal/domain"
	"ask/internal/generation"
)

// Client generates answers through the Anthropic Messages API.
type Client struct {
	client      anthropic.Client
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	logger      *log.Logger
}

// Config configures the Anthropic client.
type Config struct {
	APIKeyEnv   string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// NewClient creates an Anthropic-backed generator. The credential is
// resolved from the configured environment variable once, at
// construction.
func NewClient(cfg Config, logger *log.Logger) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("generation credential %s not set: %w", cfg.APIKeyEnv, domain.ErrMissingCredential)
	}
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-20250514"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4000
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		client:      anthropic.NewClient(option.WithAPIKey(key)),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     timeout,
		logger:      logger,
	}, nil
}

// Name identifies this backend in logs.
func (c *Client) Name() string { return "claude" }

// Generate performs a single Messages API call. No retries.
func (c *Client) Generate(ctx context.Context, question, contextBlock string) (string, error) {
	system, user := generation.Messages(question, contextBlock)

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
		System: []anthropic.TextBlockParam{{Text: system}},
	}
	if c.temperature > 0 {
		params.Temperature = anthropic.Float(c.temperature)
	}

	started := time.Now()
	resp, err := c.client.Messages.New(timeoutCtx, params)
	if err != nil {
		var apierr *anthropic.Error
		if errors.As(err, &apierr) && (apierr.StatusCode == http.StatusUnauthorized || apierr.StatusCode == http.StatusForbidden) {
			return "", fmt.Errorf("%w: %v (check the configured API key)", domain.ErrAuthFailed, err)
		}
		return "", fmt.Errorf("generation backend error: %w", err)
	}

	var answer strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			answer.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(answer.String()) == "" {
		return "", fmt.Errorf("%w: backend returned no text blocks", domain.ErrNoCompletion)
	}

	c.logger.Debug().
		Str("model", c.model).
		Int("answer_length", answer.Len()).
		Dur("duration", time.Since(started)).
		Msg("completion received")
	return answer.String(), nil
}
