package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"ask/internal/domain"
)

// TavilyClient is a minimal REST client to the Tavily search API.
type TavilyClient struct {
	baseURL    string
	apiKey     string
	maxResults int
	client     *http.Client
}

// TavilyConfig configures the Tavily client.
type TavilyConfig struct {
	BaseURL    string
	APIKeyEnv  string
	MaxResults int
	Timeout    time.Duration
}

// NewTavilyClient creates a Tavily client. The API key is read from the
// configured environment variable at construction time.
func NewTavilyClient(cfg TavilyConfig) (*TavilyClient, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("web search credential %s not set: %w", cfg.APIKeyEnv, domain.ErrMissingCredential)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.tavily.com"
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 5
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &TavilyClient{
		baseURL:    cfg.BaseURL,
		apiKey:     key,
		maxResults: cfg.MaxResults,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

// Search performs a single Tavily search request and maps the results
// to snippets in the API's relevance order.
func (c *TavilyClient) Search(ctx context.Context, question string) ([]domain.Snippet, error) {
	body := map[string]any{
		"api_key":        c.apiKey,
		"query":          question,
		"search_depth":   "advanced",
		"max_results":    c.maxResults,
		"include_answer": false,
	}
	data, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("tavily search failed: %s", resp.Status)
	}

	var out struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("tavily response decode failed: %w", err)
	}

	snippets := make([]domain.Snippet, 0, len(out.Results))
	for _, r := range out.Results {
		snippets = append(snippets, domain.Snippet{
			Title:          r.Title,
			SourceLocation: r.URL,
			Text:           r.Content,
			OriginDomain:   extractDomain(r.URL),
		})
	}
	return snippets, nil
}
