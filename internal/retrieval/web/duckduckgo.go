package web

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ask/internal/domain"
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// DuckDuckGo scrapes the HTML results page as a keyless fallback when
// the primary search provider is unavailable or unconfigured.
type DuckDuckGo struct {
	baseURL    string
	maxResults int
	client     *http.Client
}

// DuckDuckGoConfig configures the fallback scraper. BaseURL exists for
// tests; it defaults to the public HTML endpoint.
type DuckDuckGoConfig struct {
	BaseURL    string
	MaxResults int
	Timeout    time.Duration
}

func NewDuckDuckGo(cfg DuckDuckGoConfig) *DuckDuckGo {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://html.duckduckgo.com/html"
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 5
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &DuckDuckGo{
		baseURL:    cfg.BaseURL,
		maxResults: cfg.MaxResults,
		client:     &http.Client{Timeout: timeout},
	}
}

// Search fetches and parses the results page, keeping page order.
func (d *DuckDuckGo) Search(ctx context.Context, question string) ([]domain.Snippet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/?q="+url.QueryEscape(question), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("duckduckgo search failed: %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo response parse failed: %w", err)
	}

	var snippets []domain.Snippet
	doc.Find("div.result__body").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		titleLink := sel.Find("a.result__a").First()
		title := strings.TrimSpace(titleLink.Text())
		if title == "" {
			return true
		}
		href, _ := titleLink.Attr("href")
		resultURL := resolveResultURL(href)
		snippets = append(snippets, domain.Snippet{
			Title:          title,
			SourceLocation: resultURL,
			Text:           strings.TrimSpace(sel.Find("a.result__snippet").Text()),
			OriginDomain:   extractDomain(resultURL),
		})
		return len(snippets) < d.maxResults
	})
	return snippets, nil
}

// resolveResultURL unwraps DuckDuckGo's redirect links (the uddg query
// parameter) and normalizes scheme-relative hrefs.
func resolveResultURL(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

// extractDomain returns the hostname part of a URL for display grouping.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err == nil && u.Host != "" {
		return u.Host
	}
	// locator without a scheme: take everything before the first slash
	if i := strings.IndexByte(rawURL, '/'); i > 0 {
		return rawURL[:i]
	}
	return rawURL
}
