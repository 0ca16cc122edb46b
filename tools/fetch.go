package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// DefaultReaderBaseURL renders any page as markdown when prefixed to its URL.
	DefaultReaderBaseURL = "https://r.jina.ai/"
	DefaultFetchTimeout  = 15 * time.Second

	maxPageBytes = 10 << 20
)

// ErrInvalidURL is returned for URLs without an http or https scheme.
var ErrInvalidURL = errors.New("URL must start with http:// or https://")

// FetchPageMarkdownInput defines input for fetch_page_markdown tool
type FetchPageMarkdownInput struct {
	URL string `json:"url" jsonschema:"Absolute page URL starting with http:// or https://"`
}

// FetchPageMarkdownOutput defines output for fetch_page_markdown tool
type FetchPageMarkdownOutput struct {
	URL      string `json:"url"`
	Markdown string `json:"markdown"`
}

// PageFetcher downloads pages as markdown through a reader service.
type PageFetcher struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

// NewPageFetcher creates a fetcher. Empty or zero arguments take the defaults.
func NewPageFetcher(baseURL string, timeout time.Duration, logger *slog.Logger) *PageFetcher {
	if baseURL == "" {
		baseURL = DefaultReaderBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PageFetcher{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		logger:  logger.With("component", "fetch"),
	}
}

// RegisterFetchTools registers fetch_page_markdown.
func RegisterFetchTools(server *mcp.Server, f *PageFetcher) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "fetch_page_markdown",
			Description: "Fetch a web page's content as Markdown via a reader service",
		},
		f.FetchPageMarkdown,
	)
}

// Fetch returns the markdown rendering of pageURL.
func (f *PageFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	cleaned := strings.TrimSpace(pageURL)
	if !strings.HasPrefix(cleaned, "http://") && !strings.HasPrefix(cleaned, "https://") {
		return "", ErrInvalidURL
	}

	target := f.baseURL + cleaned
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", cleaned, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch %s failed with status: %d", cleaned, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	f.logger.Debug("page fetched",
		"url", cleaned,
		"bytes", len(body),
		"duration", time.Since(start).Round(time.Millisecond))
	return string(body), nil
}

// FetchPageMarkdown fetches a page through the reader service
func (f *PageFetcher) FetchPageMarkdown(ctx context.Context, req *mcp.CallToolRequest, input FetchPageMarkdownInput) (*mcp.CallToolResult, FetchPageMarkdownOutput, error) {
	markdown, err := f.Fetch(ctx, input.URL)
	if err != nil {
		return nil, FetchPageMarkdownOutput{}, err
	}
	return nil, FetchPageMarkdownOutput{
		URL:      strings.TrimSpace(input.URL),
		Markdown: markdown,
	}, nil
}
