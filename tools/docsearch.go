package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mcpcontext/docsearch/internal/docsearch"
	"github.com/mcpcontext/docsearch/internal/indexing"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// maxResults caps max_results regardless of what the client asks for.
const maxResults = 20

// SearchResult represents a search result
type SearchResult struct {
	Filename string  `json:"filename"`
	Score    float64 `json:"score"`
	Preview  string  `json:"preview"`
	Content  string  `json:"content"`
}

// SearchDocumentationInput defines input for search_documentation tool
type SearchDocumentationInput struct {
	Query      string `json:"query" jsonschema:"Free-text search query"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Maximum number of results (optional, defaults to 5, at most 20)"`
	Filename   string `json:"filename,omitempty" jsonschema:"Only return the document with this exact path (optional)"`
}

// SearchDocumentationOutput defines output for search_documentation tool
type SearchDocumentationOutput struct {
	Results   []SearchResult `json:"results"`
	Query     string         `json:"query"`
	TotalHits int            `json:"total_hits"`
}

// RefreshDocumentationIndexInput defines input for refresh_documentation_index tool
type RefreshDocumentationIndexInput struct{}

// RefreshDocumentationIndexOutput defines output for refresh_documentation_index tool
type RefreshDocumentationIndexOutput struct {
	Updated          bool      `json:"updated"`
	LastUpdate       time.Time `json:"last_update"`
	DocumentsIndexed uint64    `json:"documents_indexed"`
	Message          string    `json:"message"`
}

// Searcher is the part of docsearch.Provider the tools depend on.
type Searcher interface {
	Search(ctx context.Context, q indexing.Query) ([]indexing.Hit, error)
	Rebuild(ctx context.Context) (docsearch.Status, error)
}

// DocSearch serves the documentation tools from a shared index provider.
type DocSearch struct {
	searcher     Searcher
	defaultLimit int
	logger       *slog.Logger
}

// NewDocSearch creates the documentation tools. defaultLimit applies when the
// client does not send max_results.
func NewDocSearch(searcher Searcher, defaultLimit int, logger *slog.Logger) *DocSearch {
	if defaultLimit <= 0 {
		defaultLimit = indexing.DefaultLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DocSearch{
		searcher:     searcher,
		defaultLimit: defaultLimit,
		logger:       logger.With("component", "tools"),
	}
}

// RegisterDocSearchTools registers search_documentation and
// refresh_documentation_index. The index is built on the first search.
func RegisterDocSearchTools(server *mcp.Server, d *DocSearch) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "search_documentation",
			Description: "Search the markdown documentation extracted from the configured zip archives. Returns the most relevant documents with a preview and full content.",
		},
		d.SearchDocumentation,
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "refresh_documentation_index",
			Description: "Re-read the zip archives and rebuild the documentation index",
		},
		d.RefreshDocumentationIndex,
	)
}

// SearchDocumentation searches the indexed documentation
func (d *DocSearch) SearchDocumentation(ctx context.Context, req *mcp.CallToolRequest, input SearchDocumentationInput) (*mcp.CallToolResult, SearchDocumentationOutput, error) {
	limit := input.MaxResults
	if limit <= 0 {
		limit = d.defaultLimit
	}
	if limit > maxResults {
		limit = maxResults
	}

	q := indexing.Query{Text: input.Query, Limit: limit}
	if name := strings.TrimSpace(input.Filename); name != "" {
		q.Filters = map[string]string{indexing.FieldFilename: name}
	}

	start := time.Now()
	hits, err := d.searcher.Search(ctx, q)
	if err != nil {
		if errors.Is(err, indexing.ErrUnknownField) {
			return nil, SearchDocumentationOutput{}, fmt.Errorf("filename filtering is disabled by the field schema: %w", err)
		}
		return nil, SearchDocumentationOutput{}, fmt.Errorf("search failed: %w", err)
	}
	d.logger.Debug("search completed",
		"query", input.Query,
		"hits", len(hits),
		"duration", time.Since(start).Round(time.Microsecond))

	results := make([]SearchResult, 0, len(hits))
	for _, hit := range hits {
		content := hit.Document.Content()
		results = append(results, SearchResult{
			Filename: hit.Document.ID,
			Score:    hit.Score,
			Preview:  indexing.Preview(content),
			Content:  content,
		})
	}

	return nil, SearchDocumentationOutput{
		Results:   results,
		Query:     input.Query,
		TotalHits: len(results),
	}, nil
}

// RefreshDocumentationIndex rebuilds the index from the archives on disk
func (d *DocSearch) RefreshDocumentationIndex(ctx context.Context, req *mcp.CallToolRequest, input RefreshDocumentationIndexInput) (*mcp.CallToolResult, RefreshDocumentationIndexOutput, error) {
	start := time.Now()
	status, err := d.searcher.Rebuild(ctx)
	if err != nil {
		return nil, RefreshDocumentationIndexOutput{}, fmt.Errorf("refresh failed: %w", err)
	}

	elapsed := time.Since(start).Round(time.Millisecond)
	return nil, RefreshDocumentationIndexOutput{
		Updated:          true,
		LastUpdate:       status.BuiltAt,
		DocumentsIndexed: status.Documents,
		Message:          fmt.Sprintf("Index rebuilt with %d documents in %v", status.Documents, elapsed),
	}, nil
}
