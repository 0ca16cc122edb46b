package indexing_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/mcpcontext/docsearch/internal/indexing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "lowercases and splits on punctuation",
			input:    "Hello, World!",
			expected: []string{"hello", "world"},
		},
		{
			name:     "keeps digits and unicode letters",
			input:    "Hello, wörld-42!",
			expected: []string{"hello", "wörld", "42"},
		},
		{
			name:     "paths split into segments",
			input:    "docs/getting-started.md",
			expected: []string{"docs", "getting", "started", "md"},
		},
		{
			name:     "underscores separate tokens",
			input:    "snake_case_name",
			expected: []string{"snake", "case", "name"},
		},
		{
			name:     "empty",
			input:    "",
			expected: []string{},
		},
		{
			name:     "only separators",
			input:    "  -- !! ",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := indexing.Tokenize(tt.input)
			if len(result) == 0 && len(tt.expected) == 0 {
				return
			}
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestTermFrequencies(t *testing.T) {
	tf, order := indexing.TermFrequencies([]string{"beta", "alpha", "beta", "gamma", "beta"})

	if !reflect.DeepEqual(order, []string{"beta", "alpha", "gamma"}) {
		t.Errorf("Unexpected term order: %v", order)
	}
	if tf["beta"] != 3 || tf["alpha"] != 1 || tf["gamma"] != 1 {
		t.Errorf("Unexpected frequencies: %v", tf)
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "newlines become spaces",
			input:    "# Title\n\nBody",
			expected: "# Title  Body",
		},
		{
			name:     "windows line endings",
			input:    "a\r\nb",
			expected: "a b",
		},
		{
			name:     "short content unchanged",
			input:    "short",
			expected: "short",
		},
		{
			name:     "truncated to preview length",
			input:    strings.Repeat("x", 250),
			expected: strings.Repeat("x", indexing.PreviewChars),
		},
		{
			name:     "truncation counts characters not bytes",
			input:    strings.Repeat("é", 201),
			expected: strings.Repeat("é", 200),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := indexing.Preview(tt.input); result != tt.expected {
				t.Errorf("Preview() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestHasDocumentExtension(t *testing.T) {
	tests := map[string]bool{
		"readme.md":      true,
		"docs/Guide.MD":  true,
		"page.mdx":       true,
		"page.MDX":       true,
		"notes.markdown": false,
		"main.go":        false,
		"md":             false,
		"archive.md.zip": false,
		"dir/":           false,
	}

	for name, expected := range tests {
		if got := indexing.HasDocumentExtension(name); got != expected {
			t.Errorf("HasDocumentExtension(%q) = %v, want %v", name, got, expected)
		}
	}
}

func TestNewDocument(t *testing.T) {
	doc := indexing.NewDocument("docs/a.md", "body")

	if doc.Field(indexing.FieldFilename) != "docs/a.md" {
		t.Errorf("filename field should mirror the identifier, got %q", doc.Field(indexing.FieldFilename))
	}
	if doc.Content() != "body" {
		t.Errorf("Content() = %q", doc.Content())
	}
	if doc.Field("missing") != "" {
		t.Error("Missing fields should be empty")
	}
}

func TestSchema(t *testing.T) {
	schema := indexing.DefaultSchema()

	if !schema.IsKeyword(indexing.FieldFilename) {
		t.Error("filename should be a keyword field")
	}
	if schema.IsKeyword(indexing.FieldContent) {
		t.Error("content should not be a keyword field")
	}
	if schema.Weight(indexing.FieldContent) != 1 {
		t.Errorf("Default weight should be 1, got %v", schema.Weight(indexing.FieldContent))
	}

	schema.Weights = map[string]float64{indexing.FieldFilename: 2.5}
	if schema.Weight(indexing.FieldFilename) != 2.5 {
		t.Errorf("Weight() = %v, want 2.5", schema.Weight(indexing.FieldFilename))
	}
}

func TestQueryEffectiveLimit(t *testing.T) {
	tests := []struct {
		limit    int
		expected int
	}{
		{0, indexing.DefaultLimit},
		{-3, indexing.DefaultLimit},
		{1, 1},
		{50, 50},
	}

	for _, tt := range tests {
		if got := (indexing.Query{Limit: tt.limit}).EffectiveLimit(); got != tt.expected {
			t.Errorf("EffectiveLimit(%d) = %d, want %d", tt.limit, got, tt.expected)
		}
	}
}
