package indexing

import "errors"

// Field names produced by the archive reader.
const (
	FieldContent  = "content"
	FieldFilename = "filename"
)

var (
	// ErrConfiguration marks failures that retrying will not fix: no archives
	// at the configured location, no eligible documents, an invalid field schema.
	ErrConfiguration = errors.New("configuration error")

	// ErrUnknownField is returned when a query filters on a field that is not
	// declared as a keyword field.
	ErrUnknownField = errors.New("unknown keyword field")
)

// Document is one indexed unit of text plus its metadata fields.
type Document struct {
	ID     string            `json:"id"`
	Fields map[string]string `json:"fields"`
}

// NewDocument builds a document whose filename field mirrors its identifier.
func NewDocument(id, content string) Document {
	return Document{
		ID: id,
		Fields: map[string]string{
			FieldFilename: id,
			FieldContent:  content,
		},
	}
}

// Field returns the value of the named field, or "" when absent.
func (d Document) Field(name string) string {
	return d.Fields[name]
}

// Content returns the primary text field.
func (d Document) Content() string {
	return d.Fields[FieldContent]
}

// Schema declares which fields are scored and which are filterable.
type Schema struct {
	TextFields    []string           `json:"text_fields" yaml:"text_fields"`
	KeywordFields []string           `json:"keyword_fields" yaml:"keyword_fields"`
	Weights       map[string]float64 `json:"weights,omitempty" yaml:"weights,omitempty"`
}

// DefaultSchema scores content and filename, and filters on filename.
func DefaultSchema() Schema {
	return Schema{
		TextFields:    []string{FieldContent, FieldFilename},
		KeywordFields: []string{FieldFilename},
	}
}

// Weight returns the configured weight of a text field (1 when unset).
func (s Schema) Weight(field string) float64 {
	if w, ok := s.Weights[field]; ok {
		return w
	}
	return 1
}

// IsKeyword reports whether field is declared as a keyword field.
func (s Schema) IsKeyword(field string) bool {
	for _, f := range s.KeywordFields {
		if f == field {
			return true
		}
	}
	return false
}

// Query is a free-text search with an optional limit and keyword filters.
type Query struct {
	Text    string
	Limit   int
	Filters map[string]string
}

// EffectiveLimit returns the requested limit, or DefaultLimit when unset.
func (q Query) EffectiveLimit() int {
	if q.Limit <= 0 {
		return DefaultLimit
	}
	return q.Limit
}

// Hit is a ranked search result.
type Hit struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}
