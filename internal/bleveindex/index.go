// Package bleveindex serves the same queries as textindex from an in-memory
// bleve index, using bleve's own TF-IDF scorer.
package bleveindex

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	regexptokenizer "github.com/blevesearch/bleve/v2/analysis/tokenizer/regexp"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/mcpcontext/docsearch/internal/indexing"
)

const (
	// alnumAnalyzer splits on anything that is not a letter or digit and
	// lowercases, matching indexing.Tokenize.
	alnumAnalyzer  = "alnum"
	alnumTokenizer = "alnum_runs"

	// ordinalField records insertion order for tie-breaking.
	ordinalField = "seq"

	batchSize = 100
)

// Index wraps a mem-only bleve index plus the documents it was built from.
type Index struct {
	index  bleve.Index
	schema indexing.Schema
	docs   map[string]indexing.Document
}

// Build indexes docs in a fresh in-memory bleve index.
func Build(docs []indexing.Document, schema indexing.Schema) (*Index, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no documents to index", indexing.ErrConfiguration)
	}
	if len(schema.TextFields) == 0 {
		return nil, fmt.Errorf("%w: schema declares no text fields", indexing.ErrConfiguration)
	}

	im, err := newMapping(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to create index mapping: %w", err)
	}

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	// Collapse duplicates first: the survivor keeps the first slot.
	slot := make(map[string]int, len(docs))
	unique := make([]indexing.Document, 0, len(docs))
	for _, doc := range docs {
		if i, ok := slot[doc.ID]; ok {
			unique[i] = doc
			continue
		}
		slot[doc.ID] = len(unique)
		unique = append(unique, doc)
	}

	byID := make(map[string]indexing.Document, len(unique))
	batch := index.NewBatch()
	for i, doc := range unique {
		byID[doc.ID] = doc
		if err := batch.Index(doc.ID, toBleveDoc(doc, schema, i)); err != nil {
			index.Close()
			return nil, fmt.Errorf("failed to add document %s to batch: %w", doc.ID, err)
		}

		if batch.Size() >= batchSize {
			if err := index.Batch(batch); err != nil {
				index.Close()
				return nil, fmt.Errorf("failed to index batch: %w", err)
			}
			batch = index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := index.Batch(batch); err != nil {
			index.Close()
			return nil, fmt.Errorf("failed to index final batch: %w", err)
		}
	}

	return &Index{index: index, schema: schema, docs: byID}, nil
}

func newMapping(schema indexing.Schema) (*mapping.IndexMappingImpl, error) {
	im := bleve.NewIndexMapping()

	if err := im.AddCustomTokenizer(alnumTokenizer, map[string]interface{}{
		"type":   regexptokenizer.Name,
		"regexp": `[\p{L}\p{N}]+`,
	}); err != nil {
		return nil, err
	}
	if err := im.AddCustomAnalyzer(alnumAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     alnumTokenizer,
		"token_filters": []interface{}{lowercase.Name},
	}); err != nil {
		return nil, err
	}
	im.DefaultAnalyzer = alnumAnalyzer

	doc := bleve.NewDocumentStaticMapping()
	for _, field := range schema.TextFields {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = alnumAnalyzer
		fm.Store = false
		fm.IncludeInAll = false
		doc.AddFieldMappingsAt(field, fm)
	}
	ordinal := bleve.NewNumericFieldMapping()
	ordinal.Store = false
	ordinal.IncludeInAll = false
	doc.AddFieldMappingsAt(ordinalField, ordinal)

	im.DefaultMapping = doc
	return im, nil
}

func toBleveDoc(doc indexing.Document, schema indexing.Schema, ordinal int) map[string]interface{} {
	out := make(map[string]interface{}, len(schema.TextFields)+1)
	for _, field := range schema.TextFields {
		out[field] = doc.Field(field)
	}
	out[ordinalField] = float64(ordinal)
	return out
}

// Search runs q as a boosted disjunction of per-field match queries and keeps
// the hits whose keyword fields equal every filter.
func (idx *Index) Search(ctx context.Context, q indexing.Query) ([]indexing.Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for field := range q.Filters {
		if !idx.schema.IsKeyword(field) {
			return nil, fmt.Errorf("%w: %q", indexing.ErrUnknownField, field)
		}
	}
	if len(indexing.Tokenize(q.Text)) == 0 {
		return []indexing.Hit{}, nil
	}

	var should []query.Query
	for _, field := range idx.schema.TextFields {
		weight := idx.schema.Weight(field)
		if weight <= 0 {
			continue
		}
		mq := bleve.NewMatchQuery(q.Text)
		mq.SetField(field)
		mq.Analyzer = alnumAnalyzer
		mq.SetBoost(weight)
		should = append(should, mq)
	}
	if len(should) == 0 {
		return []indexing.Hit{}, nil
	}

	// Filters are checked on the hits so they never touch the score; with
	// filters every match is fetched before truncating.
	limit := q.EffectiveLimit()
	size := limit
	if len(q.Filters) > 0 {
		size = len(idx.docs)
	}
	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(should...), size, 0, false)
	req.SortBy([]string{"-_score", ordinalField})

	res, err := idx.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]indexing.Hit, 0, min(len(res.Hits), limit))
	for _, h := range res.Hits {
		doc, ok := idx.docs[h.ID]
		if !ok || h.Score <= 0 || !matchesFilters(doc, q.Filters) {
			continue
		}
		hits = append(hits, indexing.Hit{Document: doc, Score: h.Score})
		if len(hits) == limit {
			break
		}
	}
	return hits, nil
}

func matchesFilters(doc indexing.Document, filters map[string]string) bool {
	for field, value := range filters {
		if doc.Field(field) != value {
			return false
		}
	}
	return true
}

// DocCount returns the number of indexed documents.
func (idx *Index) DocCount() (uint64, error) {
	return idx.index.DocCount()
}

// Close releases the bleve index.
func (idx *Index) Close() error {
	return idx.index.Close()
}
