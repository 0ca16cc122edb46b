// Package textindex is an in-memory lexical index scored with TF-IDF.
//
// Each text field keeps its own term statistics. Document vectors use raw term
// frequency times a smoothed inverse document frequency,
//
//	idf(t) = ln((1 + N) / (1 + df(t))) + 1
//
// and are L2-normalized, so a field's contribution to a score is the cosine
// between the document and the query in that field's vocabulary, multiplied by
// the field weight.
package textindex

import (
	"fmt"
	"math"
	"sort"

	"github.com/mcpcontext/docsearch/internal/indexing"
)

// fieldIndex holds the statistics of one text field.
type fieldIndex struct {
	weight float64
	df     map[string]int
	idf    map[string]float64
	// vectors[i] is the normalized TF-IDF vector of document i.
	vectors []map[string]float64
}

// Index is immutable after Build and safe for concurrent queries.
type Index struct {
	schema   indexing.Schema
	docs     []indexing.Document
	fields   map[string]*fieldIndex
	keywords map[string][]string
}

// Build indexes docs under schema. Documents sharing an identifier collapse
// into one: the last one wins and keeps the slot of the first.
func Build(docs []indexing.Document, schema indexing.Schema) (*Index, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no documents to index", indexing.ErrConfiguration)
	}
	if len(schema.TextFields) == 0 {
		return nil, fmt.Errorf("%w: schema declares no text fields", indexing.ErrConfiguration)
	}

	unique := dedupe(docs)

	idx := &Index{
		schema:   schema,
		docs:     unique,
		fields:   make(map[string]*fieldIndex, len(schema.TextFields)),
		keywords: make(map[string][]string, len(schema.KeywordFields)),
	}

	for _, field := range schema.TextFields {
		idx.fields[field] = buildField(unique, field, schema.Weight(field))
	}

	for _, field := range schema.KeywordFields {
		values := make([]string, len(unique))
		for i, doc := range unique {
			values[i] = doc.Field(field)
		}
		idx.keywords[field] = values
	}

	return idx, nil
}

func dedupe(docs []indexing.Document) []indexing.Document {
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
	return unique
}

func buildField(docs []indexing.Document, field string, weight float64) *fieldIndex {
	fi := &fieldIndex{
		weight:  weight,
		df:      make(map[string]int),
		idf:     make(map[string]float64),
		vectors: make([]map[string]float64, len(docs)),
	}

	type counted struct {
		tf    map[string]int
		order []string
	}
	counts := make([]counted, len(docs))
	for i, doc := range docs {
		tf, order := indexing.TermFrequencies(indexing.Tokenize(doc.Field(field)))
		counts[i] = counted{tf: tf, order: order}
		for _, term := range order {
			fi.df[term]++
		}
	}

	n := float64(len(docs))
	for term, df := range fi.df {
		fi.idf[term] = smoothIDF(n, float64(df))
	}

	for i, c := range counts {
		vec := make(map[string]float64, len(c.order))
		var sumSquares float64
		for _, term := range c.order {
			w := float64(c.tf[term]) * fi.idf[term]
			vec[term] = w
			sumSquares += w * w
		}
		if sumSquares > 0 {
			norm := math.Sqrt(sumSquares)
			for _, term := range c.order {
				vec[term] /= norm
			}
		}
		fi.vectors[i] = vec
	}

	return fi
}

func smoothIDF(n, df float64) float64 {
	return math.Log((1+n)/(1+df)) + 1
}

// DocCount returns the number of distinct documents.
func (idx *Index) DocCount() (uint64, error) {
	return uint64(len(idx.docs)), nil
}

// DocumentFrequency returns how many documents contain term in field.
func (idx *Index) DocumentFrequency(field, term string) int {
	fi, ok := idx.fields[field]
	if !ok {
		return 0
	}
	return fi.df[term]
}

// VocabularySize returns the number of distinct terms in field.
func (idx *Index) VocabularySize(field string) int {
	fi, ok := idx.fields[field]
	if !ok {
		return 0
	}
	return len(fi.df)
}

// TermCount pairs a term with the number of documents containing it.
type TermCount struct {
	Term      string
	Documents int
}

// TopTerms returns up to n terms of field ordered by document frequency,
// most common first, ties broken alphabetically.
func (idx *Index) TopTerms(field string, n int) []TermCount {
	fi, ok := idx.fields[field]
	if !ok || n <= 0 {
		return nil
	}

	terms := make([]TermCount, 0, len(fi.df))
	for term, df := range fi.df {
		terms = append(terms, TermCount{Term: term, Documents: df})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Documents != terms[j].Documents {
			return terms[i].Documents > terms[j].Documents
		}
		return terms[i].Term < terms[j].Term
	})

	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}

// Documents returns the indexed documents in insertion order.
func (idx *Index) Documents() []indexing.Document {
	return append([]indexing.Document(nil), idx.docs...)
}

// Close is a no-op; the index lives entirely in memory.
func (idx *Index) Close() error {
	return nil
}
