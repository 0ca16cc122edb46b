package textindex

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/mcpcontext/docsearch/internal/indexing"
)

// Search filters, scores, and ranks documents against q.
// Documents that share no term with the query are left out. Equal scores keep
// insertion order.
func (idx *Index) Search(ctx context.Context, q indexing.Query) ([]indexing.Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates, err := idx.filter(q.Filters)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []indexing.Hit{}, nil
	}

	qtf, qterms := indexing.TermFrequencies(indexing.Tokenize(q.Text))
	if len(qterms) == 0 {
		return []indexing.Hit{}, nil
	}

	scores := make([]float64, len(candidates))
	for _, field := range idx.schema.TextFields {
		fi := idx.fields[field]
		qvec, terms := fi.queryVector(qtf, qterms)
		if len(terms) == 0 {
			continue
		}
		for i, doc := range candidates {
			vec := fi.vectors[doc]
			var dot float64
			for _, term := range terms {
				dot += vec[term] * qvec[term]
			}
			scores[i] += dot * fi.weight
		}
	}

	hits := make([]indexing.Hit, 0, len(candidates))
	for i, doc := range candidates {
		if scores[i] <= 0 {
			continue
		}
		hits = append(hits, indexing.Hit{Document: idx.docs[doc], Score: scores[i]})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if limit := q.EffectiveLimit(); len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// filter returns the positions of documents matching every filter exactly.
func (idx *Index) filter(filters map[string]string) ([]int, error) {
	for field := range filters {
		if _, ok := idx.keywords[field]; !ok {
			return nil, fmt.Errorf("%w: %q", indexing.ErrUnknownField, field)
		}
	}

	candidates := make([]int, 0, len(idx.docs))
	for i := range idx.docs {
		match := true
		for field, want := range filters {
			if idx.keywords[field][i] != want {
				match = false
				break
			}
		}
		if match {
			candidates = append(candidates, i)
		}
	}
	return candidates, nil
}

// queryVector weights the query terms known to the field and normalizes them.
// Terms outside the field vocabulary are ignored.
func (fi *fieldIndex) queryVector(qtf map[string]int, qterms []string) (map[string]float64, []string) {
	vec := make(map[string]float64, len(qterms))
	known := make([]string, 0, len(qterms))
	var sumSquares float64
	for _, term := range qterms {
		idf, ok := fi.idf[term]
		if !ok {
			continue
		}
		w := float64(qtf[term]) * idf
		vec[term] = w
		known = append(known, term)
		sumSquares += w * w
	}
	if sumSquares == 0 {
		return nil, nil
	}
	norm := math.Sqrt(sumSquares)
	for _, term := range known {
		vec[term] /= norm
	}
	return vec, known
}
