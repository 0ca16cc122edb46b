// Command indexer builds the documentation index from a directory of zip
// archives and reports what went into it, without serving queries.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mcpcontext/docsearch/internal/archive"
	"github.com/mcpcontext/docsearch/internal/config"
	"github.com/mcpcontext/docsearch/internal/indexing"
	"github.com/mcpcontext/docsearch/internal/log"
	"github.com/mcpcontext/docsearch/internal/textindex"
)

const defaultTopTerms = 10

func main() {
	if len(os.Args) < 2 || len(os.Args) > 3 {
		fmt.Fprintf(os.Stderr, "Usage: %s <zip-dir> [top-terms]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s ./archives 20\n", os.Args[0])
		os.Exit(1)
	}

	topTerms := defaultTopTerms
	if len(os.Args) == 3 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil || n < 0 {
			fmt.Fprintf(os.Stderr, "Invalid top-terms value: %s\n", os.Args[2])
			os.Exit(1)
		}
		topTerms = n
	}

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := log.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	if err := run(context.Background(), os.Args[1], cfg.FieldsFile, topTerms, logger, os.Stdout); err != nil {
		logger.Error("indexing failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, zipDir, fieldsFile string, topTerms int, logger *slog.Logger, out io.Writer) error {
	start := time.Now()

	schema, err := config.LoadSchema(fieldsFile)
	if err != nil {
		return err
	}

	// Step 1: Find archives
	reader := archive.NewReader(archive.NewDirSource(), logger)
	paths, err := reader.Discover(zipDir)
	if err != nil {
		return err
	}
	logger.Info("archives found", "count", len(paths), "dir", zipDir)

	// Step 2: Extract documents, one archive at a time for the per-archive report
	perArchive := make([]int, len(paths))
	var docs []indexing.Document
	for i, path := range paths {
		extracted, err := reader.ReadDocuments(ctx, []string{path})
		if err != nil {
			return err
		}
		perArchive[i] = len(extracted)
		docs = append(docs, extracted...)
	}

	// Step 3: Build the index
	buildStart := time.Now()
	idx, err := textindex.Build(docs, schema)
	if err != nil {
		return err
	}
	defer idx.Close()
	logger.Info("index built", "duration", time.Since(buildStart).Round(time.Millisecond))

	count, err := idx.DocCount()
	if err != nil {
		return err
	}
	totalTokens := 0
	for _, doc := range idx.Documents() {
		totalTokens += len(indexing.Tokenize(doc.Content()))
	}
	avgTokens := 0
	if count > 0 {
		avgTokens = totalTokens / int(count)
	}

	fmt.Fprintf(out, "Archives:\n")
	for i, path := range paths {
		fmt.Fprintf(out, "  %-32s %d documents\n", filepath.Base(path), perArchive[i])
	}
	fmt.Fprintf(out, "\nIndex details:\n")
	fmt.Fprintf(out, "  Documents:    %d (%d duplicates collapsed)\n", count, len(docs)-int(count))
	fmt.Fprintf(out, "  Avg size:     %d tokens\n", avgTokens)
	for _, field := range schema.TextFields {
		fmt.Fprintf(out, "  Vocabulary:   %d terms in %s (weight %g)\n", idx.VocabularySize(field), field, schema.Weight(field))
	}
	if len(schema.KeywordFields) > 0 {
		fmt.Fprintf(out, "  Filterable:   %v\n", schema.KeywordFields)
	}

	if topTerms > 0 && len(schema.TextFields) > 0 {
		field := schema.TextFields[0]
		fmt.Fprintf(out, "\nMost common terms in %s:\n", field)
		for _, tc := range idx.TopTerms(field, topTerms) {
			fmt.Fprintf(out, "  %-24s %d documents\n", tc.Term, tc.Documents)
		}
	}

	logger.Info("indexing complete", "duration", time.Since(start).Round(time.Millisecond))
	return nil
}
