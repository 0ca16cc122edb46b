// Package docsearch ties the archive reader to a query engine and caches the
// built index for the life of the process.
package docsearch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcpcontext/docsearch/internal/archive"
	"github.com/mcpcontext/docsearch/internal/bleveindex"
	"github.com/mcpcontext/docsearch/internal/indexing"
	"github.com/mcpcontext/docsearch/internal/textindex"
)

// Engine names accepted by BuildOptions.Engine.
const (
	EngineTFIDF = "tfidf"
	EngineBleve = "bleve"
)

// Engine is a built, read-only index that answers queries.
// This allows the provider to be tested with mocks.
type Engine interface {
	// Search returns ranked hits for q
	Search(ctx context.Context, q indexing.Query) ([]indexing.Hit, error)

	// DocCount returns the number of indexed documents
	DocCount() (uint64, error)

	// Close releases the engine
	Close() error
}

// BuildOptions selects the engine implementation and the field schema.
type BuildOptions struct {
	Engine string
	Schema indexing.Schema
	Logger *slog.Logger
}

func (o BuildOptions) withDefaults() BuildOptions {
	if o.Engine == "" {
		o.Engine = EngineTFIDF
	}
	if len(o.Schema.TextFields) == 0 && len(o.Schema.KeywordFields) == 0 {
		o.Schema = indexing.DefaultSchema()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// BuildIndex reads every document from paths and indexes them with the
// engine named in opts.
func BuildIndex(ctx context.Context, reader *archive.Reader, paths []string, opts BuildOptions) (Engine, error) {
	opts = opts.withDefaults()
	logger := opts.Logger.With("component", "docsearch", "engine", opts.Engine)

	readStart := time.Now()
	docs, err := reader.ReadDocuments(ctx, paths)
	if err != nil {
		return nil, fmt.Errorf("failed to read archives: %w", err)
	}
	logger.Info("documents extracted",
		"archives", len(paths),
		"documents", len(docs),
		"duration", time.Since(readStart).Round(time.Millisecond))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	indexStart := time.Now()
	var engine Engine
	switch opts.Engine {
	case EngineTFIDF:
		engine, err = textindex.Build(docs, opts.Schema)
	case EngineBleve:
		engine, err = bleveindex.Build(docs, opts.Schema)
	default:
		return nil, fmt.Errorf("%w: unknown engine %q", indexing.ErrConfiguration, opts.Engine)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build index: %w", err)
	}

	count, err := engine.DocCount()
	if err != nil {
		engine.Close()
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}
	logger.Info("index built",
		"documents", count,
		"duration", time.Since(indexStart).Round(time.Millisecond))
	return engine, nil
}

// DirLoader returns a Loader that discovers the archives in dir on every call
// and builds a fresh engine from them.
func DirLoader(reader *archive.Reader, dir string, opts BuildOptions) Loader {
	return func(ctx context.Context) (Engine, error) {
		paths, err := reader.Discover(dir)
		if err != nil {
			return nil, err
		}
		return BuildIndex(ctx, reader, paths, opts)
	}
}
