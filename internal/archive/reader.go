// Package archive extracts markdown documents from zip archives.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/klauspost/compress/zip"
	"github.com/mcpcontext/docsearch/internal/indexing"
)

// Reader walks archives and yields the documents they contain.
type Reader struct {
	src    Source
	logger *slog.Logger
	passes atomic.Int64
}

// NewReader creates a Reader over src. A nil logger falls back to slog.Default.
func NewReader(src Source, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{
		src:    src,
		logger: logger.With("component", "archive"),
	}
}

// ReadCount returns how many read passes have started.
func (r *Reader) ReadCount() int64 {
	return r.passes.Load()
}

// Discover lists the archives in dir in lexicographic order.
func (r *Reader) Discover(dir string) ([]string, error) {
	entries, err := r.src.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot list archive directory %s: %v", indexing.ErrConfiguration, dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(entry.Name()), indexing.ArchiveExtension) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no zip files found in %s", indexing.ErrConfiguration, dir)
	}

	sort.Strings(paths)
	return paths, nil
}

// ReadDocuments extracts every markdown entry from the given archives.
// Archives are processed in lexicographic order regardless of input order.
func (r *Reader) ReadDocuments(ctx context.Context, paths []string) ([]indexing.Document, error) {
	r.passes.Add(1)

	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	var docs []indexing.Document
	for _, path := range sorted {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		archiveDocs, err := r.readArchive(path)
		if err != nil {
			return nil, err
		}
		r.logger.Debug("archive read", "path", path, "documents", len(archiveDocs))
		docs = append(docs, archiveDocs...)
	}

	return docs, nil
}

func (r *Reader) readArchive(path string) ([]indexing.Document, error) {
	data, err := r.src.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive %s: %w", path, err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}

	var docs []indexing.Document
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			continue
		}
		if !indexing.HasDocumentExtension(f.Name) {
			continue
		}

		raw, err := readEntry(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s in %s: %w", f.Name, path, err)
		}

		content := decodeLossy(raw)
		if len(content) != len(raw) {
			r.logger.Debug("dropped invalid UTF-8 bytes", "archive", path, "entry", f.Name)
		}

		docs = append(docs, indexing.NewDocument(NormalizeIdentifier(f.Name), content))
	}

	return docs, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// NormalizeIdentifier strips the archive's top-level wrapper directory.
// Example: "repo-main/docs/readme.md" -> "docs/readme.md"; "readme.md" is unchanged.
func NormalizeIdentifier(name string) string {
	parts := strings.Split(name, "/")
	if len(parts) > 1 {
		return strings.Join(parts[1:], "/")
	}
	return parts[0]
}

// decodeLossy interprets b as UTF-8, dropping invalid byte sequences.
func decodeLossy(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), "")
}
