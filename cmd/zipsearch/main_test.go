package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mcpcontext/docsearch/internal/archive/archivetest"
	"github.com/mcpcontext/docsearch/internal/indexing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArchives(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs.zip"), archivetest.Zip(
		archivetest.File("docs-main/a.md", "alpha beta beta"),
		archivetest.File("docs-main/b.md", "beta gamma\nsecond line"),
		archivetest.File("docs-main/main.go", "package beta"),
	), 0644))
	return dir
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := rootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestZipsearch_PrintsRankedResults(t *testing.T) {
	dir := writeArchives(t)

	for _, engine := range []string{"tfidf", "bleve"} {
		t.Run(engine, func(t *testing.T) {
			out, _, err := execute(t, "beta", "--zip-dir", dir, "--engine", engine)
			require.NoError(t, err)

			lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
			require.Len(t, lines, 4)
			assert.Regexp(t, `^1\. a\.md  \(score: \d+\.\d{4}\)$`, lines[0])
			assert.Equal(t, "   alpha beta beta", lines[1])
			assert.Regexp(t, `^2\. b\.md  \(score: \d+\.\d{4}\)$`, lines[2])
			assert.Equal(t, "   beta gamma second line", lines[3])
		})
	}
}

func TestZipsearch_Limit(t *testing.T) {
	out, _, err := execute(t, "beta", "--zip-dir", writeArchives(t), "--k", "1")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "\n"))
	assert.True(t, strings.HasPrefix(out, "1. a.md"))
}

func TestZipsearch_NoResults(t *testing.T) {
	out, _, err := execute(t, "zzz", "--zip-dir", writeArchives(t))
	require.NoError(t, err)
	assert.Equal(t, "No results found.\n", out)
}

func TestZipsearch_NoArchives(t *testing.T) {
	dir := t.TempDir()
	out, _, err := execute(t, "beta", "--zip-dir", dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, indexing.ErrConfiguration))
	assert.Contains(t, err.Error(), "no zip files found in "+dir)
	assert.Empty(t, out)
}

func TestZipsearch_RequiresQuery(t *testing.T) {
	_, _, err := execute(t)
	assert.Error(t, err)
}

func TestZipsearch_FieldsFile(t *testing.T) {
	dir := writeArchives(t)
	fields := filepath.Join(t.TempDir(), "fields.yaml")
	require.NoError(t, os.WriteFile(fields, []byte("text_fields: [content]\n"), 0644))

	out, _, err := execute(t, "md", "--zip-dir", dir, "--fields", fields)
	require.NoError(t, err)
	assert.Equal(t, "No results found.\n", out)

	out, _, err = execute(t, "md", "--zip-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "1. a.md")
}
