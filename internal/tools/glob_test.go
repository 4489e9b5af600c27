package tools

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/btca/internal/search"
)

func TestGlobMatchesAndSorts(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.go", "package a")
	writeFile(t, dir, "sub/b.go", "package sub")
	writeFile(t, dir, "c.md", "# doc")
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(a, old, old))

	s := New(search.NewFallback())
	res, err := s.Glob(context.Background(), dir, GlobParams{Pattern: "**/*.go"})
	require.NoError(t, err)
	assert.Contains(t, res.Output, "a.go")
	assert.Contains(t, res.Output, "sub/b.go")
	assert.NotContains(t, res.Output, "c.md")
	assert.Less(t, strings.Index(res.Output, "sub/b.go"), strings.Index(res.Output, "a.go"), "newest file first")
}

func TestGlobNoFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(search.NewFallback())
	res, err := s.Glob(context.Background(), dir, GlobParams{Pattern: "**/*.rs"})
	require.NoError(t, err)
	assert.Equal(t, "No files found", res.Output)
}
