package tools

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/btca/internal/search"
)

func TestGrepGroupsAndSorts(t *testing.T) {
	dir := t.TempDir()
	one := writeFile(t, dir, "one.txt", "hello world\nfoo\n")
	writeFile(t, dir, "two.txt", "hello again\n")
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(one, old, old))

	s := New(search.NewFallback())
	res, err := s.Grep(context.Background(), dir, GrepParams{Pattern: "hello"})
	require.NoError(t, err)
	assert.Contains(t, res.Output, "one.txt:")
	assert.Contains(t, res.Output, "two.txt:")
	assert.Contains(t, res.Output, "1: hello world")
	assert.Less(t, strings.Index(res.Output, "two.txt:"), strings.Index(res.Output, "one.txt:"), "newest file first")
}

func TestGrepTruncation(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 150; i++ {
		writeFile(t, dir, fmt.Sprintf("f%d.txt", i), "match\n")
	}

	s := New(search.NewFallback())
	res, err := s.Grep(context.Background(), dir, GrepParams{Pattern: "match"})
	require.NoError(t, err)
	assert.Equal(t, 100, strings.Count(res.Output, "1: match"))
	assert.Contains(t, res.Output, "[Truncated: Results limited to 100 matches")
}

func TestGrepNoMatches(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "nothing\n")

	s := New(search.NewFallback())
	res, err := s.Grep(context.Background(), dir, GrepParams{Pattern: "zzz"})
	require.NoError(t, err)
	assert.Equal(t, "No matches found", res.Output)
}
