package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFallbackDriverFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package a\n")
	writeFile(t, dir, "sub/b.go", "package sub\n")
	writeFile(t, dir, "sub/c.md", "# doc\n")
	writeFile(t, dir, ".hidden/d.go", "package hidden\n")

	d := &fallbackDriver{}

	got, err := d.Files(context.Background(), dir, nil, false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.go", "sub/b.go", "sub/c.md"}, got)

	got, err = d.Files(context.Background(), dir, []string{"**/*.go"}, false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.go", "sub/b.go"}, got)

	got, err = d.Files(context.Background(), dir, nil, true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.go", "sub/b.go", "sub/c.md", ".hidden/d.go"}, got)
}

func TestFallbackDriverSearch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "one.txt", "hello world\nfoo bar\nhello again\n")
	writeFile(t, dir, "two.txt", "nothing here\n")

	d := &fallbackDriver{}
	matches, err := d.Search(context.Background(), dir, "hello", "", false, 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, 1, matches[0].LineNumber)
	assert.Equal(t, "hello world", matches[0].LineText)
	assert.Equal(t, 3, matches[1].LineNumber)
}

func TestFallbackDriverSearchTruncation(t *testing.T) {
	dir := t.TempDir()
	lines := ""
	for i := 0; i < 20; i++ {
		lines += "match\n"
	}
	writeFile(t, dir, "many.txt", lines)

	d := &fallbackDriver{}
	matches, err := d.Search(context.Background(), dir, "match", "", false, 5)
	require.NoError(t, err)
	assert.Len(t, matches, 6) // maxResults+1, so caller can detect truncation
}

func TestFallbackDriverSearchInvalidPattern(t *testing.T) {
	d := &fallbackDriver{}
	_, err := d.Search(context.Background(), t.TempDir(), "(unclosed", "", false, 10)
	assert.Error(t, err)
}

// TestFallbackDriverFollowsSymlinkedDirectories guards against a
// regression where the walker lstats entries and never descends into a
// symlinked directory — a collection (§3) is exactly that: a directory of
// symlinks into the resource cache, so both tools must follow them.
func TestFallbackDriverFollowsSymlinkedDirectories(t *testing.T) {
	cacheDir := t.TempDir()
	writeFile(t, cacheDir, "README.md", "hello from the resource\n")
	writeFile(t, cacheDir, "docs/guide.md", "guide contents\n")

	collectionDir := t.TempDir()
	require.NoError(t, os.Symlink(cacheDir, filepath.Join(collectionDir, "docs-resource")))

	d := &fallbackDriver{}

	got, err := d.Files(context.Background(), collectionDir, nil, false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"docs-resource/README.md",
		"docs-resource/docs/guide.md",
	}, got)

	matches, err := d.Search(context.Background(), collectionDir, "hello", "", false, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, filepath.Join(collectionDir, "docs-resource", "README.md"), matches[0].AbsPath)
}

// TestFallbackDriverWalkGuardsAgainstSymlinkCycles ensures a symlink
// pointing back at an ancestor directory doesn't recurse forever.
func TestFallbackDriverWalkGuardsAgainstSymlinkCycles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "content\n")
	require.NoError(t, os.Symlink(dir, filepath.Join(dir, "loop")))

	d := &fallbackDriver{}
	got, err := d.Files(context.Background(), dir, nil, false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.txt"}, got)
}
