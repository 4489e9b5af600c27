package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListClassifiesAndSorts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "zdir"), 0o755))
	writeFile(t, dir, "b.txt", "hello")
	writeFile(t, dir, "a.txt", "hi")

	s := New(nil)
	res, err := s.List(context.Background(), dir, ListParams{Path: "."})
	require.NoError(t, err)

	dirIdx := strings.Index(res.Output, "[DIR]  zdir/")
	fileAIdx := strings.Index(res.Output, "[FILE] a.txt")
	fileBIdx := strings.Index(res.Output, "[FILE] b.txt")
	require.NotEqual(t, -1, dirIdx)
	require.NotEqual(t, -1, fileAIdx)
	require.NotEqual(t, -1, fileBIdx)
	assert.Less(t, dirIdx, fileAIdx, "directories must be listed before files")
	assert.Less(t, fileAIdx, fileBIdx, "files must be alphabetized")
	assert.Contains(t, res.Output, "Total: 3 items (1 directories, 2 files)")
}
