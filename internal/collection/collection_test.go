package collection

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/btca/internal/apperr"
	"github.com/sevigo/btca/internal/resourcecache"
)

type fakeLoader struct {
	roots map[string]string
	calls []string
}

func (f *fakeLoader) Load(_ context.Context, name string, _ bool) (resourcecache.Resource, error) {
	f.calls = append(f.calls, name)
	root, ok := f.roots[name]
	if !ok {
		return resourcecache.Resource{}, apperr.Resource(apperr.ResourceDefNotFound, nil, "unknown resource %q", name)
	}
	return resourcecache.NewResourceForTest(name, root, "", ""), nil
}

func newFakeLoader(t *testing.T, names ...string) *fakeLoader {
	t.Helper()
	roots := make(map[string]string, len(names))
	for _, n := range names {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hi"), 0o644))
		roots[n] = dir
	}
	return &fakeLoader{roots: roots}
}

func TestAssemblerLoadBuildsSymlinkForest(t *testing.T) {
	loader := newFakeLoader(t, "alpha", "beta")
	a := New(t.TempDir(), loader, nil)

	col, err := a.Load(context.Background(), []string{"beta", "alpha"}, true)
	require.NoError(t, err)
	assert.Equal(t, "alpha+beta", col.Key)

	entries, err := os.ReadDir(col.Path)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
		assert.Equal(t, os.ModeSymlink, e.Type()&os.ModeSymlink)

		target, err := os.Readlink(filepath.Join(col.Path, e.Name()))
		require.NoError(t, err)
		assert.Equal(t, loader.roots[e.Name()], target)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"alpha", "beta"}, names)

	assert.Contains(t, col.AgentInstructions, "## Resource: alpha")
	assert.Contains(t, col.AgentInstructions, "## Resource: beta")
}

func TestAssemblerLoadKeyIsOrderAndDuplicateInvariant(t *testing.T) {
	loader := newFakeLoader(t, "alpha", "beta")
	a := New(t.TempDir(), loader, nil)

	col1, err := a.Load(context.Background(), []string{"alpha", "beta"}, true)
	require.NoError(t, err)

	col2, err := a.Load(context.Background(), []string{"beta", "beta", "alpha", "alpha"}, true)
	require.NoError(t, err)

	assert.Equal(t, col1.Key, col2.Key)
	assert.Equal(t, col1.Path, col2.Path)
}

func TestAssemblerLoadEmptyResourceListFails(t *testing.T) {
	loader := newFakeLoader(t)
	a := New(t.TempDir(), loader, nil)

	_, err := a.Load(context.Background(), nil, true)
	require.Error(t, err)

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.TagCollection, appErr.Tag)
}

func TestAssemblerLoadAbortsOnFirstResourceFailure(t *testing.T) {
	loader := newFakeLoader(t, "alpha")
	a := New(t.TempDir(), loader, nil)

	_, err := a.Load(context.Background(), []string{"alpha", "missing"}, true)
	require.Error(t, err)
	assert.Equal(t, []string{"alpha", "missing"}, loader.calls)
}

func TestAssemblerLoadOverwritesExistingSymlink(t *testing.T) {
	loader := newFakeLoader(t, "alpha")
	a := New(t.TempDir(), loader, nil)

	_, err := a.Load(context.Background(), []string{"alpha"}, true)
	require.NoError(t, err)

	col, err := a.Load(context.Background(), []string{"alpha"}, true)
	require.NoError(t, err)

	target, err := os.Readlink(filepath.Join(col.Path, "alpha"))
	require.NoError(t, err)
	assert.Equal(t, loader.roots["alpha"], target)
}
