package resourcecache

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/btca/internal/apperr"
	"github.com/sevigo/btca/internal/gitutil"
)

type fakeDefs struct {
	defs map[string]Definition
}

func (f fakeDefs) Resource(name string) (Definition, bool) {
	d, ok := f.defs[name]
	return d, ok
}

func initTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		require.NoError(t, cmd.Run())
	}
	run("init", "-b", "main")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "test")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "guide.md"), []byte("guide"), 0o644))
	run("add", ".")
	run("commit", "-m", "initial")
	return dir
}

func newTestCache(t *testing.T, defs map[string]Definition) (*Cache, string) {
	t.Helper()
	resourcesDir := filepath.Join(t.TempDir(), "resources")
	c := New(resourcesDir, fakeDefs{defs: defs}, gitutil.NewClient(nil), nil, nil)
	return c, resourcesDir
}

func TestCacheLoadClonesOnFirstUse(t *testing.T) {
	src := initTestRepo(t)
	c, resourcesDir := newTestCache(t, map[string]Definition{
		"docs": {Name: "docs", Type: "git", URL: "file://" + src, Branch: "main"},
	})

	res, err := c.Load(context.Background(), "docs", false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(resourcesDir, "docs"), res.AbsolutePath())
	assert.Empty(t, res.RepoSubPath)

	_, err = os.Stat(filepath.Join(res.AbsolutePath(), "README.md"))
	require.NoError(t, err)
}

func TestCacheLoadUpdatesExistingClone(t *testing.T) {
	src := initTestRepo(t)
	c, _ := newTestCache(t, map[string]Definition{
		"docs": {Name: "docs", Type: "git", URL: "file://" + src, Branch: "main"},
	})

	res1, err := c.Load(context.Background(), "docs", false)
	require.NoError(t, err)

	cmd := exec.Command("git", "commit", "--allow-empty", "-m", "second")
	cmd.Dir = src
	require.NoError(t, cmd.Run())

	res2, err := c.Load(context.Background(), "docs", true)
	require.NoError(t, err)
	assert.Equal(t, res1.AbsolutePath(), res2.AbsolutePath())
}

func TestCacheLoadUnknownResource(t *testing.T) {
	c, _ := newTestCache(t, map[string]Definition{})

	_, err := c.Load(context.Background(), "missing", false)
	require.Error(t, err)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.ResourceDefNotFound, e.Sub)
}

func TestCacheLoadSparseSearchPath(t *testing.T) {
	src := initTestRepo(t)
	c, _ := newTestCache(t, map[string]Definition{
		"docs": {Name: "docs", Type: "git", URL: "file://" + src, Branch: "main", SearchPath: "docs"},
	})

	res, err := c.Load(context.Background(), "docs", false)
	require.NoError(t, err)
	assert.Equal(t, "docs", res.RepoSubPath)

	_, err = os.Stat(filepath.Join(res.AbsolutePath(), "docs", "guide.md"))
	require.NoError(t, err)
}

func TestCacheLoadSearchPathMissing(t *testing.T) {
	src := initTestRepo(t)
	c, _ := newTestCache(t, map[string]Definition{
		"docs": {Name: "docs", Type: "git", URL: "file://" + src, Branch: "main", SearchPath: "nope"},
	})

	_, err := c.Load(context.Background(), "docs", false)
	require.Error(t, err)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.ResourceSearchPathMissing, e.Sub)
}

func TestCacheLoadSearchPathChangeForcesReclone(t *testing.T) {
	src := initTestRepo(t)
	resourcesDir := filepath.Join(t.TempDir(), "resources")
	defs := map[string]Definition{
		"docs": {Name: "docs", Type: "git", URL: "file://" + src, Branch: "main"},
	}
	c := New(resourcesDir, fakeDefs{defs: defs}, gitutil.NewClient(nil), nil, nil)

	_, err := c.Load(context.Background(), "docs", false)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(resourcesDir, "docs", "README.md"))
	require.NoError(t, err, "full tree present before narrowing")

	defs["docs"] = Definition{Name: "docs", Type: "git", URL: "file://" + src, Branch: "main", SearchPath: "docs"}
	res, err := c.Load(context.Background(), "docs", false)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(res.AbsolutePath(), "docs", "guide.md"))
	require.NoError(t, err, "sparse scope applied after re-clone")
	_, err = os.Stat(filepath.Join(res.AbsolutePath(), "README.md"))
	require.Error(t, err, "README.md should fall outside the new sparse scope")
}

func TestCacheLoadConcurrentSameNameSerializes(t *testing.T) {
	src := initTestRepo(t)
	c, _ := newTestCache(t, map[string]Definition{
		"docs": {Name: "docs", Type: "git", URL: "file://" + src, Branch: "main"},
	})

	const n = 8
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := c.Load(context.Background(), "docs", true)
			errs <- err
		}()
	}
	for i := 0; i < n; i++ {
		require.NoError(t, <-errs)
	}
}
