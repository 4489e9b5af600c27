package gitutil

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

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

func TestClientCloneShallow(t *testing.T) {
	src := initTestRepo(t)
	dst := filepath.Join(t.TempDir(), "clone")

	c := NewClient(nil)
	err := c.Clone(context.Background(), dst, CloneOptions{URL: "file://" + src, Branch: "main"})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dst, "README.md"))
	require.NoError(t, err)
}

func TestClientCloneSparse(t *testing.T) {
	src := initTestRepo(t)
	dst := filepath.Join(t.TempDir(), "clone")

	c := NewClient(nil)
	err := c.Clone(context.Background(), dst, CloneOptions{URL: "file://" + src, Branch: "main", SearchPath: "docs"})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dst, "docs", "guide.md"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dst, "README.md"))
	require.Error(t, err, "README.md lies outside the sparse-checkout scope")
}

func TestClientUpdate(t *testing.T) {
	src := initTestRepo(t)
	dst := filepath.Join(t.TempDir(), "clone")

	c := NewClient(nil)
	require.NoError(t, c.Clone(context.Background(), dst, CloneOptions{URL: "file://" + src, Branch: "main"}))

	cmd := exec.Command("git", "commit", "--allow-empty", "-m", "second")
	cmd.Dir = src
	require.NoError(t, cmd.Run())

	require.NoError(t, c.Update(context.Background(), dst, CloneOptions{URL: "file://" + src, Branch: "main"}))
}
