package sandbox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/btca/internal/apperr"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		requested string
		wantErr   bool
	}{
		{name: "relative descendant", requested: "README.md", wantErr: false},
		{name: "nested relative descendant", requested: "a/b/c.txt", wantErr: false},
		{name: "dot", requested: ".", wantErr: false},
		{name: "absolute within base", requested: "/collection/README.md", wantErr: false},
		{name: "parent escape", requested: "../etc/passwd", wantErr: true},
		{name: "nested parent escape", requested: "a/../../etc/passwd", wantErr: true},
		{name: "sibling directory escape", requested: "/collection-evil/README.md", wantErr: true},
		{name: "absolute outside base", requested: "/etc/passwd", wantErr: true},
	}

	sb := New("/collection")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sb.Resolve(tt.requested)
			if tt.wantErr {
				require.Error(t, err)
				e, ok := apperr.As(err)
				require.True(t, ok)
				assert.Equal(t, apperr.TagPathEscape, e.Tag)
				return
			}
			require.NoError(t, err)
			assert.True(t, within("/collection", got))
		})
	}
}

func TestResolveWithSymlinksTargetMayEscapeBase(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/collection", 0o755))
	require.NoError(t, fs.MkdirAll("/resources/foo", 0o755))

	sb := NewWithFs("/collection", fs)

	// MemMapFs has no real symlink support, so ResolveWithSymlinks simply
	// falls back to Resolve's containment check on the requested path.
	got, err := sb.ResolveWithSymlinks("foo")
	require.NoError(t, err)
	assert.Equal(t, "/collection/foo", got)

	// On the OS filesystem a symlink inside base resolves to its target even
	// though that target lies outside base.
	base := t.TempDir()
	outside := t.TempDir()
	require.NoError(t, os.Symlink(outside, filepath.Join(base, "res")))
	got, err = New(base).ResolveWithSymlinks("res")
	require.NoError(t, err)
	assert.Equal(t, outside, got)
}

func TestResolveFuzzNeverEscapes(t *testing.T) {
	sb := New("/collection")
	candidates := []string{
		"../../../../etc/passwd",
		"..",
		"a/../../b",
		"./././../x",
		"/collection/../collection-x",
		"/collection/./sub/../../escape",
	}
	for _, c := range candidates {
		got, err := sb.Resolve(c)
		if err == nil {
			assert.True(t, within("/collection", got), "resolved %q to %q which escapes base", c, got)
		}
	}
}
