package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfig = `{
  // line comment
  "resources": [
    {
      "name": "docs",
      "type": "git",
      "url": "https://github.com/example/docs.git",
      "branch": "main",
      "searchPath": "content",
      "specialNotes": "Focus on the API reference."
    }
  ],
  /* block
     comment */
  "model": "gpt-test",
  "provider": "openai-compatible"
}`

func writeConfig(t *testing.T, fs afero.Fs, contents string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, fileName, []byte(contents), 0o644))
}

func TestLoadParsesAndValidatesJSONC(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeConfig(t, fs, validConfig)

	store, err := Load(fs)
	require.NoError(t, err)

	snap := store.Snapshot()
	assert.Equal(t, "openai-compatible", snap.Provider)
	assert.Equal(t, "gpt-test", snap.Model)
	require.Len(t, snap.Resources, 1)
	assert.Equal(t, "docs", snap.Resources[0].Name)
	assert.Equal(t, 1, snap.ResourceCount())
}

func TestLoadCreatesGlobalDefaultWhenNoProjectFileExists(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	fs := afero.NewMemMapFs()

	store, err := Load(fs)
	require.NoError(t, err)

	snap := store.Snapshot()
	assert.Empty(t, snap.Resources)
}

func TestLoadRejectsUnknownTopLevelField(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeConfig(t, fs, `{"resources": [], "model": "m", "provider": "p", "extra": true}`)

	_, err := Load(fs)
	require.Error(t, err)
}

func TestLoadAggregatesAllResourceValidationFailures(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeConfig(t, fs, `{
		"resources": [
			{"name": "bad name", "type": "git", "url": "http://example.com/repo.git", "branch": "-bad"},
			{"name": "ok", "type": "git", "url": "https://example.com/repo.git", "branch": "main"}
		],
		"model": "m", "provider": "p"
	}`)

	_, err := Load(fs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name must match")
	assert.Contains(t, err.Error(), "must be HTTPS")
	assert.Contains(t, err.Error(), "must not start with")
}

func TestLoadRejectsPrivateAndLocalhostURLs(t *testing.T) {
	cases := []string{
		"https://localhost/repo.git",
		"https://127.0.0.1/repo.git",
		"https://10.0.0.5/repo.git",
		"https://192.168.1.1/repo.git",
	}
	for _, u := range cases {
		fs := afero.NewMemMapFs()
		writeConfig(t, fs, `{"resources":[{"name":"r","type":"git","url":"`+u+`","branch":"main"}],"model":"m","provider":"p"}`)

		_, err := Load(fs)
		require.Errorf(t, err, "expected %s to be rejected", u)
	}
}

func TestStoreAddRemoveUpdateModelPersist(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeConfig(t, fs, `{"resources": [], "model": "m", "provider": "p"}`)

	store, err := Load(fs)
	require.NoError(t, err)

	err = store.AddResource(ResourceDefinition{Name: "docs", Type: "git", URL: "https://example.com/repo.git", Branch: "main"})
	require.NoError(t, err)
	assert.Len(t, store.Snapshot().Resources, 1)

	// Reload from disk to confirm persistence actually happened.
	reloaded, err := Load(fs)
	require.NoError(t, err)
	assert.Len(t, reloaded.Snapshot().Resources, 1)

	err = store.UpdateModel("anthropic-compatible", "claude-test")
	require.NoError(t, err)
	snap := store.Snapshot()
	assert.Equal(t, "anthropic-compatible", snap.Provider)
	assert.Equal(t, "claude-test", snap.Model)

	removed, err := store.RemoveResource("docs")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, store.Snapshot().Resources)

	removedAgain, err := store.RemoveResource("docs")
	require.NoError(t, err)
	assert.False(t, removedAgain)
}

func TestStoreAddResourceRejectsDuplicateName(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeConfig(t, fs, `{"resources": [], "model": "m", "provider": "p"}`)
	store, err := Load(fs)
	require.NoError(t, err)

	def := ResourceDefinition{Name: "docs", Type: "git", URL: "https://example.com/repo.git", Branch: "main"}
	require.NoError(t, store.AddResource(def))
	require.Error(t, store.AddResource(def))
}

func TestResourceImplementsDefinitionLookup(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeConfig(t, fs, validConfig)
	store, err := Load(fs)
	require.NoError(t, err)

	def, ok := store.Resource("docs")
	require.True(t, ok)
	assert.Equal(t, "content", def.SearchPath)

	_, ok = store.Resource("missing")
	assert.False(t, ok)
}

func TestStripJSONCommentsPreservesStringContents(t *testing.T) {
	in := `{"url": "https://example.com/a//b", "note": "/* not a comment */"}`
	out := string(stripJSONComments([]byte(in)))
	assert.Contains(t, out, `"https://example.com/a//b"`)
	assert.Contains(t, out, `"/* not a comment */"`)
}
