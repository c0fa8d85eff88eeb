package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", ".notely")

	_, err := NewConfigStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestConfigStore_SetPersistsNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("api.url", "http://notes.test"))
	require.NoError(t, store.Set("upload.timeout_seconds", 45))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[api]")
	assert.Contains(t, string(data), "[upload]")

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "http://notes.test", reloaded.GetString("api.url"))
	assert.Equal(t, 45, reloaded.GetInt("upload.timeout_seconds"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("supabase.anon_key", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_LoadsHandWrittenFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[api]
url = "https://notes.example.com"

[gateway]
requests_per_second = 2.5

[log]
file = "/tmp/notely.log"
verbose = true
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "https://notes.example.com", store.GetString("api.url"))
	assert.InDelta(t, 2.5, store.GetFloat("gateway.requests_per_second"), 1e-9)
	assert.True(t, store.GetBool("log.verbose"))
	assert.ElementsMatch(t, []string{"api.url", "gateway.requests_per_second", "log.file", "log.verbose"}, store.Keys())
}

func TestConfigStore_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("not = [valid"), 0600))

	_, err := NewConfigStore(tmpDir)
	assert.Error(t, err)
}

func TestConfigStore_TypedGettersMissingKeys(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	assert.Empty(t, store.GetString("missing"))
	assert.Zero(t, store.GetInt("missing"))
	assert.Zero(t, store.GetFloat("missing"))
	assert.False(t, store.GetBool("missing"))
	assert.Nil(t, store.GetStringSlice("missing"))
}

func TestConfigStore_StringSlice(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("watch.dirs", []string{"/notes", "/journal"}))
	require.NoError(t, store.Load())

	assert.Equal(t, []string{"/notes", "/journal"}, store.GetStringSlice("watch.dirs"))
}

func TestFlattenAndNestMap(t *testing.T) {
	nested := map[string]any{
		"api":  map[string]any{"url": "x"},
		"root": true,
	}

	flat := flattenMap(nested, "")
	assert.Equal(t, map[string]any{"api.url": "x", "root": true}, flat)
	assert.Equal(t, nested, nestMap(flat))
}
