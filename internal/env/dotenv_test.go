package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotenvReader(t *testing.T) {
	content := `
# This is a comment
ZIP_PASSWORD=secret123

NTFY_TOKEN=tk_abc
`
	entries, err := LoadDotenvReader(content)

	require.NoError(t, err)
	assert.Equal(t, "secret123", entries["DOTENV_ZIP_PASSWORD"])
	assert.Equal(t, "tk_abc", entries["DOTENV_NTFY_TOKEN"])
	assert.Len(t, entries, 2)
}

func TestLoadDotenv_MissingFileIsSkipped(t *testing.T) {
	entries, err := LoadDotenv(filepath.Join(t.TempDir(), "nope.env"), testLogger())

	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadDotenv_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("MAIL_TO=admin@example.com\n"), 0o600))

	entries, err := LoadDotenv(path, testLogger())

	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", entries["DOTENV_MAIL_TO"])
}

func TestLoadDotenv_NativeEnvironmentWins(t *testing.T) {
	// A dotenv entry for a name that is also set natively must not shadow
	// the native value; the namespaced entry only serves as a fallback.
	entries, err := LoadDotenvReader("FOO=from-dotenv\n")
	require.NoError(t, err)

	r := NewResolverFromPool(testLogger(), map[string]string{"FOO": "from-native"})
	r.Merge(entries)

	got, err := r.Resolve("FOO")
	require.NoError(t, err)
	assert.Equal(t, "from-native", got)

	bare, err := r.Resolve("BAR")
	require.NoError(t, err)
	assert.Empty(t, bare)
}
