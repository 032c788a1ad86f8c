package env

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func writeSecret(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secret")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestResolve_PrecedenceOrder(t *testing.T) {
	nativeFile := writeSecret(t, "from-native-file")
	dotenvFile := writeSecret(t, "from-dotenv-file")

	tests := []struct {
		name string
		pool map[string]string
		want string
	}{
		{
			name: "native value wins over everything",
			pool: map[string]string{
				"FOO":             "native",
				"FOO_FILE":        nativeFile,
				"DOTENV_FOO_FILE": dotenvFile,
				"DOTENV_FOO":      "dotenv",
			},
			want: "native",
		},
		{
			name: "native file reference beats dotenv sources",
			pool: map[string]string{
				"FOO_FILE":        nativeFile,
				"DOTENV_FOO_FILE": dotenvFile,
				"DOTENV_FOO":      "dotenv",
			},
			want: "from-native-file",
		},
		{
			name: "dotenv file reference beats dotenv value",
			pool: map[string]string{
				"DOTENV_FOO_FILE": dotenvFile,
				"DOTENV_FOO":      "dotenv",
			},
			want: "from-dotenv-file",
		},
		{
			name: "dotenv value is the last resort",
			pool: map[string]string{"DOTENV_FOO": "dotenv"},
			want: "dotenv",
		},
		{
			name: "empty when every source is empty",
			pool: map[string]string{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolverFromPool(testLogger(), tt.pool)
			got, err := r.Resolve("FOO")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_FileContentUsedVerbatim(t *testing.T) {
	path := writeSecret(t, "secret-value\n")
	r := NewResolverFromPool(testLogger(), map[string]string{"TOKEN_FILE": path})

	got, err := r.Resolve("TOKEN")

	require.NoError(t, err)
	assert.Equal(t, "secret-value\n", got)
}

func TestResolve_EmptyFileFallsBackToDefault(t *testing.T) {
	path := writeSecret(t, "")
	r := NewResolverFromPool(testLogger(), map[string]string{"TOKEN_FILE": path})

	got, err := r.Resolve("TOKEN")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = r.ResolveDefault("TOKEN", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", got)
}

func TestResolve_UnreadableFileReference(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	r := NewResolverFromPool(testLogger(), map[string]string{"TOKEN_FILE": missing})

	_, err := r.Resolve("TOKEN")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOKEN_FILE")
	assert.Contains(t, err.Error(), missing)
}

func TestResolve_IdempotentAndCached(t *testing.T) {
	path := writeSecret(t, "cached")
	r := NewResolverFromPool(testLogger(), map[string]string{"TOKEN_FILE": path})

	first, err := r.Resolve("TOKEN")
	require.NoError(t, err)

	// Remove the backing file; the cached bare-name entry must answer now.
	require.NoError(t, os.Remove(path))

	second, err := r.Resolve("TOKEN")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Contains(t, r.Environ(), "TOKEN=cached")
}

func TestResolveDefault(t *testing.T) {
	r := NewResolverFromPool(testLogger(), map[string]string{"SET": "value"})

	got, err := r.ResolveDefault("SET", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "value", got)

	got, err = r.ResolveDefault("UNSET", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", got)
}

func TestMerge_NeverOverwrites(t *testing.T) {
	r := NewResolverFromPool(testLogger(), map[string]string{"DOTENV_FOO": "original"})

	r.Merge(map[string]string{"DOTENV_FOO": "clobbered", "DOTENV_BAR": "new"})

	foo, err := r.Resolve("FOO")
	require.NoError(t, err)
	assert.Equal(t, "original", foo)

	bar, err := r.Resolve("BAR")
	require.NoError(t, err)
	assert.Equal(t, "new", bar)
}
