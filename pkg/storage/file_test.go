package storage

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "tokens.json")
	f := NewFile(path)

	_, ok, err := f.Get(ctx, "cloudops_tokens_v1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.Set(ctx, "cloudops_tokens_v1", `{"id_token":"a"}`))
	require.NoError(t, f.Set(ctx, "cloudops_pkce_v1", "verifier"))

	// A second instance sees the same values.
	other := NewFile(path)
	v, ok, err := other.Get(ctx, "cloudops_tokens_v1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"id_token":"a"}`, v)

	require.NoError(t, other.Remove(ctx, "cloudops_pkce_v1"))
	_, ok, err = f.Get(ctx, "cloudops_pkce_v1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not enforced on windows")
	}
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, NewFile(path).Set(context.Background(), "k", "v"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileTightensExistingPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not enforced on windows")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"entries":{"old":"x"}}`), 0o644))

	f := NewFile(path)
	require.NoError(t, f.Set(context.Background(), "k", "v"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	v, ok, err := f.Get(context.Background(), "old")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	// No temp files are left next to the token file.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "tokens.json", entries[0].Name())
}

func TestFileErrors(t *testing.T) {
	ctx := context.Background()

	_, _, err := NewFile("").Get(ctx, "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token file path is required")

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{bad json"), 0o600))
	_, _, err = NewFile(path).Get(ctx, "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse token file")
}

func TestFileRemoveMissingKeyDoesNotCreateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, NewFile(path).Remove(context.Background(), "k"))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
