package tokenstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var samplePair = TokenPair{
	Access:  "eyJhbGciOiJIUzI1NiJ9.payload.sig",
	Refresh: "opaque-refresh-token",
}

func TestMemoryRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	ctx := context.Background()

	_, ok := store.Get(ctx)
	require.False(t, ok, "fresh store is empty")

	require.NoError(t, store.Set(ctx, samplePair))

	got, ok := store.Get(ctx)
	require.True(t, ok)
	require.Equal(t, samplePair, got)

	require.NoError(t, store.Clear(ctx))
	_, ok = store.Get(ctx)
	require.False(t, ok)
}

func TestFileRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "school", "tokens")
	store := NewFile(path, "passphrase")
	ctx := context.Background()

	_, ok := store.Get(ctx)
	require.False(t, ok, "missing file reads as no tokens")

	require.NoError(t, store.Set(ctx, samplePair))

	got, ok := store.Get(ctx)
	require.True(t, ok)
	require.Equal(t, samplePair, got)

	require.NoError(t, store.Clear(ctx))
	_, ok = store.Get(ctx)
	require.False(t, ok)

	// Clearing twice is fine.
	require.NoError(t, store.Clear(ctx))
}

func TestFileSurvivesReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tokens")
	ctx := context.Background()

	require.NoError(t, NewFile(path, "pw").Set(ctx, samplePair))

	got, ok := NewFile(path, "pw").Get(ctx)
	require.True(t, ok)
	require.Equal(t, samplePair, got)
}

func TestFileWrongPassphraseReadsAsEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tokens")
	ctx := context.Background()

	require.NoError(t, NewFile(path, "right").Set(ctx, samplePair))

	_, ok := NewFile(path, "wrong").Get(ctx)
	require.False(t, ok)
}

func TestFileCorruptBlobReadsAsEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tokens")
	require.NoError(t, os.WriteFile(path, []byte("not a sealed blob"), 0o600))

	_, ok := NewFile(path, "pw").Get(context.Background())
	require.False(t, ok)
}

func TestFileDoesNotStoreTokensInPlaintext(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tokens")
	ctx := context.Background()

	require.NoError(t, NewFile(path, "pw").Set(ctx, samplePair))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), samplePair.Access)
	require.NotContains(t, string(raw), samplePair.Refresh)
}

func TestSQLiteRoundTrip(t *testing.T) {
	t.Parallel()

	store, err := NewSQLite(filepath.Join(t.TempDir(), "school.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	_, ok := store.Get(ctx)
	require.False(t, ok)

	require.NoError(t, store.Set(ctx, samplePair))

	got, ok := store.Get(ctx)
	require.True(t, ok)
	require.Equal(t, samplePair, got)

	// Overwrites replace the whole pair.
	rotated := TokenPair{Access: "new-access", Refresh: "new-refresh"}
	require.NoError(t, store.Set(ctx, rotated))

	got, ok = store.Get(ctx)
	require.True(t, ok)
	require.Equal(t, rotated, got)

	require.NoError(t, store.Clear(ctx))
	_, ok = store.Get(ctx)
	require.False(t, ok)
}
