// Copyright 2026 Peter Edge
//
// All rights reserved.

package allocstate

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetGet(t *testing.T) {
	t.Parallel()
	dirPath := filepath.Join(t.TempDir(), "state")
	store := NewStore(newTestLogger(), dirPath)
	// Missing keys return the default.
	require.Equal(t, "default", GetOr(store, KeyAccessToken, "default"))
	require.False(t, GetOr(store, KeyPostTax, false))

	store.Set(KeyAccessToken, "token")
	store.Set(KeyPostTax, true)
	store.Set(KeyCollapsed, map[string]bool{"123": false})
	require.Equal(t, "token", GetOr(store, KeyAccessToken, ""))
	require.True(t, GetOr(store, KeyPostTax, false))

	// A second store over the same directory reads the persisted values.
	reopened := NewStore(newTestLogger(), dirPath)
	require.Equal(t, "token", GetOr(reopened, KeyAccessToken, ""))
	require.True(t, GetOr(reopened, KeyPostTax, false))
	require.Equal(t, map[string]bool{"123": false}, GetOr[map[string]bool](reopened, KeyCollapsed, nil))

	reopened.Delete(KeyAccessToken)
	require.Equal(t, "", GetOr(reopened, KeyAccessToken, ""))
	_, err := os.Stat(filepath.Join(dirPath, KeyAccessToken+".json"))
	require.ErrorIs(t, err, os.ErrNotExist)
	// Deleting a missing key is a no-op.
	reopened.Delete(KeyAccessToken)
}

func TestUnparseableStateUsesDefault(t *testing.T) {
	t.Parallel()
	dirPath := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dirPath, KeyRedact+".json"), []byte("{not json"), 0o600))
	store := NewStore(newTestLogger(), dirPath)
	require.True(t, GetOr(store, KeyRedact, true))
	// Overwriting recovers.
	store.Set(KeyRedact, false)
	require.False(t, GetOr(store, KeyRedact, true))
}

func TestWriteFailureKeepsValueInMemory(t *testing.T) {
	t.Parallel()
	// Make the state directory path a regular file so it cannot be created.
	parentDirPath := t.TempDir()
	dirPath := filepath.Join(parentDirPath, "state")
	require.NoError(t, os.WriteFile(dirPath, []byte("file"), 0o600))
	store := NewStore(newTestLogger(), dirPath)
	store.Set(KeyAPIServer, "https://api01.iq.questrade.com/")
	require.Equal(t, "https://api01.iq.questrade.com/", GetOr(store, KeyAPIServer, ""))
	// Nothing was persisted.
	require.Equal(t, "", GetOr(NewStore(newTestLogger(), dirPath), KeyAPIServer, ""))
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
