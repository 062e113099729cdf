package dashboard

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "dashboard.json")
	fs := NewFileStorage(path)

	_, ok := fs.Get("missing")
	assert.False(t, ok)

	require.NoError(t, fs.Set("ghalaUser", `{"token":"t"}`))
	require.NoError(t, fs.Set("ghalaDarkMode", "true"))

	// A fresh instance reads the same file.
	fs2 := NewFileStorage(path)
	v, ok := fs2.Get("ghalaUser")
	require.True(t, ok)
	assert.Equal(t, `{"token":"t"}`, v)

	require.NoError(t, fs2.Delete("ghalaUser"))
	_, ok = fs2.Get("ghalaUser")
	assert.False(t, ok)

	// Deleting one key leaves the others alone.
	v, ok = fs2.Get("ghalaDarkMode")
	require.True(t, ok)
	assert.Equal(t, "true", v)
}

func TestSessionStore_RestoreDropsCorruptEntry(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Set("ghalaUser", "not json"))

	store := NewSessionStore(NewClient("http://localhost"), storage)
	_, ok := store.Restore()
	assert.False(t, ok)

	// The corrupt entry was removed.
	_, ok = storage.Get("ghalaUser")
	assert.False(t, ok)
}

func TestSessionStore_MerchantIDWhenAnonymous(t *testing.T) {
	store := NewSessionStore(NewClient("http://localhost"), NewMemoryStorage())
	_, err := store.MerchantID()
	assert.ErrorIs(t, err, ErrAnonymous)
}

func TestSessionStore_DarkModeDefaultsOff(t *testing.T) {
	store := NewSessionStore(NewClient("http://localhost"), NewMemoryStorage())
	assert.False(t, store.DarkMode())

	store.SetDarkMode(true)
	assert.True(t, store.DarkMode())

	store.SetDarkMode(false)
	assert.False(t, store.DarkMode())
}
