package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalMediaStore_SaveAndRemove(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalMediaStore(dir)

	path, err := store.Save("rec-1", "meeting.mp3", []byte("audio-bytes"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "rec-1.mp3"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("audio-bytes"), data)

	require.NoError(t, store.Remove("rec-1"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLocalMediaStore_SaveWithoutExtension(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalMediaStore(dir)

	path, err := store.Save("rec-2", "recording", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "rec-2"), path)
}

func TestLocalMediaStore_RemoveMissingIsNoop(t *testing.T) {
	store := NewLocalMediaStore(t.TempDir())
	assert.NoError(t, store.Remove("never-saved"))
}

func TestLocalMediaStore_EmptyID(t *testing.T) {
	store := NewLocalMediaStore(t.TempDir())

	_, err := store.Save("", "a.mp3", []byte("x"))
	assert.Error(t, err)
	assert.Error(t, store.Remove(""))
}
