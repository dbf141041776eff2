package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "rag-chatbot-data")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Put(ctx, "rag-chatbot-data", []byte(`{"v":1}`)))
	require.NoError(t, s.Put(ctx, "rag-chatbot-data", []byte(`{"v":2}`)))

	v, ok, err := s.Get(ctx, "rag-chatbot-data")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"v":2}`, string(v))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	s := NewMemoryStore()
	buf := []byte("abc")
	require.NoError(t, s.Put(context.Background(), "k", buf))
	buf[0] = 'x'

	v, _, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(v))
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(filepath.Join(dir, "state"))
	require.NoError(t, err)
	exerciseStore(t, s)

	entries, err := os.ReadDir(filepath.Join(dir, "state"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	require.Equal(t, "rag-chatbot-data.json", entries[0].Name())
}

func TestFileStore_EscapesKeys(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "a%2Fb.json"), s.path("a/b"))
}

func TestNewFileStore_EmptyDir(t *testing.T) {
	_, err := NewFileStore(" ")
	require.Error(t, err)
}
