package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/user/fut-harvester/internal/domain"
)

func testPlayer(id string, fields map[string]string, order []string) *domain.Player {
	rec := domain.NewRecord()
	for _, k := range order {
		rec.Set(k, fields[k])
	}
	return &domain.Player{ID: id, Fields: rec}
}

func TestArchiveSaveLoadRoundTrip(t *testing.T) {
	archive, err := NewRecordArchive(t.TempDir())
	require.NoError(t, err)

	p := testPlayer("44079",
		map[string]string{"futbin_url": "u", "rating": "94"},
		[]string{"futbin_url", "rating"})
	written, err := archive.Save(p)
	require.NoError(t, err)
	require.True(t, written)

	rec, err := archive.Load("44079")
	require.NoError(t, err)
	require.Equal(t, []string{"futbin_url", "rating"}, rec.Keys())
	require.Equal(t, "94", rec.GetString("rating"))
}

func TestArchiveWriteOnce(t *testing.T) {
	dir := t.TempDir()
	archive, err := NewRecordArchive(dir)
	require.NoError(t, err)

	first := testPlayer("1", map[string]string{"a": "original"}, []string{"a"})
	written, err := archive.Save(first)
	require.NoError(t, err)
	require.True(t, written)

	before, err := os.ReadFile(filepath.Join(dir, "1.json"))
	require.NoError(t, err)

	// a second save for the same id is a no-op, never an overwrite
	second := testPlayer("1", map[string]string{"a": "changed"}, []string{"a"})
	written, err = archive.Save(second)
	require.NoError(t, err)
	require.False(t, written)

	after, err := os.ReadFile(filepath.Join(dir, "1.json"))
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestArchiveKnownIDs(t *testing.T) {
	dir := t.TempDir()
	archive, err := NewRecordArchive(dir)
	require.NoError(t, err)

	for _, id := range []string{"3", "10", "2"} {
		_, err := archive.Save(testPlayer(id, map[string]string{"x": "1"}, []string{"x"}))
		require.NoError(t, err)
	}
	// stray files are not record ids
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	known, err := archive.KnownIDs()
	require.NoError(t, err)
	require.Len(t, known, 3)
	require.Contains(t, known, "10")

	ids, err := archive.IDs()
	require.NoError(t, err)
	require.Equal(t, []string{"2", "3", "10"}, ids, "numeric order, not lexicographic")
}
