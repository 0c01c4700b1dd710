package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExportPlayersColumnUnion(t *testing.T) {
	dir := t.TempDir()
	archive, err := NewRecordArchive(dir)
	require.NoError(t, err)

	_, err = archive.Save(testPlayer("2",
		map[string]string{"futbin_id": "2", "rating": "90"},
		[]string{"futbin_id", "rating"}))
	require.NoError(t, err)
	_, err = archive.Save(testPlayer("10",
		map[string]string{"futbin_id": "10", "rating": "85", "traits": "Flair"},
		[]string{"futbin_id", "rating", "traits"}))
	require.NoError(t, err)

	out := filepath.Join(dir, "player_data.csv")
	count, err := ExportPlayers(archive, out, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, 2, count)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t,
		"futbin_id,rating,traits\n"+
			"2,90,\n"+
			"10,85,Flair\n",
		string(data))
}

func TestExportPlayersSkipsMalformedRecord(t *testing.T) {
	dir := t.TempDir()
	archive, err := NewRecordArchive(dir)
	require.NoError(t, err)

	_, err = archive.Save(testPlayer("1", map[string]string{"futbin_id": "1"}, []string{"futbin_id"}))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2.json"), []byte("{broken"), 0o644))

	out := filepath.Join(dir, "player_data.csv")
	count, err := ExportPlayers(archive, out, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
