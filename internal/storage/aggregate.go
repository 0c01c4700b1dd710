package storage

import (
	"go.uber.org/zap"
)

// ExportPlayers joins every archived record into one wide CSV at path.
// Column order is the first-seen field order while walking records in id
// order, so repeated runs over the same archive produce identical output.
// A malformed record file is skipped and logged, never fatal.
func ExportPlayers(archive *RecordArchive, path string, logger *zap.Logger) (int, error) {
	ids, err := archive.IDs()
	if err != nil {
		return 0, err
	}

	var columns []string
	seen := make(map[string]struct{})
	records := make(map[string]map[string]string, len(ids))
	var ordered []string

	for _, id := range ids {
		rec, err := archive.Load(id)
		if err != nil {
			logger.Warn("skipping malformed record", zap.String("id", id), zap.Error(err))
			continue
		}
		row := make(map[string]string, rec.Len())
		for _, key := range rec.Keys() {
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				columns = append(columns, key)
			}
			row[key] = rec.GetString(key)
		}
		records[id] = row
		ordered = append(ordered, id)
	}

	sink, err := NewCSVSink(path, columns)
	if err != nil {
		return 0, err
	}
	defer sink.Close()

	for _, id := range ordered {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = records[id][col]
		}
		if err := sink.Append(row); err != nil {
			return 0, err
		}
	}
	return len(ordered), nil
}
