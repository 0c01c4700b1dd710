package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/user/fut-harvester/internal/domain"
)

// RecordArchive is the durable per-player record store: one JSON file per
// player, named by id. Files are written once and never updated; the
// presence of a file is what marks an id as already crawled.
type RecordArchive struct {
	dir string
}

func NewRecordArchive(dir string) (*RecordArchive, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("archive: create dir %q: %w", dir, err)
	}
	return &RecordArchive{dir: dir}, nil
}

func (a *RecordArchive) path(id string) string {
	return filepath.Join(a.dir, id+".json")
}

// KnownIDs scans the archive once and returns the set of persisted ids.
// Computed up front per run; concurrent runs may race and double-fetch an
// id, which is an accepted at-least-once limitation.
func (a *RecordArchive) KnownIDs() (map[string]struct{}, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, fmt.Errorf("archive: list dir: %w", err)
	}
	ids := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids[strings.TrimSuffix(name, ".json")] = struct{}{}
	}
	return ids, nil
}

// IDs returns all persisted ids ordered numerically (shorter ids first,
// lexicographic within a length), for deterministic aggregation.
func (a *RecordArchive) IDs() ([]string, error) {
	known, err := a.KnownIDs()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(known))
	for id := range known {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if len(ids[i]) != len(ids[j]) {
			return len(ids[i]) < len(ids[j])
		}
		return ids[i] < ids[j]
	})
	return ids, nil
}

// Save persists a player record, write-once. It returns false without
// touching the file when a record for the id already exists.
func (a *RecordArchive) Save(p *domain.Player) (bool, error) {
	data, err := json.Marshal(p.Fields)
	if err != nil {
		return false, fmt.Errorf("archive: marshal %s: %w", p.ID, err)
	}

	f, err := os.OpenFile(a.path(p.ID), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("archive: create %s: %w", p.ID, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return false, fmt.Errorf("archive: write %s: %w", p.ID, err)
	}
	return true, nil
}

// Load reads one persisted record back, field order preserved.
func (a *RecordArchive) Load(id string) (*domain.Record, error) {
	data, err := os.ReadFile(a.path(id))
	if err != nil {
		return nil, fmt.Errorf("archive: read %s: %w", id, err)
	}
	rec := domain.NewRecord()
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("archive: decode %s: %w", id, err)
	}
	return rec, nil
}
