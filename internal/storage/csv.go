package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/user/fut-harvester/internal/domain"
)

// CSVSink writes rows to a CSV file created fresh for each run. It is
// safe for concurrent use; row order reflects append order.
type CSVSink struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVSink creates (or truncates) the file at path and writes the
// header row. Intermediate directories are created automatically.
func NewCSVSink(path string, header []string) (*CSVSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()
	return &CSVSink{file: f, writer: w}, nil
}

// Append writes rows and flushes them to disk.
func (c *CSVSink) Append(rows ...[]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, row := range rows {
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}
	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVSink) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

// RefsHeader is the column layout of the listing stage output.
var RefsHeader = []string{"player", "url"}

// PricesHeader is the column layout of the price history table.
var PricesHeader = []string{"futbin_id", "platform", "date", "price"}

// ReadRefs loads the listing stage output back as player references.
func ReadRefs(path string) ([]domain.PlayerRef, error) {
	rows, err := readAll(path)
	if err != nil {
		return nil, err
	}
	refs := make([]domain.PlayerRef, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		refs = append(refs, domain.PlayerRef{Name: row[0], URL: row[1]})
	}
	return refs, nil
}

// ReadRatedIDs loads (id, rating) pairs from the aggregated player table,
// locating the futbin_id and rating columns by header name. Rows whose
// rating is not numeric get rating -1.
func ReadRatedIDs(path string) ([]domain.RatedID, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}
	idCol, ratingCol := -1, -1
	for i, name := range header {
		switch name {
		case "futbin_id":
			idCol = i
		case "rating":
			ratingCol = i
		}
	}
	if idCol < 0 || ratingCol < 0 {
		return nil, fmt.Errorf("csv: %q is missing futbin_id or rating column", path)
	}

	var out []domain.RatedID
	for {
		row, err := r.Read()
		if err != nil {
			break
		}
		if len(row) <= idCol || len(row) <= ratingCol || row[idCol] == "" {
			continue
		}
		rating, convErr := strconv.ParseFloat(row[ratingCol], 64)
		if convErr != nil {
			rating = -1
		}
		out = append(out, domain.RatedID{ID: row[idCol], Rating: rating})
	}
	return out, nil
}

func readAll(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: read %q: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[1:], nil // drop header
}
