package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/fut-harvester/internal/domain"
)

// PostgresMirror optionally mirrors the record archive into Postgres so
// downstream analysis can query records without touching the data dir.
// Insert-only, matching the archive's write-once contract.
type PostgresMirror struct {
	db *pgxpool.Pool
}

func NewPostgresMirror(connStr string) (*PostgresMirror, error) {
	db, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return &PostgresMirror{db: db}, nil
}

func (m *PostgresMirror) Ping(ctx context.Context) error {
	return m.db.Ping(ctx)
}

// SavePlayer inserts a record keyed by player id. An id already present
// is left untouched.
func (m *PostgresMirror) SavePlayer(ctx context.Context, p *domain.Player) error {
	data, err := json.Marshal(p.Fields)
	if err != nil {
		return err
	}
	_, err = m.db.Exec(ctx,
		`INSERT INTO players (id, record) VALUES ($1, $2)
		 ON CONFLICT (id) DO NOTHING`,
		p.ID, data,
	)
	return err
}

func (m *PostgresMirror) Close() {
	m.db.Close()
}
