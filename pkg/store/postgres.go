package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);`

// Postgres is a Store backed by a kv table in a PostgreSQL database, for
// deployments where several web instances share one fallback store.
type Postgres struct {
	db  *sql.DB
	now func() time.Time
}

var _ Store = (*Postgres)(nil)

// OpenPostgres connects with a lib/pq connection string and creates the kv
// table when missing.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, errors.New("store: postgres dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &Postgres{db: db, now: time.Now}, nil
}

func (p *Postgres) Put(ctx context.Context, key string, value []byte) error {
	if p == nil || p.db == nil {
		return ErrClosed
	}
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, value, p.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("store: put %q: %w", key, err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if p == nil || p.db == nil {
		return nil, false, ErrClosed
	}
	var value []byte
	err := p.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: get %q: %w", key, err)
	}
	return value, true, nil
}

func (p *Postgres) Delete(ctx context.Context, key string) error {
	if p == nil || p.db == nil {
		return ErrClosed
	}
	if _, err := p.db.ExecContext(ctx, `DELETE FROM kv WHERE key = $1`, key); err != nil {
		return fmt.Errorf("store: delete %q: %w", key, err)
	}
	return nil
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}
