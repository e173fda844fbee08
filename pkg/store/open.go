package store

import (
	"context"
	"io"
	"strings"
)

// MemoryDSN selects the in-memory store.
const MemoryDSN = "memory"

// Open picks a store from dsn: "memory" for an in-process store,
// postgres:// or postgresql:// URLs for PostgreSQL, anything else is a SQLite
// file path. The returned closer is a no-op for the memory store.
func Open(ctx context.Context, dsn string) (Store, io.Closer, error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == MemoryDSN:
		return NewMemory(), nopCloser{}, nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		pg, err := OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg, nil
	default:
		lite, err := OpenSQLite(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return lite, lite, nil
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
