package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStores(t *testing.T) {
	ctx := context.Background()

	sqlite, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "fallback.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	stores := map[string]Store{
		"memory": NewMemory(),
		"sqlite": sqlite,
	}

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get(ctx, BackupKey)
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, s.Put(ctx, BackupKey, []byte(`{"email":"a@example.com"}`)))
			require.NoError(t, s.Put(ctx, BackupKey, []byte(`{"email":"b@example.com"}`)))

			got, ok, err := s.Get(ctx, BackupKey)
			require.NoError(t, err)
			require.True(t, ok)
			require.JSONEq(t, `{"email":"b@example.com"}`, string(got))

			require.NoError(t, s.Delete(ctx, BackupKey))
			_, ok, err = s.Get(ctx, BackupKey)
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestSQLite_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fallback.db")

	first, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Put(ctx, "k", []byte("v")))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer second.Close()

	got, ok, err := second.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", string(got))
}

func TestSQLite_ClosedAndMissingPath(t *testing.T) {
	ctx := context.Background()
	_, err := OpenSQLite(ctx, "")
	require.Error(t, err)

	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.ErrorIs(t, s.Put(ctx, "k", nil), ErrClosed)
}

func TestMemory_CopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	value := []byte("abc")
	require.NoError(t, m.Put(ctx, "k", value))
	value[0] = 'z'

	got, _, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(got))
}

func TestOpen_SelectsBackend(t *testing.T) {
	ctx := context.Background()

	s, closer, err := Open(ctx, MemoryDSN)
	require.NoError(t, err)
	require.IsType(t, &Memory{}, s)
	require.NoError(t, closer.Close())

	s, closer, err = Open(ctx, filepath.Join(t.TempDir(), "open.db"))
	require.NoError(t, err)
	require.IsType(t, &SQLite{}, s)
	require.NoError(t, closer.Close())

	_, _, err = Open(ctx, "")
	require.Error(t, err)
}

func TestPostgres(t *testing.T) {
	dsn := os.Getenv("DIAGNOSTIC_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("DIAGNOSTIC_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	s, closer, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer closer.Close()
	require.IsType(t, &Postgres{}, s)

	require.NoError(t, s.Put(ctx, "pg-test", []byte("one")))
	require.NoError(t, s.Put(ctx, "pg-test", []byte("two")))
	got, ok, err := s.Get(ctx, "pg-test")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "two", string(got))
	require.NoError(t, s.Delete(ctx, "pg-test"))
}
