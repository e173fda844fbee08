package store

import (
	"context"
	"errors"
)

// BackupKey is the fixed key the fallback snapshot is written under.
const BackupKey = "diagnostic_backup"

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("store: closed")

// Store persists opaque values under string keys. Put overwrites.
type Store interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error
}
