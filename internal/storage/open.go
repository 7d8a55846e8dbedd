package storage

import (
	"context"
	"io"

	"github.com/Skotchmaster/storefront/pkg/db"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type dbCloser struct{ close func() error }

func (c dbCloser) Close() error { return c.close() }

// Open picks redis when redisURL is set, otherwise a gorm-backed table at dsn.
// The returned closer releases the underlying connection.
func Open(ctx context.Context, dsn, redisURL string) (Storage, io.Closer, error) {
	if redisURL != "" {
		s, err := NewRedis(ctx, redisURL)
		if err != nil {
			return nil, nopCloser{}, err
		}
		return s, s, nil
	}

	gdb, err := db.Open(ctx, dsn)
	if err != nil {
		return nil, nopCloser{}, err
	}
	s, err := NewGorm(ctx, gdb)
	if err != nil {
		_ = db.Close(gdb)
		return nil, nopCloser{}, err
	}
	return s, dbCloser{close: func() error { return db.Close(gdb) }}, nil
}
