// Package kv is the persistent key-value area the credential can be kept in
// between runs. Several drivers share one small interface so the token store
// does not care where the bytes end up.
package kv

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/strapiclient/internal/common"
)

// Store is a flat byte-oriented key-value area.
//
// Get returns (nil, nil) for a missing key. Delete of a missing key is a no-op.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Supported driver names for Open.
const (
	DriverSQLite = "sqlite"
	DriverBBolt  = "bbolt"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Open builds a Store for the named driver. dsn is a file path for sqlite and
// bbolt, a redis:// URL for redis, and ignored for memory.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverSQLite, "sqlite3", "":
		return OpenSQLite(ctx, dsn)
	case DriverBBolt, "bolt":
		return OpenBBolt(dsn)
	case DriverRedis:
		return OpenRedis(ctx, dsn)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: unknown kv driver %q", common.ErrInvalidArgument, driver)
	}
}
