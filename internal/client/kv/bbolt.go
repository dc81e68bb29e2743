package kv

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/strapiclient/internal/filex"
	"go.etcd.io/bbolt"
)

var sessionBucket = []byte("session")

// BBoltStore keeps entries in a single bucket of a bbolt file.
type BBoltStore struct {
	db *bbolt.DB
}

var _ Store = (*BBoltStore)(nil)

// NewBBoltStore wraps an open database, creating the bucket if needed.
func NewBBoltStore(db *bbolt.DB) (*BBoltStore, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating bucket: %w", err)
	}
	return &BBoltStore{db: db}, nil
}

// OpenBBolt opens the database file at path. A second process holding the
// file makes this fail after a short timeout instead of blocking forever.
func OpenBBolt(path string) (*BBoltStore, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: bbolt path is empty", ErrInvalidDSN)
	}
	if err := filex.EnsureParentDir(path); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	s, err := NewBBoltStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *BBoltStore) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(sessionBucket).Get([]byte(key))
		if data != nil {
			// data is only valid inside the transaction
			value = append([]byte(nil), data...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

func (s *BBoltStore) Set(_ context.Context, key string, value []byte) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionBucket).Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *BBoltStore) Delete(_ context.Context, key string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionBucket).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *BBoltStore) Close() error {
	return s.db.Close()
}
