package ware_cache

import (
	"context"
	"errors"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache is a byte-value key-value store with per-entry TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

func NewBadgerCache(dir string) (*badgerCache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &badgerCache{db: db}, nil
}

// NewMemoryCache opens a badger instance that lives only in memory. Used by
// tests and by deployments without a writable cache dir.
func NewMemoryCache() (*badgerCache, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &badgerCache{db: db}, nil
}

type badgerCache struct {
	db *badger.DB
}

// Get implements Cache.
func (c *badgerCache) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrCacheMiss
			}
			return err
		}

		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

// Set implements Cache.
func (c *badgerCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Delete implements Cache.
func (c *badgerCache) Delete(ctx context.Context, key string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Close implements Cache.
func (c *badgerCache) Close() error {
	return c.db.Close()
}
