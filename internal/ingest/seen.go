// ABOUTME: Badger-backed cache of recently seen natural keys.
// ABOUTME: Sheds retry-storm re-deliveries; correctness comes from SQL upserts.
package ingest

import (
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v3"
)

// seenTTL is how long a natural key stays in the cache. Webhook retry
// storms resolve within hours; anything older hits the database upsert,
// which is a no-op for duplicates anyway.
const seenTTL = 48 * time.Hour

// SeenCache remembers natural keys of recently stored records.
type SeenCache struct {
	db *badger.DB
}

// OpenSeenCache opens (or creates) the cache at the given path.
func OpenSeenCache(path string) (*SeenCache, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open seen cache: %w", err)
	}
	return &SeenCache{db: db}, nil
}

// Seen reports whether a natural key was recently stored. Errors are
// treated as "not seen": a cache miss only costs one no-op upsert.
func (c *SeenCache) Seen(key string) bool {
	if c == nil {
		return false
	}
	err := c.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		return err
	})
	return err == nil
}

// Mark records a natural key as stored.
func (c *SeenCache) Mark(key string) {
	if c == nil {
		return
	}
	_ = c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), nil).WithTTL(seenTTL)
		return txn.SetEntry(e)
	})
}

// Close closes the underlying badger database.
func (c *SeenCache) Close() error {
	if c == nil {
		return nil
	}
	return c.db.Close()
}
