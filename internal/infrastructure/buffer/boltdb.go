package buffer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	pendingBucket = []byte("commands")
	deadBucket    = []byte("dead_letters")
)

// Store persists deferred commands in a BoltDB file. Pending items are keyed
// by priority then enqueue time, so a cursor walk yields drain order.
type Store struct {
	db *bolt.DB
}

// Open initializes the BoltDB file and ensures both buckets exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open buffer: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{pendingBucket, deadBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Enqueue stores a pending item.
func (s *Store) Enqueue(item Item) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	item.normalize()
	return s.db.Update(func(tx *bolt.Tx) error {
		return put(tx.Bucket(pendingBucket), item)
	})
}

// Batch returns up to limit pending items in drain order without removing them.
func (s *Store) Batch(limit int) ([]Item, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 50
	}
	var items []Item
	err := s.db.View(func(tx *bolt.Tx) error {
		items = scan(tx.Bucket(pendingBucket), limit)
		return nil
	})
	return items, err
}

// Ack removes a successfully replayed item.
func (s *Store) Ack(item Item) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(pendingBucket).Delete(keyOf(item))
	})
}

// Retry records a failed replay. Once retries reach maxRetries the item is
// moved to the dead-letter bucket and Retry reports true.
func (s *Store) Retry(item Item, cause error, maxRetries int) (bool, error) {
	if s == nil || s.db == nil {
		return false, bolt.ErrDatabaseNotOpen
	}
	dead := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		pending := tx.Bucket(pendingBucket)
		if err := pending.Delete(keyOf(item)); err != nil {
			return err
		}
		item.Retries++
		item.bucketKey = nil
		if cause != nil {
			item.LastError = cause.Error()
		}
		if maxRetries > 0 && item.Retries >= maxRetries {
			dead = true
			return put(tx.Bucket(deadBucket), item)
		}
		item.Timestamp = time.Now().UTC()
		return put(pending, item)
	})
	return dead, err
}

// DeadLetters returns up to limit items that exhausted their retries.
func (s *Store) DeadLetters(limit int) ([]Item, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	var items []Item
	err := s.db.View(func(tx *bolt.Tx) error {
		items = scan(tx.Bucket(deadBucket), limit)
		return nil
	})
	return items, err
}

// Stats counts pending and dead items.
func (s *Store) Stats() (Stats, error) {
	if s == nil || s.db == nil {
		return Stats{}, bolt.ErrDatabaseNotOpen
	}
	var st Stats
	err := s.db.View(func(tx *bolt.Tx) error {
		st.Pending = tx.Bucket(pendingBucket).Stats().KeyN
		st.Dead = tx.Bucket(deadBucket).Stats().KeyN
		return nil
	})
	return st, err
}

// Cleanup drops items of both buckets enqueued before olderThan and returns
// how many were removed.
func (s *Store) Cleanup(olderThan time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{pendingBucket, deadBucket} {
			var stale [][]byte
			c := tx.Bucket(name).Cursor()
			for k, v := c.First(); k != nil; k, v = c.Next() {
				var item Item
				if err := json.Unmarshal(v, &item); err != nil || item.Timestamp.Before(olderThan) {
					stale = append(stale, append([]byte(nil), k...))
				}
			}
			for _, k := range stale {
				if err := tx.Bucket(name).Delete(k); err != nil {
					return err
				}
			}
			removed += len(stale)
		}
		return nil
	})
	return removed, err
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func put(b *bolt.Bucket, item Item) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return b.Put(buildKey(item), payload)
}

func scan(b *bolt.Bucket, limit int) []Item {
	var items []Item
	c := b.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		if limit > 0 && len(items) >= limit {
			break
		}
		var item Item
		if err := json.Unmarshal(v, &item); err != nil {
			continue
		}
		item.bucketKey = append([]byte(nil), k...)
		items = append(items, item)
	}
	return items
}

func keyOf(item Item) []byte {
	if len(item.bucketKey) > 0 {
		return item.bucketKey
	}
	return buildKey(item)
}

func buildKey(item Item) []byte {
	return []byte(fmt.Sprintf("%d_%020d_%s", item.Priority, item.Timestamp.UnixNano(), item.ID))
}
