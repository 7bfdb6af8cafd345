// Package cache persists discovery results between runs so repeat lookups
// for the same company skip the network, and deduplicates candidate probes
// within a batch run.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketResults = []byte("results")

// Store is a BoltDB-backed cache of serialized discovery results, keyed by
// normalized company name.
type Store struct {
	db   *bolt.DB
	path string
	ttl  time.Duration
}

// envelope wraps cached data with its save time for TTL checks.
type envelope struct {
	SavedAt time.Time       `json:"saved_at"`
	Data    json.RawMessage `json:"data"`
}

// Open opens (creating if needed) the cache database at path. A ttl of zero
// means entries never expire.
func Open(path string, ttl time.Duration) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{
		Timeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketResults)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &Store{db: db, path: path, ttl: ttl}, nil
}

// Put stores serialized result data for a company key.
func (s *Store) Put(key string, data []byte) error {
	env, err := json.Marshal(envelope{
		SavedAt: time.Now(),
		Data:    data,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketResults)
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		return b.Put([]byte(key), env)
	})
}

// Get returns the cached data for a key, or ok=false when absent or expired.
// Expired entries are left in place; Prune removes them.
func (s *Store) Get(key string) (data []byte, savedAt time.Time, ok bool, err error) {
	var env envelope
	var found bool

	err = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketResults)
		if b == nil {
			return fmt.Errorf("bucket not found")
		}

		raw := b.Get([]byte(key))
		if raw == nil {
			return nil
		}

		found = true
		return json.Unmarshal(raw, &env)
	})
	if err != nil || !found {
		return nil, time.Time{}, false, err
	}

	if s.ttl > 0 && time.Since(env.SavedAt) > s.ttl {
		return nil, time.Time{}, false, nil
	}

	return env.Data, env.SavedAt, true, nil
}

// Delete removes a cached entry.
func (s *Store) Delete(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketResults)
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		return b.Delete([]byte(key))
	})
}

// Keys lists all cached company keys.
func (s *Store) Keys() ([]string, error) {
	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketResults)
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		return b.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}

// Prune removes expired entries and returns how many were dropped.
func (s *Store) Prune() (int, error) {
	if s.ttl <= 0 {
		return 0, nil
	}

	pruned := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketResults)
		if b == nil {
			return fmt.Errorf("bucket not found")
		}

		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var env envelope
			if err := json.Unmarshal(v, &env); err != nil {
				stale = append(stale, append([]byte(nil), k...))
				return nil
			}
			if time.Since(env.SavedAt) > s.ttl {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
			pruned++
		}
		return nil
	})
	return pruned, err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
