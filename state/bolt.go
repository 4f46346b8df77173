package state

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

// BoltStore implements StateStore on a single bbolt bucket.
type BoltStore struct {
	db     *bolt.DB
	bucket []byte
	closed atomic.Bool
}

// BoltStoreConfig holds bbolt store configuration.
type BoltStoreConfig struct {
	// Path is the database file. Parent directories are created.
	Path string

	// Bucket is the bucket holding all keys.
	// Default: "tasklist"
	Bucket string

	// Timeout bounds how long Open waits for the file lock held by
	// another process.
	// Default: 1s
	Timeout time.Duration
}

// DefaultBoltStoreConfig returns configuration with sensible defaults.
func DefaultBoltStoreConfig() BoltStoreConfig {
	return BoltStoreConfig{
		Bucket:  "tasklist",
		Timeout: time.Second,
	}
}

// NewBoltStore opens (or creates) a bbolt database.
func NewBoltStore(cfg BoltStoreConfig) (*BoltStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("bolt path required")
	}
	if cfg.Bucket == "" {
		cfg.Bucket = DefaultBoltStoreConfig().Bucket
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultBoltStoreConfig().Timeout
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
		return nil, fmt.Errorf("create bolt dir: %w", err)
	}

	db, err := bolt.Open(cfg.Path, 0o600, &bolt.Options{Timeout: cfg.Timeout})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", cfg.Path, err)
	}

	bucket := []byte(cfg.Bucket)
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bolt bucket: %w", err)
	}

	return &BoltStore{db: db, bucket: bucket}, nil
}

// Get retrieves a value by key.
func (s *BoltStore) Get(key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if s.closed.Load() {
		return nil, ErrClosed
	}

	var val []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bucket).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		// v is only valid inside the transaction
		val = make([]byte, len(v))
		copy(val, v)
		return nil
	})
	if err != nil {
		if err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("bolt get: %w", err)
	}
	return val, nil
}

// Put stores a value.
func (s *BoltStore) Put(key string, value []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("bolt put: %w", err)
	}
	return nil
}

// Delete removes a key.
func (s *BoltStore) Delete(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("bolt delete: %w", err)
	}
	return nil
}

// Keys returns all keys matching a pattern in byte order.
func (s *BoltStore) Keys(pattern string) ([]string, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).ForEach(func(k, _ []byte) error {
			if MatchPattern(pattern, string(k)) {
				keys = append(keys, string(k))
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("bolt keys: %w", err)
	}
	return keys, nil
}

// Path returns the database file path.
func (s *BoltStore) Path() string {
	return s.db.Path()
}

// Close closes the database file.
func (s *BoltStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}
