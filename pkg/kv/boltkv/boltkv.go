// Package boltkv implements kv.Storage on top of a bbolt database file.
package boltkv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-paqs-store/pkg/kv"
	"go.etcd.io/bbolt"
)

// DefaultBucket holds every paqs key unless configured otherwise.
const DefaultBucket = "paqs"

// Options configures Open.
type Options struct {
	Bucket  string
	Timeout time.Duration
}

// Storage is a bbolt-backed kv.Storage.
type Storage struct {
	db     *bbolt.DB
	bucket []byte
}

var _ kv.Storage = (*Storage)(nil)

// Open opens (creating if needed) the database at path and ensures the bucket
// exists.
func Open(path string, opts Options) (*Storage, error) {
	if path == "" {
		return nil, errors.New("boltkv: path is required")
	}
	bucket := opts.Bucket
	if bucket == "" {
		bucket = DefaultBucket
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Second
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("boltkv: open %q: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
			return fmt.Errorf("boltkv: create bucket %q: %w", bucket, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Storage{db: db, bucket: []byte(bucket)}, nil
}

// Get reads key.
func (s *Storage) Get(_ context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, kv.ErrKeyRequired
	}
	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return nil
		}
		raw := b.Get([]byte(key))
		if raw == nil {
			return nil
		}
		value = string(raw)
		found = true
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("boltkv: get %q: %w", key, err)
	}
	return value, found, nil
}

// Set writes key.
func (s *Storage) Set(_ context.Context, key, value string) error {
	if key == "" {
		return kv.ErrKeyRequired
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("boltkv: set %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Missing keys are not an error.
func (s *Storage) Delete(_ context.Context, key string) error {
	if key == "" {
		return kv.ErrKeyRequired
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("boltkv: delete %q: %w", key, err)
	}
	return nil
}

// Keys lists every key in the bucket in byte order.
func (s *Storage) Keys() ([]string, error) {
	var keys []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("boltkv: keys: %w", err)
	}
	return keys, nil
}

// Close releases the database file.
func (s *Storage) Close() error {
	return s.db.Close()
}
