package storage

import (
	"context"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/abhisheknishant138/scope/internal/errors"
)

const boltBucket = "view_state"

// BoltStore is a Store backed by a bbolt database file.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens (creating if needed) the bbolt database at path.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.New("E111").WithDetail("opening " + path).Wrap(err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.New("E110").Wrap(err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Get(_ context.Context, key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(boltBucket)).Get([]byte(key)); v != nil {
			value, found = string(v), true
		}
		return nil
	})
	if err != nil {
		return "", false, errors.New("E111").Wrap(err)
	}
	return value, found, nil
}

func (s *BoltStore) Set(_ context.Context, key, value string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(boltBucket)).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return errors.New("E110").Wrap(err)
	}
	return nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
