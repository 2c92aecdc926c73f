package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"docgen/internal/domain"
)

var (
	bucketResponses   = []byte("responses")
	bucketJournal     = []byte("journal")
	bucketJournalPath = []byte("journal_by_path")
	bucketMeta        = []byte("meta")
)

type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		buckets := [][]byte{bucketResponses, bucketJournal, bucketJournalPath, bucketMeta}
		for _, b := range buckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) GetResponse(key string) (domain.CachedResponse, bool, error) {
	var resp domain.CachedResponse
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketResponses).Get([]byte(key))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &resp)
	})
	if err != nil {
		return domain.CachedResponse{}, false, fmt.Errorf("failed to read response %s: %w", key, err)
	}
	return resp, found, nil
}

func (s *BoltStore) PutResponse(key string, resp domain.CachedResponse) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(resp)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketResponses).Put([]byte(key), data)
	})
}

// ResponseCount returns the number of stored responses.
func (s *BoltStore) ResponseCount() (int, error) {
	n := 0
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketResponses).Stats().KeyN
		return nil
	})
	return n, err
}

// ForEachResponse calls fn for every stored response in key order. Returning
// an error from fn stops the iteration.
func (s *BoltStore) ForEachResponse(fn func(key string, resp domain.CachedResponse) error) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketResponses).ForEach(func(k, v []byte) error {
			var resp domain.CachedResponse
			if err := json.Unmarshal(v, &resp); err != nil {
				return fmt.Errorf("failed to decode response %s: %w", k, err)
			}
			return fn(string(k), resp)
		})
	})
}

// RecordJournal saves the content of path before and after a run. Only the
// latest entry per path is kept.
func (s *BoltStore) RecordJournal(path, before, after string) (string, error) {
	entry := domain.JournalEntry{
		ID:        uuid.NewString(),
		Path:      path,
		Before:    before,
		After:     after,
		CreatedAt: time.Now(),
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		journal := tx.Bucket(bucketJournal)
		byPath := tx.Bucket(bucketJournalPath)

		if old := byPath.Get([]byte(path)); old != nil {
			if err := journal.Delete(old); err != nil {
				return err
			}
		}

		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		if err := journal.Put([]byte(entry.ID), data); err != nil {
			return err
		}
		return byPath.Put([]byte(path), []byte(entry.ID))
	})
	if err != nil {
		return "", fmt.Errorf("failed to record journal for %s: %w", path, err)
	}
	return entry.ID, nil
}

func (s *BoltStore) LatestJournal(path string) (domain.JournalEntry, error) {
	var entry domain.JournalEntry
	err := s.db.View(func(tx *bbolt.Tx) error {
		id := tx.Bucket(bucketJournalPath).Get([]byte(path))
		if id == nil {
			return fmt.Errorf("%w for %s", domain.ErrNoJournalEntry, path)
		}
		data := tx.Bucket(bucketJournal).Get(id)
		if data == nil {
			return fmt.Errorf("%w for %s", domain.ErrNoJournalEntry, path)
		}
		return json.Unmarshal(data, &entry)
	})
	return entry, err
}

func (s *BoltStore) DeleteJournal(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		journal := tx.Bucket(bucketJournal)
		data := journal.Get([]byte(id))
		if data == nil {
			return nil
		}

		var entry domain.JournalEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return err
		}
		byPath := tx.Bucket(bucketJournalPath)
		if current := byPath.Get([]byte(entry.Path)); string(current) == id {
			if err := byPath.Delete([]byte(entry.Path)); err != nil {
				return err
			}
		}
		return journal.Delete([]byte(id))
	})
}
