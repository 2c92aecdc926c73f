package store

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"
)

// CurrentSchemaVersion is the current schema version.
// Increment this when making breaking changes to the storage format.
const CurrentSchemaVersion = 1

var keySchemaVersion = []byte("schema_version")

// SchemaVersion returns the stored version, 0 for a fresh database.
func (s *BoltStore) SchemaVersion() (int, error) {
	version := 0
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketMeta).Get(keySchemaVersion)
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &version); err != nil {
			version = 0
		}
		return nil
	})
	return version, err
}

func (s *BoltStore) setSchemaVersion(version int) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(version)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put(keySchemaVersion, data)
	})
}

// MigrationResult describes the result of a migration check.
type MigrationResult struct {
	OldVersion    int
	NewVersion    int
	ClearedCached bool
	Reason        string
}

// Migrate brings the database to CurrentSchemaVersion. Cached responses are
// dropped whenever the version changes; the journal is kept so undo keeps
// working across upgrades.
func (s *BoltStore) Migrate() (*MigrationResult, error) {
	version, err := s.SchemaVersion()
	if err != nil {
		return nil, fmt.Errorf("failed to get schema version: %w", err)
	}

	result := &MigrationResult{OldVersion: version, NewVersion: CurrentSchemaVersion}
	if version == CurrentSchemaVersion {
		return result, nil
	}

	switch {
	case version == 0:
		result.Reason = "initializing schema version"
	case version < CurrentSchemaVersion:
		result.Reason = fmt.Sprintf("schema upgrade from v%d to v%d", version, CurrentSchemaVersion)
	default:
		result.Reason = fmt.Sprintf("database created by newer version (v%d > v%d)", version, CurrentSchemaVersion)
	}

	if version != 0 {
		if err := s.ClearResponses(); err != nil {
			return nil, fmt.Errorf("failed to clear responses: %w", err)
		}
		result.ClearedCached = true
	}

	if err := s.setSchemaVersion(CurrentSchemaVersion); err != nil {
		return nil, err
	}
	return result, nil
}

// ClearResponses removes every cached response.
func (s *BoltStore) ClearResponses() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketResponses); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketResponses)
		return err
	})
}
