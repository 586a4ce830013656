// Package history provides a Badger-backed local record of upload
// attempts. It is purely informational: an upload's outcome never
// depends on whether its history record could be written.
package history

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/jamesainslie/saveguard/pkg/saveguard/logging"
	"github.com/jamesainslie/saveguard/pkg/saveguard/types"
)

// keyPrefix namespaces upload records in the store.
const keyPrefix = "u:"

// logger is the package-level logger for history operations.
var logger = logging.Get("history")

// Record is one upload attempt.
type Record struct {
	ID            string    `json:"id"`
	GameName      string    `json:"game_name"`
	Timestamp     time.Time `json:"timestamp"`
	Success       bool      `json:"success"`
	Message       string    `json:"message"`
	UploadID      *string   `json:"upload_id,omitempty"`
	VersionNumber *int      `json:"version_number,omitempty"`
	SizeBytes     int64     `json:"size_bytes"`
}

// FromResult builds a Record from an upload result.
func FromResult(result types.UploadResult, sizeBytes int64) Record {
	return Record{
		ID:            uuid.NewString(),
		GameName:      result.GameName,
		Timestamp:     time.Now().UTC(),
		Success:       result.Success,
		Message:       result.Message,
		UploadID:      result.UploadID,
		VersionNumber: result.VersionNumber,
		SizeBytes:     sizeBytes,
	}
}

// Store is the upload-history store backed by Badger DB.
type Store struct {
	db *badger.DB
}

// Open opens or creates a store at the given path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening history store: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append stores a record. Keys embed the timestamp so iteration order is
// chronological.
func (s *Store) Append(record Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshaling history record: %w", err)
	}

	key := recordKey(record)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// AppendResults stores one record per upload result, logging and
// continuing on individual failures.
func (s *Store) AppendResults(results []types.UploadResult, sizes map[string]int64) {
	for _, result := range results {
		record := FromResult(result, sizes[result.GameName])
		if err := s.Append(record); err != nil {
			logger.Warn("writing history record failed", "game", result.GameName, "error", err)
		}
	}
}

// List returns records newest-first. If limit is 0 or negative, all
// records are returned.
func (s *Store) List(limit int) ([]Record, error) {
	var records []Record

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration starts just past the prefix range.
		seek := []byte(keyPrefix + "\xff")
		for it.Seek(seek); it.ValidForPrefix([]byte(keyPrefix)); it.Next() {
			if limit > 0 && len(records) >= limit {
				break
			}

			err := it.Item().Value(func(val []byte) error {
				var record Record
				if err := json.Unmarshal(val, &record); err != nil {
					// Skip records that can't be parsed
					return nil
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}

	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Prune removes records older than retentionDays.
func (s *Store) Prune(retentionDays int) error {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	var stale [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var record Record
				if err := json.Unmarshal(val, &record); err != nil {
					return nil
				}
				if record.Timestamp.Before(cutoff) {
					stale = append(stale, item.KeyCopy(nil))
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scanning history for pruning: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for _, key := range stale {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

// recordKey builds a chronologically sortable key for a record.
func recordKey(record Record) string {
	// Fixed-width timestamp so lexicographic key order is chronological.
	ts := record.Timestamp.UTC().Format("2006-01-02T15:04:05.000000000")
	// A short random suffix keeps same-instant records distinct.
	suffix := strings.SplitN(record.ID, "-", 2)[0]
	return fmt.Sprintf("%s%s-%s", keyPrefix, ts, suffix)
}
