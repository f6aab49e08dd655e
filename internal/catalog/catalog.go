// Package catalog keeps a local record of completed backup runs.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

const runsBucket = "runs"

// Run status values.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Record describes one finished backup run.
type Record struct {
	RunID           string    `json:"run_id"`
	GuildID         string    `json:"guild_id"`
	GuildName       string    `json:"guild_name"`
	RequestedBy     string    `json:"requested_by"`
	Scope           string    `json:"scope"`
	Channels        int       `json:"channels"`
	ChannelsSkipped int       `json:"channels_skipped"`
	Messages        int       `json:"messages"`
	ArchivePath     string    `json:"archive_path,omitempty"`
	ArchiveBytes    int64     `json:"archive_bytes,omitempty"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
	Status          string    `json:"status"`
	Error           string    `json:"error,omitempty"`
}

// Store is a BoltDB-backed catalog of backup runs.
type Store struct {
	db     *bbolt.DB
	logger *zap.Logger
}

// Open creates or opens the catalog database at path, creating parent
// directories as needed. The open times out after a second when another
// process holds the file lock.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(runsBucket))

		return err
	})
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to create runs bucket: %w", err)
	}

	return &Store{
		db:     db,
		logger: logger.Named("catalog"),
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put appends a run record. Keys are <guildID>/<started unixnano>, so records
// for one guild sort chronologically under a common prefix.
func (s *Store) Put(rec Record) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(runsBucket))

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal run record: %w", err)
		}

		key := fmt.Sprintf("%s/%020d", rec.GuildID, rec.StartedAt.UnixNano())
		if err := bucket.Put([]byte(key), data); err != nil {
			return fmt.Errorf("failed to store run record: %w", err)
		}

		return nil
	})
}

// ListByGuild returns up to limit records for the guild, newest first.
// Records that fail to decode are skipped, not fatal.
func (s *Store) ListByGuild(guildID string, limit int) ([]Record, error) {
	var records []Record

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(runsBucket)).Cursor()
		prefix := []byte(guildID + "/")

		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				s.logger.Warn("Skipping corrupt catalog record",
					zap.String("key", string(k)),
					zap.Error(err),
				)

				continue
			}
			records = append(records, rec)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list runs for guild %s: %w", guildID, err)
	}

	// Keys iterate oldest first; callers want the most recent runs.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	return records, nil
}
