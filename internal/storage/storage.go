// Package storage persists prediction records per user. It uses BoltDB as
// the underlying storage engine with a single bucket keyed by
// "userID/recordID".
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"parkinson-insight/internal/common"
)

var (
	// ErrNotFound is returned when a record does not exist for the user.
	ErrNotFound = errors.New("prediction record not found")
	// ErrInvalidUserID is returned for empty user ids or ids containing '/'.
	ErrInvalidUserID = errors.New("invalid user id")
)

// RecordKind says which operation produced a record.
type RecordKind string

const (
	KindSingle   RecordKind = "single"
	KindEnsemble RecordKind = "ensemble"
	KindClinical RecordKind = "clinical"
)

// PredictionRecord is one stored prediction. Features and Result hold the
// JSON the service received and returned, so the store does not depend on
// the scoring types.
type PredictionRecord struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Timestamp time.Time       `json:"timestamp"`
	Kind      RecordKind      `json:"kind"`
	Model     string          `json:"model"`
	Features  json.RawMessage `json:"features"`
	Result    json.RawMessage `json:"result"`
}

// Store provides persistent storage for prediction records using BoltDB.
type Store struct {
	db *bbolt.DB
}

// New opens (or creates) the database under dataPath.
func New(dataPath string) (*Store, error) {
	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataPath, common.DatabaseFile)

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(common.PredictionsBucket)); err != nil {
			return fmt.Errorf("create predictions bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database. Closing twice is safe.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SavePrediction stores rec, overwriting any record with the same id.
func (s *Store) SavePrediction(rec PredictionRecord) error {
	if err := validateUserID(rec.UserID); err != nil {
		return err
	}
	if rec.ID == "" {
		return fmt.Errorf("record id is required")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal prediction record: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(common.PredictionsBucket))
		return b.Put(recordKey(rec.UserID, rec.ID), data)
	})
}

// GetPrediction returns one record or ErrNotFound.
func (s *Store) GetPrediction(userID, id string) (PredictionRecord, error) {
	if err := validateUserID(userID); err != nil {
		return PredictionRecord{}, err
	}

	var rec PredictionRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(common.PredictionsBucket)).Get(recordKey(userID, id))
		if v == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(v, &rec); err != nil {
			return fmt.Errorf("unmarshal prediction record: %w", err)
		}
		return nil
	})
	return rec, err
}

// ListPredictions returns the user's records newest first. A limit of zero
// or less returns all of them. Malformed records are skipped.
func (s *Store) ListPredictions(userID string, limit int) ([]PredictionRecord, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	var records []PredictionRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(common.PredictionsBucket)).Cursor()
		prefix := userPrefix(userID)

		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var rec PredictionRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				continue
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Timestamp.Equal(records[j].Timestamp) {
			return records[i].Timestamp.After(records[j].Timestamp)
		}
		return records[i].ID > records[j].ID
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// DeletePrediction removes one record or returns ErrNotFound.
func (s *Store) DeletePrediction(userID, id string) error {
	if err := validateUserID(userID); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(common.PredictionsBucket))
		key := recordKey(userID, id)
		if b.Get(key) == nil {
			return ErrNotFound
		}
		return b.Delete(key)
	})
}

// CountPredictions returns how many records the user has.
func (s *Store) CountPredictions(userID string) (int, error) {
	if err := validateUserID(userID); err != nil {
		return 0, err
	}

	n := 0
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(common.PredictionsBucket)).Cursor()
		prefix := userPrefix(userID)
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			n++
		}
		return nil
	})
	return n, err
}

func validateUserID(userID string) error {
	if userID == "" || strings.Contains(userID, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidUserID, userID)
	}
	return nil
}

func userPrefix(userID string) []byte {
	return []byte(userID + "/")
}

func recordKey(userID, id string) []byte {
	return []byte(userID + "/" + id)
}
