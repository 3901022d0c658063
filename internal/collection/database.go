package collection

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"cointracker/internal/catalog"
	"cointracker/internal/normalize"
)

const (
	ownershipBucketName = "ownership"
	eventBucketName     = "events"
)

// SubmissionEvent is one audit entry: what the collector submitted
// and how it resolved. Events never influence resolution; they exist
// so the collection history can be reconstructed.
type SubmissionEvent struct {
	ID          string          `json:"id"`
	At          time.Time       `json:"at"`
	Guess       normalize.Guess `json:"guess"`
	Status      Status          `json:"status"`
	VariantKey  string          `json:"variant_key,omitempty"`
	AsDuplicate bool            `json:"as_duplicate,omitempty"`
}

// DB defines the persistence operations the ledger and service need.
type DB interface {
	// SaveRecord durably stores the ownership record for a variant key.
	SaveRecord(key string, rec *catalog.OwnershipRecord) error

	// ListRecords returns every stored ownership record by variant key.
	ListRecords() (map[string]*catalog.OwnershipRecord, error)

	// SaveEvent appends a submission audit entry.
	SaveEvent(ev *SubmissionEvent) error

	// ListEvents returns all audit entries in insertion order.
	ListEvents() ([]*SubmissionEvent, error)

	// Close closes the database.
	Close() error
}

// BoltDB implements DB on a bbolt file.
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB opens (or creates) the database file and its buckets.
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(ownershipBucketName)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(eventBucketName)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// SaveRecord stores one ownership record.
func (b *BoltDB) SaveRecord(key string, rec *catalog.OwnershipRecord) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(ownershipBucketName))
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling ownership record: %w", err)
		}
		return bucket.Put([]byte(key), data)
	})
}

// ListRecords returns all stored ownership records.
func (b *BoltDB) ListRecords() (map[string]*catalog.OwnershipRecord, error) {
	records := make(map[string]*catalog.OwnershipRecord)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(ownershipBucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var rec catalog.OwnershipRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("unmarshaling ownership record %s: %w", k, err)
			}
			records[string(k)] = &rec
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// SaveEvent appends one audit entry, keyed by timestamp then ID so a
// bucket cursor walks events chronologically.
func (b *BoltDB) SaveEvent(ev *SubmissionEvent) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(eventBucketName))
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshaling event: %w", err)
		}
		key := fmt.Sprintf("%020d/%s", ev.At.UnixNano(), ev.ID)
		return bucket.Put([]byte(key), data)
	})
}

// ListEvents returns all audit entries, oldest first.
func (b *BoltDB) ListEvents() ([]*SubmissionEvent, error) {
	events := make([]*SubmissionEvent, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(eventBucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var ev SubmissionEvent
			if err := json.Unmarshal(v, &ev); err != nil {
				return fmt.Errorf("unmarshaling event %s: %w", k, err)
			}
			events = append(events, &ev)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// Close closes the database file.
func (b *BoltDB) Close() error {
	return b.db.Close()
}
