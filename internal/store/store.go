package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mxcd/journalfiles/internal/model"
	cache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
)

const (
	recordKeyFmt    = "%s:%s"
	cleanupInterval = time.Minute
)

// RecordStore looks up journal and submission records.
//
// Return semantics of GetRecord:
//   - (record, nil) when found
//   - (nil, err wrapping model.ErrRecordNotFound) when no record exists
//   - (nil, err) on backend failure
type RecordStore interface {
	GetRecord(ctx context.Context, collection model.Collection, id string) (*model.Record, error)
}

// MemoryStore is an in-memory RecordStore backed by patrickmn/go-cache.
// Records never expire; it serves development setups and tests.
type MemoryStore struct {
	records *cache.Cache
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: cache.New(cache.NoExpiration, cleanupInterval),
	}
}

// recordKey returns the cache key for a record of the given collection.
func recordKey(collection model.Collection, id string) string {
	return fmt.Sprintf(recordKeyFmt, collection, id)
}

// PutRecord stores or replaces a record. Records without an ID get a new UUID.
func (s *MemoryStore) PutRecord(record *model.Record) error {
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if record.Collection == "" {
		return fmt.Errorf("record %q has no collection", record.ID)
	}
	if record.ID == "" {
		record.ID = model.NewRecordID()
	}
	now := time.Now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	// Store a copy so later mutations by the caller are not observed by readers.
	stored := *record
	log.Debug().Str("record_id", record.ID).Str("collection", string(record.Collection)).Msg("store: putting record")
	s.records.Set(recordKey(record.Collection, record.ID), &stored, cache.NoExpiration)
	return nil
}

// GetRecord implements RecordStore. The returned record is a copy.
func (s *MemoryStore) GetRecord(_ context.Context, collection model.Collection, id string) (*model.Record, error) {
	v, found := s.records.Get(recordKey(collection, id))
	if !found {
		return nil, fmt.Errorf("%w: %s %s", model.ErrRecordNotFound, collection.Singular(), id)
	}
	record := *v.(*model.Record)
	return &record, nil
}

// Count returns the number of stored records.
func (s *MemoryStore) Count() int {
	return s.records.ItemCount()
}

// LoadSeedFile reads a JSON array of records into the store.
func (s *MemoryStore) LoadSeedFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	var records []*model.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("decode seed file: %w", err)
	}
	for _, record := range records {
		if err := s.PutRecord(record); err != nil {
			return fmt.Errorf("seed record: %w", err)
		}
	}
	log.Info().Str("path", path).Int("records", len(records)).Msg("store: seed file loaded")
	return nil
}
