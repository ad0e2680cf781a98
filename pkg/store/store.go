package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/adfharrison1/go-tripdb/pkg/domain"
	"github.com/adfharrison1/go-tripdb/pkg/metrics"
	"github.com/adfharrison1/go-tripdb/pkg/query"
	"go.uber.org/zap"
)

// Store is the in-memory working copy of one collection. Every mutation is
// written through to the backend before the copy changes.
type Store struct {
	backend    domain.Backend
	collection string

	mu      sync.RWMutex
	records []domain.Record
}

// Open loads collection from backend. A collection that does not exist yet is
// empty and nothing is written.
func Open(ctx context.Context, backend domain.Backend, collection string) (*Store, error) {
	if err := domain.ValidateCollectionName(collection); err != nil {
		return nil, err
	}
	s := &Store{backend: backend, collection: collection}
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Collection returns the collection name
func (s *Store) Collection() string {
	return s.collection
}

// Load replaces the working copy with the persisted collection
func (s *Store) Load(ctx context.Context) error {
	records, err := s.backend.Read(ctx, s.collection, nil)
	if err != nil {
		return fmt.Errorf("failed to load collection %s: %w", s.collection, err)
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()

	metrics.SetRecords(s.collection, len(records))
	zap.S().Infof("Loaded collection '%s' with %d records", s.collection, len(records))
	return nil
}

// Snapshot returns a copy of every record in collection order
func (s *Store) Snapshot() []domain.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Record, len(s.records))
	for i, rec := range s.records {
		out[i] = rec.Clone()
	}
	return out
}

// Len returns the number of records
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Get returns the record with id
func (s *Store) Get(id string) (domain.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.records[i].Clone(), true
	}
	return nil, false
}

// Query runs q over a snapshot of the collection
func (s *Store) Query(q query.Query) query.ResultSet {
	metrics.IncQuery(s.collection)
	return query.Execute(s.Snapshot(), q)
}

// Append persists a new record and adds it to the end of the collection.
// The backend assigns id and created_at when they are absent.
func (s *Store) Append(ctx context.Context, record domain.Record) (domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := s.backend.Insert(ctx, s.collection, record)
	metrics.IncWrite(s.collection, "insert", err)
	if err != nil {
		return nil, err
	}
	s.records = append(s.records, created)
	metrics.SetRecords(s.collection, len(s.records))
	return created.Clone(), nil
}

// Upsert merges record into the first one whose conflictKey matches, or
// appends it when none does
func (s *Store) Upsert(ctx context.Context, record domain.Record, conflictKey string) (domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.backend.Upsert(ctx, s.collection, record, conflictKey)
	metrics.IncWrite(s.collection, "upsert", err)
	if err != nil {
		return nil, err
	}
	if i := s.indexOf(result.ID()); i >= 0 {
		s.records[i] = result
	} else {
		s.records = append(s.records, result)
	}
	metrics.SetRecords(s.collection, len(s.records))
	return result.Clone(), nil
}

// Update merges patch into the record with id. A missing id is a no-op and
// reports false; the id itself is never changed.
func (s *Store) Update(ctx context.Context, id string, patch domain.Record) (domain.Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, false, nil
	}

	updated, err := s.backend.Update(ctx, s.collection, domain.FieldID, id, patch)
	metrics.IncWrite(s.collection, "update", err)
	if err != nil {
		return nil, false, err
	}
	if len(updated) == 0 {
		// The persisted collection no longer holds the record
		zap.S().Warnf("Record '%s' missing from persisted collection '%s', dropping it", id, s.collection)
		s.records = append(s.records[:i], s.records[i+1:]...)
		metrics.SetRecords(s.collection, len(s.records))
		return nil, false, nil
	}
	s.records[i] = updated[0]
	return updated[0].Clone(), true, nil
}

// Remove deletes the record with id and reports whether it existed. Removing a
// missing id is a no-op.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}

	_, err := s.backend.Delete(ctx, s.collection, domain.FieldID, id)
	metrics.IncWrite(s.collection, "delete", err)
	if err != nil {
		return false, err
	}
	s.records = append(s.records[:i], s.records[i+1:]...)
	metrics.SetRecords(s.collection, len(s.records))
	return true, nil
}

// Reset clears the collection
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.backend.Reset(ctx, s.collection)
	metrics.IncWrite(s.collection, "reset", err)
	if err != nil {
		return err
	}
	s.records = []domain.Record{}
	metrics.SetRecords(s.collection, 0)
	zap.S().Infof("Reset collection '%s'", s.collection)
	return nil
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, rec := range s.records {
		if rec.ID() == id {
			return i
		}
	}
	return -1
}
