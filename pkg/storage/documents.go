package storage

import (
	"context"
	"fmt"

	"github.com/adfharrison1/go-tripdb/pkg/domain"
)

// Read loads the collection and applies filter in-process
func (b *LocalBackend) Read(ctx context.Context, collection string, filter domain.Filter) ([]domain.Record, error) {
	if err := domain.ValidateCollectionName(collection); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	records, err := b.load(collection)
	if err != nil {
		return nil, err
	}
	return filterRecords(records, filter), nil
}

// Insert appends a record, assigning id and created_at when absent
func (b *LocalBackend) Insert(ctx context.Context, collection string, record domain.Record) (domain.Record, error) {
	if err := domain.ValidateCollectionName(collection); err != nil {
		return nil, err
	}
	rec, err := domain.Canonicalize(record)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateID(rec); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	records, err := b.load(collection)
	if err != nil {
		return nil, err
	}
	if id := rec.ID(); id != "" && indexOf(records, domain.FieldID, id) >= 0 {
		return nil, domain.Invalid(domain.FieldID, fmt.Sprintf("%s already exists in collection %s", id, collection))
	}
	b.stampNew(rec)

	records = append(records, rec)
	if err := b.save(collection, records); err != nil {
		return nil, err
	}
	return rec.Clone(), nil
}

// Upsert replaces the first record whose conflictKey holds exactly the same
// value, merging fields and stamping updated_at, or inserts the record when
// nothing matches
func (b *LocalBackend) Upsert(ctx context.Context, collection string, record domain.Record, conflictKey string) (domain.Record, error) {
	if err := domain.ValidateCollectionName(collection); err != nil {
		return nil, err
	}
	if conflictKey == "" {
		conflictKey = domain.FieldID
	}
	rec, err := domain.Canonicalize(record)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateID(rec); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	records, err := b.load(collection)
	if err != nil {
		return nil, err
	}

	idx := -1
	if value, ok := rec.Lookup(conflictKey); ok {
		idx = indexOfExact(records, conflictKey, value)
	}

	var result domain.Record
	if idx >= 0 {
		result = records[idx].Merge(rec)
		result[domain.FieldUpdatedAt] = domain.Timestamp(b.now())
		records[idx] = result
	} else {
		if id := rec.ID(); id != "" && indexOf(records, domain.FieldID, id) >= 0 {
			return nil, domain.Invalid(domain.FieldID, fmt.Sprintf("%s already exists in collection %s", id, collection))
		}
		b.stampNew(rec)
		result = rec
		records = append(records, result)
	}

	if err := b.save(collection, records); err != nil {
		return nil, err
	}
	return result.Clone(), nil
}

// Update merges patch into every record whose matchColumn equals matchValue
// and returns the updated records. Nothing matching is not an error.
func (b *LocalBackend) Update(ctx context.Context, collection, matchColumn string, matchValue interface{}, patch domain.Record) ([]domain.Record, error) {
	if err := domain.ValidateCollectionName(collection); err != nil {
		return nil, err
	}
	canonicalPatch, err := domain.Canonicalize(patch)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	records, err := b.load(collection)
	if err != nil {
		return nil, err
	}

	filter := domain.Filter{matchColumn: matchValue}
	updated := []domain.Record{}
	stamp := domain.Timestamp(b.now())
	for i, rec := range records {
		if !domain.MatchesFilter(rec, filter) {
			continue
		}
		merged := rec.Merge(canonicalPatch)
		merged[domain.FieldUpdatedAt] = stamp
		records[i] = merged
		updated = append(updated, merged.Clone())
	}

	if len(updated) == 0 {
		return updated, nil
	}
	if err := b.save(collection, records); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes every record whose matchColumn equals matchValue and returns
// how many were removed
func (b *LocalBackend) Delete(ctx context.Context, collection, matchColumn string, matchValue interface{}) (int, error) {
	if err := domain.ValidateCollectionName(collection); err != nil {
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	records, err := b.load(collection)
	if err != nil {
		return 0, err
	}

	filter := domain.Filter{matchColumn: matchValue}
	kept := records[:0]
	for _, rec := range records {
		if !domain.MatchesFilter(rec, filter) {
			kept = append(kept, rec)
		}
	}
	removed := len(records) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := b.save(collection, kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// Reset clears a collection by removing its blob
func (b *LocalBackend) Reset(ctx context.Context, collection string) error {
	if err := domain.ValidateCollectionName(collection); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.kv.Remove(b.key(collection))
}

func (b *LocalBackend) stampNew(rec domain.Record) {
	if rec.ID() == "" {
		rec[domain.FieldID] = b.newID()
	}
	if _, ok := rec[domain.FieldCreatedAt]; !ok {
		rec[domain.FieldCreatedAt] = domain.Timestamp(b.now())
	}
}
