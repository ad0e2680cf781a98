package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/adfharrison1/go-tripdb/pkg/domain"
	"github.com/adfharrison1/go-tripdb/pkg/query"
	"github.com/adfharrison1/go-tripdb/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingBackend wraps a backend and fails writes on demand
type failingBackend struct {
	domain.Backend
	writeErr error
	writes   int
}

func (f *failingBackend) Insert(ctx context.Context, collection string, record domain.Record) (domain.Record, error) {
	f.writes++
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	return f.Backend.Insert(ctx, collection, record)
}

func (f *failingBackend) Delete(ctx context.Context, collection, matchColumn string, matchValue interface{}) (int, error) {
	f.writes++
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return f.Backend.Delete(ctx, collection, matchColumn, matchValue)
}

func newBackend() *storage.LocalBackend {
	return storage.NewLocalBackend(storage.NewMemoryKV())
}

func openStore(t *testing.T, backend domain.Backend, collection string) *Store {
	t.Helper()
	s, err := Open(context.Background(), backend, collection)
	require.NoError(t, err)
	return s
}

func TestOpen_MissingCollectionIsEmpty(t *testing.T) {
	kv := storage.NewMemoryKV()
	s := openStore(t, storage.NewLocalBackend(kv), CollectionBookings)
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Snapshot())

	keys, err := kv.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys, "opening must not write")
}

func TestOpen_InvalidName(t *testing.T) {
	_, err := Open(context.Background(), newBackend(), "bad name")
	assert.ErrorIs(t, err, domain.ErrInvalidCollection)
}

func TestAppend_AssignsIDAndPersists(t *testing.T) {
	backend := newBackend()
	ctx := context.Background()
	s := openStore(t, backend, CollectionBookings)

	input := domain.Record{"kind": "hotel", "subject_id": "hotel-1", "party_size": 2}
	created, err := s.Append(ctx, input)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID())
	assert.NotEmpty(t, created[domain.FieldCreatedAt])
	assert.Equal(t, 1, s.Len())

	// Reading back by id returns the inserted fields plus the generated ones
	persisted, err := backend.Read(ctx, CollectionBookings, domain.Filter{domain.FieldID: created.ID()})
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	for field, value := range input {
		assert.EqualValues(t, value, persisted[0][field], field)
	}

	reopened := openStore(t, backend, CollectionBookings)
	assert.Equal(t, s.Snapshot(), reopened.Snapshot())
}

func TestAppend_KeepsCreationOrder(t *testing.T) {
	s := openStore(t, newBackend(), CollectionHotels)
	for _, id := range []string{"c", "a", "b"} {
		_, err := s.Append(context.Background(), domain.Record{"id": id})
		require.NoError(t, err)
	}

	var ids []string
	for _, rec := range s.Snapshot() {
		ids = append(ids, rec.ID())
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestAppend_FailedWriteLeavesStoreUnchanged(t *testing.T) {
	backend := &failingBackend{Backend: newBackend(), writeErr: errors.New("quota exceeded")}
	s := openStore(t, backend, CollectionHotels)

	_, err := s.Append(context.Background(), domain.Record{"name": "Taj"})
	require.Error(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	backend := newBackend()
	s := openStore(t, backend, CollectionBookings)

	created, err := s.Append(ctx, domain.Record{"status": "confirmed"})
	require.NoError(t, err)

	updated, ok, err := s.Update(ctx, created.ID(), domain.Record{"status": "cancelled", "id": "other"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, created.ID(), updated.ID())
	assert.Equal(t, "cancelled", updated["status"])
	assert.NotEmpty(t, updated[domain.FieldUpdatedAt])

	got, found := s.Get(created.ID())
	require.True(t, found)
	assert.Equal(t, "cancelled", got["status"])

	reopened := openStore(t, backend, CollectionBookings)
	got, found = reopened.Get(created.ID())
	require.True(t, found)
	assert.Equal(t, "cancelled", got["status"])
}

func TestUpdate_MissingIDIsNoop(t *testing.T) {
	backend := &failingBackend{Backend: newBackend()}
	s := openStore(t, backend, CollectionBookings)

	updated, ok, err := s.Update(context.Background(), "missing", domain.Record{"status": "x"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, updated)
	assert.Equal(t, 0, backend.writes)
}

func TestRemove_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	backend := newBackend()
	s := openStore(t, backend, CollectionHotels)

	created, err := s.Append(ctx, domain.Record{"name": "Taj"})
	require.NoError(t, err)
	_, err = s.Append(ctx, domain.Record{"name": "Oberoi"})
	require.NoError(t, err)

	removed, err := s.Remove(ctx, created.ID())
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, 1, s.Len())

	removed, err = s.Remove(ctx, created.ID())
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 1, s.Len())

	persisted, err := backend.Read(ctx, CollectionHotels, domain.Filter{domain.FieldID: created.ID()})
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestUpsert_SizeProperties(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, newBackend(), "favorites")

	_, err := s.Upsert(ctx, domain.Record{"hotel_id": "h1", "note": "a"}, "hotel_id")
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	// Matching conflict key never grows the collection
	merged, err := s.Upsert(ctx, domain.Record{"hotel_id": "h1", "note": "b"}, "hotel_id")
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "b", merged["note"])

	// A new key grows it by exactly one
	_, err = s.Upsert(ctx, domain.Record{"hotel_id": "h2"}, "hotel_id")
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	backend := newBackend()
	s := openStore(t, backend, CollectionHotels)

	_, err := s.Append(ctx, domain.Record{"name": "Taj"})
	require.NoError(t, err)
	require.NoError(t, s.Reset(ctx))
	assert.Equal(t, 0, s.Len())

	assert.Equal(t, 0, openStore(t, backend, CollectionHotels).Len())
}

func TestSnapshot_IsACopy(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, newBackend(), CollectionHotels)
	created, err := s.Append(ctx, domain.Record{"name": "Taj"})
	require.NoError(t, err)

	snap := s.Snapshot()
	snap[0]["name"] = "changed"

	got, _ := s.Get(created.ID())
	assert.Equal(t, "Taj", got["name"])
}

func TestQuery(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, newBackend(), CollectionHotels)
	for _, price := range []float64{300, 100, 200} {
		_, err := s.Append(ctx, domain.Record{"price": price})
		require.NoError(t, err)
	}

	rs := s.Query(query.New().SortBy(query.SortPriceAscending))
	require.Len(t, rs.Records, 3)
	assert.Equal(t, 100.0, rs.Records[0]["price"])
	assert.Equal(t, 3, rs.Total)
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	backend := newBackend()
	registry := NewRegistry(backend)
	assert.Same(t, backend, registry.Backend())

	hotels, err := registry.Get(ctx, CollectionHotels)
	require.NoError(t, err)
	again, err := registry.Get(ctx, CollectionHotels)
	require.NoError(t, err)
	assert.Same(t, hotels, again)

	_, err = registry.Get(ctx, CollectionBookings)
	require.NoError(t, err)
	assert.Equal(t, []string{CollectionBookings, CollectionHotels}, registry.Names())

	_, err = registry.Get(ctx, "no-dashes")
	assert.ErrorIs(t, err, domain.ErrInvalidCollection)

	// Writes made behind the store's back show up after a reload
	_, err = backend.Insert(ctx, CollectionHotels, domain.Record{"name": "Direct"})
	require.NoError(t, err)
	assert.Equal(t, 0, hotels.Len())
	require.NoError(t, registry.ReloadAll(ctx))
	assert.Equal(t, 1, hotels.Len())
}

func TestDefaultSeed(t *testing.T) {
	seed, err := DefaultSeed()
	require.NoError(t, err)
	require.NotEmpty(t, seed[CollectionHotels])

	for _, rec := range seed[CollectionHotels] {
		assert.NotEmpty(t, rec.ID())
		_, ok := rec.Number(domain.HotelPrice)
		assert.True(t, ok, "hotel %s needs a price", rec.ID())
	}
}

func TestSeedAll_OnlySeedsEmptyCollections(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry(newBackend())
	data := SeedData{
		CollectionHotels: {{"id": "h1"}, {"id": "h2"}},
		CollectionPhotos: {{"id": "p1"}},
	}

	require.NoError(t, SeedAll(ctx, registry, data))
	require.NoError(t, SeedAll(ctx, registry, data))

	hotels, err := registry.Get(ctx, CollectionHotels)
	require.NoError(t, err)
	assert.Equal(t, 2, hotels.Len())

	photos, err := registry.Get(ctx, CollectionPhotos)
	require.NoError(t, err)
	assert.Equal(t, 1, photos.Len())
}

func TestLoadSeedFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "seed.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"reviews":[{"id":"r1","rating":5}]}`), 0644))
	seed, err := LoadSeedFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "r1", seed[CollectionReviews][0].ID())

	yamlPath := filepath.Join(dir, "seed.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("photos:\n  - id: p1\n    url: /p1.jpg\n"), 0644))
	seed, err = LoadSeedFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "/p1.jpg", seed[CollectionPhotos][0]["url"])

	badName := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badName, []byte("bad-name:\n  - id: x\n"), 0644))
	_, err = LoadSeedFile(badName)
	assert.ErrorIs(t, err, domain.ErrInvalidCollection)

	_, err = LoadSeedFile(filepath.Join(dir, "seed.csv"))
	assert.Error(t, err)

	_, err = ParseSeed([]byte("x"), "csv")
	assert.Error(t, err)
}
