package storage

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/adfharrison1/go-tripdb/pkg/domain"
	"go.uber.org/zap"
)

// DefaultKeyPrefix namespaces collection keys in the key-value store
const DefaultKeyPrefix = "tripdb_"

// LocalBackend implements domain.Backend over a key-value store. Each collection
// lives in one blob that is rewritten in full on every mutation.
type LocalBackend struct {
	// mu serializes read-modify-write cycles on blobs within this process.
	// Writers in other processes sharing the same directory are not coordinated.
	mu sync.Mutex
	kv KVStore

	keyPrefix string
	now       func() time.Time
	newID     func() string
}

// NewLocalBackend creates a local backend on top of kv
func NewLocalBackend(kv KVStore, options ...LocalOption) *LocalBackend {
	backend := &LocalBackend{
		kv:        kv,
		keyPrefix: DefaultKeyPrefix,
		now:       time.Now,
		newID:     domain.NewRecordID,
	}

	// Apply options
	for _, option := range options {
		option(backend)
	}

	return backend
}

// key returns the storage key of a collection
func (b *LocalBackend) key(collection string) string {
	return b.keyPrefix + collection
}

// load reads a collection blob. A missing key is an empty collection and a
// corrupt blob is logged and treated as empty.
func (b *LocalBackend) load(collection string) ([]domain.Record, error) {
	data, found, err := b.kv.Get(b.key(collection))
	if err != nil {
		return nil, err
	}
	if !found {
		return []domain.Record{}, nil
	}

	records, err := DecodeCollection(data)
	if err != nil {
		if errors.Is(err, domain.ErrSerialization) {
			zap.S().Warnf("Collection '%s' blob is unreadable, treating as empty: %v", collection, err)
			return []domain.Record{}, nil
		}
		return nil, err
	}
	return records, nil
}

// save writes the full collection back under its key
func (b *LocalBackend) save(collection string, records []domain.Record) error {
	data, err := EncodeCollection(records)
	if err != nil {
		return err
	}
	if err := b.kv.Set(b.key(collection), data); err != nil {
		return fmt.Errorf("failed to persist collection %s: %w", collection, err)
	}
	zap.S().Debugf("Saved collection '%s' (%d records, %d bytes)", collection, len(records), len(data))
	return nil
}

// Collections lists the collections that have a persisted blob
func (b *LocalBackend) Collections() ([]string, error) {
	keys, err := b.kv.Keys()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, k := range keys {
		if strings.HasPrefix(k, b.keyPrefix) {
			names = append(names, strings.TrimPrefix(k, b.keyPrefix))
		}
	}
	return names, nil
}
