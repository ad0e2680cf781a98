package store

import (
	"context"
	"sort"
	"sync"

	"github.com/adfharrison1/go-tripdb/pkg/domain"
)

// Well-known collections of the travel app
const (
	CollectionHotels   = "hotels"
	CollectionBookings = "bookings"
	CollectionPhotos   = "photos"
	CollectionReviews  = "reviews"
)

// Registry opens one Store per collection on first access
type Registry struct {
	backend domain.Backend

	mu     sync.Mutex
	stores map[string]*Store
}

// NewRegistry creates a registry whose stores persist through backend
func NewRegistry(backend domain.Backend) *Registry {
	return &Registry{backend: backend, stores: make(map[string]*Store)}
}

// Backend returns the backend stores write through
func (r *Registry) Backend() domain.Backend {
	return r.backend
}

// Get returns the store for collection, opening it if needed
func (r *Registry) Get(ctx context.Context, collection string) (*Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[collection]; ok {
		return s, nil
	}
	s, err := Open(ctx, r.backend, collection)
	if err != nil {
		return nil, err
	}
	r.stores[collection] = s
	return s, nil
}

// Names lists the collections opened so far
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.stores))
	for name := range r.stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReloadAll reloads every opened store from the backend
func (r *Registry) ReloadAll(ctx context.Context) error {
	r.mu.Lock()
	stores := make([]*Store, 0, len(r.stores))
	for _, s := range r.stores {
		stores = append(stores, s)
	}
	r.mu.Unlock()

	for _, s := range stores {
		if err := s.Load(ctx); err != nil {
			return err
		}
	}
	return nil
}
