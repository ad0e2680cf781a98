package persistence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/adfharrison1/go-tripdb/pkg/domain"
	"github.com/adfharrison1/go-tripdb/pkg/metrics"
	"go.uber.org/zap"
)

// Adapter routes persistence operations to the remote backend when it answers a
// trial read, and to the local backend otherwise. Detection runs once; there is
// no fallback after it.
type Adapter struct {
	local  domain.Backend
	remote RemoteBackend

	probeTimeout    time.Duration
	probeCollection string

	mu       sync.Mutex
	kind     domain.BackendKind
	selected domain.Backend
}

// New creates an adapter over a local backend
func New(local domain.Backend, options ...Option) *Adapter {
	adapter := &Adapter{
		local:           local,
		probeTimeout:    DefaultProbeTimeout,
		probeCollection: DefaultProbeCollection,
	}
	for _, option := range options {
		option(adapter)
	}
	return adapter
}

// DetectBackend selects the backend for the lifetime of the adapter and returns
// its kind. Later calls return the cached choice.
func (a *Adapter) DetectBackend(ctx context.Context) domain.BackendKind {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.detectLocked(ctx)
}

func (a *Adapter) detectLocked(ctx context.Context) domain.BackendKind {
	if a.kind != domain.BackendUndetected {
		return a.kind
	}
	a.kind, a.selected = a.probe(ctx)
	metrics.SetBackend(a.kind.String())
	return a.kind
}

func (a *Adapter) probe(ctx context.Context) (domain.BackendKind, domain.Backend) {
	if a.remote == nil {
		zap.S().Infof("No remote backend configured, using local storage")
		return domain.BackendLocal, a.local
	}

	probeCtx, cancel := context.WithTimeout(ctx, a.probeTimeout)
	defer cancel()

	start := time.Now()
	result := make(chan error, 1)
	go func() {
		result <- a.remote.Probe(probeCtx, a.probeCollection)
	}()

	var err error
	select {
	case err = <-result:
	case <-probeCtx.Done():
		err = fmt.Errorf("%w: probe timed out: %v", domain.ErrBackendUnavailable, probeCtx.Err())
	}
	if err != nil {
		zap.S().Warnf("Remote backend unavailable after %v, falling back to local storage: %v", time.Since(start), err)
		return domain.BackendLocal, a.local
	}

	zap.S().Infof("Remote backend reachable in %v, using remote storage", time.Since(start))
	return domain.BackendRemote, a.remote
}

// ResetDetection clears the cached choice so the next operation detects again
func (a *Adapter) ResetDetection() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.kind = domain.BackendUndetected
	a.selected = nil
}

// Kind returns the detected backend kind without triggering detection
func (a *Adapter) Kind() domain.BackendKind {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.kind
}

func (a *Adapter) backend(ctx context.Context) domain.Backend {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detectLocked(ctx)
	return a.selected
}

func (a *Adapter) Read(ctx context.Context, collection string, filter domain.Filter) ([]domain.Record, error) {
	return a.backend(ctx).Read(ctx, collection, filter)
}

func (a *Adapter) Insert(ctx context.Context, collection string, record domain.Record) (domain.Record, error) {
	return a.backend(ctx).Insert(ctx, collection, record)
}

func (a *Adapter) Upsert(ctx context.Context, collection string, record domain.Record, conflictKey string) (domain.Record, error) {
	return a.backend(ctx).Upsert(ctx, collection, record, conflictKey)
}

func (a *Adapter) Update(ctx context.Context, collection, matchColumn string, matchValue interface{}, patch domain.Record) ([]domain.Record, error) {
	return a.backend(ctx).Update(ctx, collection, matchColumn, matchValue, patch)
}

func (a *Adapter) Delete(ctx context.Context, collection, matchColumn string, matchValue interface{}) (int, error) {
	return a.backend(ctx).Delete(ctx, collection, matchColumn, matchValue)
}

func (a *Adapter) Reset(ctx context.Context, collection string) error {
	return a.backend(ctx).Reset(ctx, collection)
}
