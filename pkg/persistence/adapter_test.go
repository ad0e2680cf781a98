package persistence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adfharrison1/go-tripdb/pkg/domain"
	"github.com/adfharrison1/go-tripdb/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRemote wraps an in-memory backend and answers probes with probeErr,
// optionally blocking until released.
type fakeRemote struct {
	*storage.LocalBackend
	probeErr error
	block    chan struct{}
	probes   atomic.Int32
}

func newFakeRemote(probeErr error) *fakeRemote {
	return &fakeRemote{LocalBackend: storage.NewLocalBackend(storage.NewMemoryKV()), probeErr: probeErr}
}

func (f *fakeRemote) Probe(ctx context.Context, collection string) error {
	f.probes.Add(1)
	if f.block != nil {
		<-f.block
	}
	return f.probeErr
}

func newLocal() *storage.LocalBackend {
	return storage.NewLocalBackend(storage.NewMemoryKV())
}

func TestDetectBackend_NoRemoteIsLocal(t *testing.T) {
	adapter := New(newLocal())
	assert.Equal(t, domain.BackendUndetected, adapter.Kind())
	assert.Equal(t, domain.BackendLocal, adapter.DetectBackend(context.Background()))
	assert.Equal(t, domain.BackendLocal, adapter.Kind())
}

func TestDetectBackend_RemoteReachable(t *testing.T) {
	remote := newFakeRemote(nil)
	adapter := New(newLocal(), WithRemote(remote))
	assert.Equal(t, domain.BackendRemote, adapter.DetectBackend(context.Background()))
}

func TestDetectBackend_FallsBack(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"table not found", fmt.Errorf("%w: table hotels not found", domain.ErrBackendUnavailable)},
		{"connection error", errors.New("connection refused")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := New(newLocal(), WithRemote(newFakeRemote(tt.err)))
			assert.Equal(t, domain.BackendLocal, adapter.DetectBackend(context.Background()))
		})
	}
}

func TestDetectBackend_TimeoutFallsBackAndWritesLocally(t *testing.T) {
	local := newLocal()
	remote := newFakeRemote(nil)
	remote.block = make(chan struct{})
	defer close(remote.block)

	adapter := New(local, WithRemote(remote), WithProbeTimeout(20*time.Millisecond))
	ctx := context.Background()

	start := time.Now()
	assert.Equal(t, domain.BackendLocal, adapter.DetectBackend(ctx))
	assert.Less(t, time.Since(start), time.Second)

	_, err := adapter.Insert(ctx, "hotels", domain.Record{"name": "Taj"})
	require.NoError(t, err)

	localRecords, err := local.Read(ctx, "hotels", nil)
	require.NoError(t, err)
	assert.Len(t, localRecords, 1)

	remoteRecords, err := remote.Read(ctx, "hotels", nil)
	require.NoError(t, err)
	assert.Empty(t, remoteRecords)
}

func TestDetectBackend_RunsOnce(t *testing.T) {
	remote := newFakeRemote(nil)
	adapter := New(newLocal(), WithRemote(remote))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			adapter.DetectBackend(ctx)
		}()
	}
	wg.Wait()

	_, err := adapter.Read(ctx, "hotels", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), remote.probes.Load())

	// Flipping the remote after detection changes nothing
	remote.probeErr = errors.New("gone")
	assert.Equal(t, domain.BackendRemote, adapter.DetectBackend(ctx))
	assert.Equal(t, int32(1), remote.probes.Load())
}

func TestResetDetection(t *testing.T) {
	remote := newFakeRemote(nil)
	adapter := New(newLocal(), WithRemote(remote))
	ctx := context.Background()

	assert.Equal(t, domain.BackendRemote, adapter.DetectBackend(ctx))

	remote.probeErr = errors.New("gone")
	adapter.ResetDetection()
	assert.Equal(t, domain.BackendUndetected, adapter.Kind())
	assert.Equal(t, domain.BackendLocal, adapter.DetectBackend(ctx))
	assert.Equal(t, int32(2), remote.probes.Load())
}

func TestAdapter_OperationsDetectLazily(t *testing.T) {
	local := newLocal()
	adapter := New(local)
	ctx := context.Background()

	created, err := adapter.Insert(ctx, "bookings", domain.Record{"status": "confirmed"})
	require.NoError(t, err)
	assert.Equal(t, domain.BackendLocal, adapter.Kind())

	updated, err := adapter.Update(ctx, "bookings", domain.FieldID, created.ID(), domain.Record{"status": "cancelled"})
	require.NoError(t, err)
	require.Len(t, updated, 1)

	upserted, err := adapter.Upsert(ctx, "bookings", domain.Record{"id": created.ID(), "note": "late"}, "")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", upserted["status"])

	n, err := adapter.Delete(ctx, "bookings", domain.FieldID, created.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, adapter.Reset(ctx, "bookings"))
	records, err := adapter.Read(ctx, "bookings", nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestOptions_IgnoreZeroValues(t *testing.T) {
	adapter := New(newLocal(), WithProbeTimeout(0), WithProbeCollection(""))
	assert.Equal(t, DefaultProbeTimeout, adapter.probeTimeout)
	assert.Equal(t, DefaultProbeCollection, adapter.probeCollection)
}
