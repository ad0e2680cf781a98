package persistence

import (
	"time"

	"github.com/adfharrison1/go-tripdb/pkg/domain"
)

// DefaultProbeTimeout bounds the trial read made during backend detection
const DefaultProbeTimeout = 3 * time.Second

// DefaultProbeCollection is the collection the trial read targets
const DefaultProbeCollection = "hotels"

// RemoteBackend is a backend that can be probed for reachability
type RemoteBackend interface {
	domain.Backend
	domain.Prober
}

type Option func(*Adapter)

// WithRemote configures the remote backend tried during detection
func WithRemote(remote RemoteBackend) Option {
	return func(a *Adapter) {
		a.remote = remote
	}
}

// WithProbeTimeout sets how long detection waits for the trial read
func WithProbeTimeout(timeout time.Duration) Option {
	return func(a *Adapter) {
		if timeout > 0 {
			a.probeTimeout = timeout
		}
	}
}

// WithProbeCollection sets the collection read during detection
func WithProbeCollection(collection string) Option {
	return func(a *Adapter) {
		if collection != "" {
			a.probeCollection = collection
		}
	}
}
