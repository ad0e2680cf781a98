package domain

import "context"

// Filter is a set of field equality constraints combined with AND
type Filter map[string]interface{}

// Backend defines the persistence operations every storage implementation provides.
// The local key-value backend mirrors the remote query surface so callers stay
// backend-agnostic.
type Backend interface {
	Read(ctx context.Context, collection string, filter Filter) ([]Record, error)
	Insert(ctx context.Context, collection string, record Record) (Record, error)
	Upsert(ctx context.Context, collection string, record Record, conflictKey string) (Record, error)
	Update(ctx context.Context, collection, matchColumn string, matchValue interface{}, patch Record) ([]Record, error)
	Delete(ctx context.Context, collection, matchColumn string, matchValue interface{}) (int, error)
	Reset(ctx context.Context, collection string) error
}

// Prober is implemented by backends that can be tested with a trial read
type Prober interface {
	Probe(ctx context.Context, collection string) error
}

// BackendKind identifies the backend chosen at startup
type BackendKind int

const (
	BackendUndetected BackendKind = iota
	BackendRemote
	BackendLocal
)

func (k BackendKind) String() string {
	switch k {
	case BackendRemote:
		return "remote"
	case BackendLocal:
		return "local"
	default:
		return "undetected"
	}
}
