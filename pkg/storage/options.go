package storage

import "time"

type LocalOption func(*LocalBackend)

// WithKeyPrefix sets the prefix prepended to collection names to form storage keys
func WithKeyPrefix(prefix string) LocalOption {
	return func(b *LocalBackend) {
		b.keyPrefix = prefix
	}
}

// WithClock overrides the time source used for created_at and updated_at
func WithClock(now func() time.Time) LocalOption {
	return func(b *LocalBackend) {
		b.now = now
	}
}

// WithIDGenerator overrides record id generation
func WithIDGenerator(gen func() string) LocalOption {
	return func(b *LocalBackend) {
		b.newID = gen
	}
}
