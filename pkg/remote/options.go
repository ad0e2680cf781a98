package remote

import "time"

type Option func(*Backend)

// WithTablePrefix sets the prefix prepended to collection names to form table names
func WithTablePrefix(prefix string) Option {
	return func(b *Backend) {
		b.tablePrefix = prefix
	}
}

// WithEnsureTables creates a collection's table on first use when enabled
func WithEnsureTables(enabled bool) Option {
	return func(b *Backend) {
		b.ensureTables = enabled
	}
}

// WithClock overrides the time source used for created_at and updated_at
func WithClock(now func() time.Time) Option {
	return func(b *Backend) {
		b.now = now
	}
}

// WithIDGenerator overrides record id generation
func WithIDGenerator(gen func() string) Option {
	return func(b *Backend) {
		b.newID = gen
	}
}
