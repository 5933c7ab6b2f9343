package resultcache

import "time"

// Entry is what the cache can hold: any value that knows when it was
// produced. The cache reads nothing else from it.
type Entry interface {
	CreatedAt() time.Time
}

// Store defines the port used by consumers that only read and write
// results, so they can be handed a fake in tests.
type Store[V Entry] interface {
	// Get returns the value for fingerprint, or false when it is absent or
	// has outlived the TTL.
	Get(fingerprint string) (V, bool)

	// Set inserts or replaces the value for fingerprint.
	Set(fingerprint string, value V)
}
