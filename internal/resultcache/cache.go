package resultcache

import (
	"sync"
	"time"

	"github.com/rohmanhakim/logo-crawler/internal/metadata"
	"github.com/rohmanhakim/logo-crawler/pkg/timeutil"
)

// DefaultTTL applies when New is given a non-positive TTL.
const DefaultTTL = 24 * time.Hour

/*
Cache is an in-memory, fingerprint-keyed result cache with a single TTL.

  - Expiry is lazy: an entry is only checked, and evicted, when Get reads it.
    Sweep evicts explicitly; nothing runs in the background.
  - Age is measured from the value's own CreatedAt, not from insertion time.
    A value produced long ago can therefore be stored already expired.
  - Size counts every held entry, expired or not.
  - Every operation holds the mutex, so concurrent Get/Set on one
    fingerprint resolve as last write wins.
  - Nothing is persisted; the cache lives as long as the process.
*/
type Cache[V Entry] struct {
	mu   sync.Mutex
	data map[string]V
	ttl  time.Duration
	now  timeutil.Clock
	sink metadata.MetadataSink
}

type Option func(*options)

type options struct {
	now  timeutil.Clock
	sink metadata.MetadataSink
}

// WithClock replaces the wall clock used for expiry checks.
func WithClock(now timeutil.Clock) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithMetadataSink routes lookup and removal events to sink.
func WithMetadataSink(sink metadata.MetadataSink) Option {
	return func(o *options) {
		if sink != nil {
			o.sink = sink
		}
	}
}

// New creates an empty cache. A non-positive ttl selects DefaultTTL.
func New[V Entry](ttl time.Duration, opts ...Option) *Cache[V] {
	o := options{
		now:  timeutil.SystemClock,
		sink: &metadata.NoopSink{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[V]{
		data: make(map[string]V),
		ttl:  ttl,
		now:  o.now,
		sink: o.sink,
	}
}

// Get returns the cached value for fingerprint. An entry older than the TTL
// is removed and reported as absent.
func (c *Cache[V]) Get(fingerprint string) (V, bool) {
	var zero V

	c.mu.Lock()
	value, exists := c.data[fingerprint]
	if !exists {
		c.mu.Unlock()
		c.sink.RecordCacheLookup(fingerprint, metadata.CacheMiss)
		return zero, false
	}
	if c.expired(value, c.now()) {
		delete(c.data, fingerprint)
		c.mu.Unlock()
		c.sink.RecordCacheLookup(fingerprint, metadata.CacheExpired)
		return zero, false
	}
	c.mu.Unlock()

	c.sink.RecordCacheLookup(fingerprint, metadata.CacheHit)
	return value, true
}

// Set stores value under fingerprint, replacing any previous entry.
func (c *Cache[V]) Set(fingerprint string, value V) {
	c.mu.Lock()
	c.data[fingerprint] = value
	c.mu.Unlock()

	c.sink.RecordCacheStore(fingerprint)
}

// Clear removes every entry and returns how many were held.
func (c *Cache[V]) Clear() int {
	c.mu.Lock()
	count := len(c.data)
	c.data = make(map[string]V)
	c.mu.Unlock()

	c.sink.RecordCacheRemoval(metadata.RemovalClear, count)
	return count
}

// Sweep evicts every expired entry and returns how many were removed.
func (c *Cache[V]) Sweep() int {
	c.mu.Lock()
	now := c.now()
	evicted := 0
	for fingerprint, value := range c.data {
		if c.expired(value, now) {
			delete(c.data, fingerprint)
			evicted++
		}
	}
	c.mu.Unlock()

	c.sink.RecordCacheRemoval(metadata.RemovalSweep, evicted)
	return evicted
}

// Size returns the number of held entries, including expired entries that
// have not been read since they expired.
func (c *Cache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.data)
}

func (c *Cache[V]) TTL() time.Duration {
	return c.ttl
}

// caller must hold c.mu
func (c *Cache[V]) expired(value V, now time.Time) bool {
	return now.Sub(value.CreatedAt()) > c.ttl
}
