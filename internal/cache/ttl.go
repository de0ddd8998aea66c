package cache

import (
	"container/list"
	"sync"
	"time"
)

// Clock abstracts time for tests
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock
var SystemClock Clock = systemClock{}

type entry struct {
	key       string
	value     interface{}
	createdAt time.Time
	ttl       time.Duration
}

// TTLCache is a process-local key/value store with per-entry expiry.
// Expiry is checked lazily on read; there is no background sweeper.
// When maxSize is exceeded the oldest inserted entry is evicted (FIFO).
// Concurrent access is mutex-guarded; races on the same key are
// last-write-wins, which is acceptable because entries are idempotent
// recomputations of the same query.
type TTLCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List
	maxSize int
	clock   Clock
}

// Option configures a TTLCache
type Option func(*TTLCache)

// WithMaxSize caps the number of entries; 0 means unbounded
func WithMaxSize(n int) Option {
	return func(c *TTLCache) { c.maxSize = n }
}

// WithClock substitutes the time source, for tests
func WithClock(clock Clock) Option {
	return func(c *TTLCache) { c.clock = clock }
}

// New creates an empty TTL cache
func New(opts ...Option) *TTLCache {
	c := &TTLCache{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		clock:   SystemClock,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Set stores a value under key with the given TTL, replacing any previous
// entry wholesale
func (c *TTLCache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.order.Remove(el)
		delete(c.entries, key)
	}

	// FIFO eviction once the cap is reached
	if c.maxSize > 0 && c.order.Len() >= c.maxSize {
		oldest := c.order.Front()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*entry).key)
		}
	}

	el := c.order.PushBack(&entry{
		key:       key,
		value:     value,
		createdAt: c.clock.Now(),
		ttl:       ttl,
	})
	c.entries[key] = el
}

// Get returns the value for key, or nil and false on a miss. An expired
// entry is deleted on access and reported as a miss.
func (c *TTLCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	ent := el.Value.(*entry)
	if c.clock.Now().Sub(ent.createdAt) > ent.ttl {
		c.order.Remove(el)
		delete(c.entries, key)
		return nil, false
	}

	return ent.value, true
}

// Has reports whether key holds a live entry
func (c *TTLCache) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Delete removes an entry if present
func (c *TTLCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.order.Remove(el)
		delete(c.entries, key)
	}
}

// Clear removes all entries
func (c *TTLCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.order.Init()
}

// Len returns the number of stored entries, including any that have
// expired but not yet been read
func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.order.Len()
}
