package cache

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

var _ Store = (*MemoryCache)(nil)

type entry struct {
	key            string
	value          any
	createdAt      time.Time
	lastAccessedAt time.Time
	// seq orders entries touched within the same clock tick
	seq         uint64
	ttl         time.Duration
	accessCount int64
	size        int64
}

func (e *entry) expired(now time.Time) bool {
	return now.Sub(e.createdAt) > e.ttl
}

// MemoryCache is an in-process Store bounded by item count and estimated memory.
// Entries expire lazily on access and periodically through a background sweeper;
// when a bound is hit the least recently used entries are evicted.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*entry
	usage   int64
	seq     uint64

	hits        uint64
	misses      uint64
	evictions   uint64
	expirations uint64

	defaultTTL     time.Duration
	maxItems       int
	maxMemoryBytes int64
	softLimit      int64
	observer       Observer
	now            func() time.Time
	logger         *slog.Logger

	sweepInterval time.Duration
	sweeping      atomic.Bool
	done          chan struct{}
	wg            sync.WaitGroup
	closeOnce     sync.Once
}

func NewMemoryCache(opts Options, logger *slog.Logger) *MemoryCache {
	opts = opts.withDefaults()

	c := &MemoryCache{
		entries:        make(map[string]*entry),
		defaultTTL:     opts.DefaultTTL,
		maxItems:       opts.MaxItems,
		maxMemoryBytes: opts.MaxMemoryBytes,
		softLimit:      int64(float64(opts.MaxMemoryBytes) * softLimitRatio),
		observer:       opts.Observer,
		now:            opts.Clock,
		logger:         logger.With("component", "cache"),
		sweepInterval:  opts.SweepInterval,
		done:           make(chan struct{}),
	}

	c.startSweeper()

	c.logger.Info("memory cache initialized",
		slog.Int("max_items", c.maxItems),
		slog.Int64("max_memory_bytes", c.maxMemoryBytes),
		slog.Duration("default_ttl", c.defaultTTL),
		slog.Duration("sweep_interval", c.sweepInterval))

	return c
}

func (c *MemoryCache) Get(key string) (any, bool) {
	value, ok, expired := c.lookup(key)
	c.notifyLookup(ok, expired)
	return value, ok
}

func (c *MemoryCache) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

func (c *MemoryCache) Set(key string, value any, ttl time.Duration) {
	size := EstimateSize(value)
	ttl = c.effectiveTTL(ttl)

	if evicted := c.store(key, value, size, ttl); evicted > 0 {
		c.observer.OnEvict(evicted)
	}
}

// store inserts the entry, evicting before the insert when the store is full or
// over the soft limit, and again afterwards if the new value pushed usage over it.
func (c *MemoryCache) store(key string, value any, size int64, ttl time.Duration) (evicted int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxItems || !c.underSoftLimitLocked() {
		evicted += c.evictLocked("")
	}

	// look up again, the entry may have been evicted above
	if old, ok := c.entries[key]; ok && old != nil {
		c.usage -= old.size
	}

	now := c.now()
	c.seq++
	c.entries[key] = &entry{
		key:            key,
		value:          value,
		createdAt:      now,
		lastAccessedAt: now,
		seq:            c.seq,
		ttl:            ttl,
		size:           size,
	}
	c.usage += size

	if !c.underSoftLimitLocked() && len(c.entries) > 1 {
		evicted += c.evictLocked(key)
	}
	return evicted
}

func (c *MemoryCache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}
	c.removeLocked(key, e)
	return true
}

func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
	c.usage = 0
}

// Len returns the number of stored entries, expired ones included until they are swept.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// MemoryUsage returns the estimated bytes held by all entries.
func (c *MemoryCache) MemoryUsage() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usage
}

func (c *MemoryCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.wg.Wait()

		c.Clear()

		c.logger.Info("memory cache closed")
	})
	return nil
}

func (c *MemoryCache) lookup(key string) (value any, ok bool, expired bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookupLocked(key)
}

// lookupLocked resolves key, dropping it when expired or broken. The caller holds c.mu.
func (c *MemoryCache) lookupLocked(key string) (value any, ok bool, expired bool) {
	e, found := c.entries[key]
	if !found {
		c.misses++
		return nil, false, false
	}
	if e == nil {
		delete(c.entries, key)
		c.misses++
		return nil, false, false
	}

	now := c.now()
	if e.expired(now) {
		c.removeLocked(key, e)
		c.misses++
		c.expirations++
		return nil, false, true
	}

	c.seq++
	e.seq = c.seq
	e.accessCount++
	e.lastAccessedAt = now
	c.hits++
	return e.value, true, false
}

func (c *MemoryCache) notifyLookup(hit, expired bool) {
	if hit {
		c.observer.OnHit()
		return
	}
	if expired {
		c.observer.OnExpire(1)
	}
	c.observer.OnMiss()
}

func (c *MemoryCache) removeLocked(key string, e *entry) {
	delete(c.entries, key)
	if e != nil {
		c.usage -= e.size
	}
}

func (c *MemoryCache) underSoftLimitLocked() bool {
	return c.usage < c.softLimit
}

func (c *MemoryCache) effectiveTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if ttl > MaxTTL {
		return MaxTTL
	}
	return ttl
}
