package cache

import (
	"fmt"
	"log/slog"
	"time"
)

func (c *MemoryCache) startSweeper() {
	ticker := time.NewTicker(c.sweepInterval)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.Sweep()
			case <-c.done:
				return
			}
		}
	}()
}

// Sweep removes expired entries and, if memory is still above the soft limit,
// runs an LRU eviction pass. Overlapping calls are skipped.
func (c *MemoryCache) Sweep() (expired int, evicted int) {
	if !c.sweeping.CompareAndSwap(false, true) {
		c.logger.Debug("cache sweep already running, skipping")
		return 0, 0
	}
	defer c.sweeping.Store(false)

	expired, evicted, items, usage := c.sweepLocked()

	if expired > 0 {
		c.observer.OnExpire(expired)
	}
	if evicted > 0 {
		c.observer.OnEvict(evicted)
	}

	c.logger.Debug("cache sweep complete",
		slog.Int("expired", expired),
		slog.Int("evicted", evicted),
		slog.Int("items", items),
		slog.String("memory_usage_mb", fmt.Sprintf("%.2f", bytesToMB(usage))))

	return expired, evicted
}

func (c *MemoryCache) sweepLocked() (expired, evicted, items int, usage int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.entries {
		if c.sweepEntryLocked(key, e, now) {
			expired++
		}
	}
	c.expirations += uint64(expired)

	if !c.underSoftLimitLocked() {
		evicted = c.evictLocked("")
	}
	return expired, evicted, len(c.entries), c.usage
}

// sweepEntryLocked drops e if it has expired. A broken entry is dropped and logged
// without interrupting the sweep.
func (c *MemoryCache) sweepEntryLocked(key string, e *entry, now time.Time) (removed bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("failed to sweep cache entry",
				slog.String("key", key),
				slog.Any("panic", r))
			c.removeLocked(key, e)
			removed = false
		}
	}()

	if e.expired(now) {
		c.removeLocked(key, e)
		return true
	}
	return false
}
