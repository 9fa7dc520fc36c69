package cache

import (
	"log/slog"
	"math"
	"sort"
)

// evictLocked removes least recently used entries until at least a quarter of them
// are gone and usage is back under the soft limit, or nothing evictable is left.
// The entry under protect, if any, is never removed. Returns the number of entries
// removed. The caller holds c.mu.
func (c *MemoryCache) evictLocked(protect string) int {
	candidates := make([]*entry, 0, len(c.entries))
	for key, e := range c.entries {
		if e == nil {
			delete(c.entries, key)
			continue
		}
		if protect != "" && key == protect {
			continue
		}
		candidates = append(candidates, e)
	}
	if len(candidates) == 0 {
		return 0
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if !a.lastAccessedAt.Equal(b.lastAccessedAt) {
			return a.lastAccessedAt.Before(b.lastAccessedAt)
		}
		return a.seq < b.seq
	})

	target := int(math.Ceil(float64(len(candidates)) * evictFraction))
	if target < 1 {
		target = 1
	}

	removed := 0
	for _, e := range candidates {
		if removed >= target && c.underSoftLimitLocked() {
			break
		}
		c.removeLocked(e.key, e)
		removed++
	}
	c.evictions += uint64(removed)

	c.logger.Debug("cache lru eviction",
		slog.Int("removed", removed),
		slog.Int("remaining", len(c.entries)),
		slog.Int64("memory_usage_bytes", c.usage))

	return removed
}
