package cache

const bytesPerMB = 1024 * 1024

// Stats is a point-in-time snapshot of a Store.
type Stats struct {
	Items            int     `json:"items"`
	MaxItems         int     `json:"max_items"`
	MemoryUsageBytes int64   `json:"memory_usage_bytes"`
	MemoryUsageMB    float64 `json:"memory_usage_mb"`
	MaxMemoryMB      float64 `json:"max_memory_mb"`
	// HitRate is hits / (hits + misses) over Get and Has calls, 0 before any lookup.
	HitRate     float64 `json:"hit_rate"`
	Hits        uint64  `json:"hits"`
	Misses      uint64  `json:"misses"`
	Evictions   uint64  `json:"evictions"`
	Expirations uint64  `json:"expirations"`
	// AccessedEntryRatio is the number of entries read at least once divided by
	// the total reads across live entries.
	AccessedEntryRatio float64 `json:"accessed_entry_ratio"`
}

func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	var totalAccesses, accessedEntries int64
	for _, e := range c.entries {
		if e == nil {
			continue
		}
		totalAccesses += e.accessCount
		if e.accessCount > 0 {
			accessedEntries++
		}
	}

	stats := Stats{
		Items:            len(c.entries),
		MaxItems:         c.maxItems,
		MemoryUsageBytes: c.usage,
		MemoryUsageMB:    bytesToMB(c.usage),
		MaxMemoryMB:      bytesToMB(c.maxMemoryBytes),
		Hits:             c.hits,
		Misses:           c.misses,
		Evictions:        c.evictions,
		Expirations:      c.expirations,
	}
	if lookups := c.hits + c.misses; lookups > 0 {
		stats.HitRate = float64(c.hits) / float64(lookups)
	}
	if totalAccesses > 0 {
		stats.AccessedEntryRatio = float64(accessedEntries) / float64(totalAccesses)
	}
	return stats
}

func bytesToMB(b int64) float64 {
	return float64(b) / bytesPerMB
}
