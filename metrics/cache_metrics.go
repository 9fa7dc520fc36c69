package metrics

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/carrousel-labs/review-proxy/cache"
)

const defaultStatsInterval = 15 * time.Second

// CacheStatsProvider is implemented by cache.Store.
type CacheStatsProvider interface {
	Stats() cache.Stats
}

// CacheMetrics groups response cache metrics
type CacheMetrics struct {
	HitsTotal        prometheus.Counter
	MissesTotal      prometheus.Counter
	EvictionsTotal   prometheus.Counter
	ExpirationsTotal prometheus.Counter

	Items            prometheus.Gauge
	MaxItems         prometheus.Gauge
	MemoryUsageBytes prometheus.Gauge
	MaxMemoryBytes   prometheus.Gauge
	HitRate          prometheus.Gauge

	NegativeHitsTotal prometheus.Counter
	CollapsedTotal    prometheus.Counter
}

// NewCacheMetrics creates and returns cache metrics
func NewCacheMetrics() *CacheMetrics {
	return &CacheMetrics{
		HitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "reviewproxy_cache_hits_total",
			Help:        "Total number of cache lookups that returned a live entry",
			ConstLabels: constLabels(),
		}),
		MissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "reviewproxy_cache_misses_total",
			Help:        "Total number of cache lookups that found no live entry",
			ConstLabels: constLabels(),
		}),
		EvictionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "reviewproxy_cache_evictions_total",
			Help:        "Total number of entries removed by LRU eviction",
			ConstLabels: constLabels(),
		}),
		ExpirationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "reviewproxy_cache_expirations_total",
			Help:        "Total number of entries removed after their ttl elapsed",
			ConstLabels: constLabels(),
		}),
		Items: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "reviewproxy_cache_items",
			Help:        "Number of entries currently held in the cache",
			ConstLabels: constLabels(),
		}),
		MaxItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "reviewproxy_cache_max_items",
			Help:        "Configured maximum number of cache entries",
			ConstLabels: constLabels(),
		}),
		MemoryUsageBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "reviewproxy_cache_memory_usage_bytes",
			Help:        "Estimated bytes held by cache entries",
			ConstLabels: constLabels(),
		}),
		MaxMemoryBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "reviewproxy_cache_max_memory_bytes",
			Help:        "Configured cache memory ceiling in bytes",
			ConstLabels: constLabels(),
		}),
		HitRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "reviewproxy_cache_hit_rate",
			Help:        "Ratio of cache hits to lookups since start",
			ConstLabels: constLabels(),
		}),
		NegativeHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "reviewproxy_negative_cache_hits_total",
			Help:        "Total number of requests answered from the unknown-domain cache",
			ConstLabels: constLabels(),
		}),
		CollapsedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "reviewproxy_upstream_collapsed_total",
			Help:        "Total number of requests that shared an in-flight upstream fetch",
			ConstLabels: constLabels(),
		}),
	}
}

// Register registers all cache metrics with the given registry
func (c *CacheMetrics) Register(reg *prometheus.Registry) {
	reg.MustRegister(
		c.HitsTotal,
		c.MissesTotal,
		c.EvictionsTotal,
		c.ExpirationsTotal,
		c.Items,
		c.MaxItems,
		c.MemoryUsageBytes,
		c.MaxMemoryBytes,
		c.HitRate,
		c.NegativeHitsTotal,
		c.CollapsedTotal,
	)
}

// CacheObserver forwards cache events to the global cache metrics.
// It is safe to use before Init, events are dropped until then.
type CacheObserver struct{}

var _ cache.Observer = CacheObserver{}

func (CacheObserver) OnHit() {
	if m := GetMetrics(); m != nil {
		m.Cache.HitsTotal.Inc()
	}
}

func (CacheObserver) OnMiss() {
	if m := GetMetrics(); m != nil {
		m.Cache.MissesTotal.Inc()
	}
}

func (CacheObserver) OnEvict(n int) {
	if m := GetMetrics(); m != nil {
		m.Cache.EvictionsTotal.Add(float64(n))
	}
}

func (CacheObserver) OnExpire(n int) {
	if m := GetMetrics(); m != nil {
		m.Cache.ExpirationsTotal.Add(float64(n))
	}
}

// CacheStatsUpdater periodically copies cache statistics into gauges
type CacheStatsUpdater struct {
	provider CacheStatsProvider
	logger   *slog.Logger
	ticker   *time.Ticker
	done     chan struct{}
	metrics  *CacheMetrics
}

// NewCacheStatsUpdater creates a new cache stats updater
func NewCacheStatsUpdater(provider CacheStatsProvider, interval time.Duration, logger *slog.Logger, metrics *CacheMetrics) *CacheStatsUpdater {
	if interval <= 0 {
		interval = defaultStatsInterval
	}
	return &CacheStatsUpdater{
		provider: provider,
		logger:   logger.With("component", "cache_stats"),
		ticker:   time.NewTicker(interval),
		done:     make(chan struct{}),
		metrics:  metrics,
	}
}

// Start starts the cache stats updater
func (u *CacheStatsUpdater) Start() {
	u.logger.Info("starting cache stats updater")

	// Update once immediately
	u.updateStats()

	go u.run()
}

// Stop stops the cache stats updater
func (u *CacheStatsUpdater) Stop() {
	u.logger.Info("stopping cache stats updater")
	u.ticker.Stop()
	close(u.done)
}

// run is the main loop for updating cache statistics
func (u *CacheStatsUpdater) run() {
	for {
		select {
		case <-u.ticker.C:
			u.updateStats()
		case <-u.done:
			return
		}
	}
}

// updateStats updates the cache gauges
func (u *CacheStatsUpdater) updateStats() {
	stats := u.provider.Stats()

	u.metrics.Items.Set(float64(stats.Items))
	u.metrics.MaxItems.Set(float64(stats.MaxItems))
	u.metrics.MemoryUsageBytes.Set(float64(stats.MemoryUsageBytes))
	u.metrics.MaxMemoryBytes.Set(stats.MaxMemoryMB * 1024 * 1024)
	u.metrics.HitRate.Set(stats.HitRate)

	u.logger.Debug("updated cache stats",
		"items", stats.Items,
		"memory_usage_bytes", stats.MemoryUsageBytes,
		"hit_rate", stats.HitRate)
}
