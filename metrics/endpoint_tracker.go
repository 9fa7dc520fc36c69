package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/carrousel-labs/review-proxy/cache"
)

const (
	maxTrackedEndpoints  = 500
	maxSamplesPerPath    = 1000
	topEndpointsLimit    = 20
	topEndpointsInterval = 5 * time.Minute
)

// EndpointTracker tracks endpoint performance for detailed monitoring.
// Paths are kept in a bounded LRU so arbitrary request paths cannot grow it.
type EndpointTracker struct {
	mu        sync.Mutex
	endpoints *cache.Cache[string, *EndpointStats]
	ticker    *time.Ticker
	done      chan struct{}
}

// EndpointStats holds statistics for an endpoint
type EndpointStats struct {
	Path      string
	Durations []float64
	Count     int64
	LastSeen  time.Time
}

var (
	globalTracker   *EndpointTracker
	globalTrackerMu sync.Mutex
)

func newEndpointTracker(interval time.Duration) *EndpointTracker {
	return &EndpointTracker{
		endpoints: cache.NewLRU[string, *EndpointStats](maxTrackedEndpoints),
		ticker:    time.NewTicker(interval),
		done:      make(chan struct{}),
	}
}

// StartEndpointTracking initializes and starts the endpoint tracker
func StartEndpointTracking() {
	globalTrackerMu.Lock()
	defer globalTrackerMu.Unlock()

	if globalTracker != nil {
		return
	}

	globalTracker = newEndpointTracker(topEndpointsInterval)
	go globalTracker.run()
}

// StopEndpointTracking stops the endpoint tracker
func StopEndpointTracking() {
	globalTrackerMu.Lock()
	defer globalTrackerMu.Unlock()

	if globalTracker != nil {
		close(globalTracker.done)
		globalTracker.ticker.Stop()
		globalTracker = nil
	}
}

// TrackEndpoint records endpoint performance data
func TrackEndpoint(path string, duration float64) {
	globalTrackerMu.Lock()
	tracker := globalTracker
	globalTrackerMu.Unlock()

	if tracker == nil {
		return
	}
	tracker.record(path, duration, time.Now())
}

func (et *EndpointTracker) record(path string, duration float64, now time.Time) {
	et.mu.Lock()
	defer et.mu.Unlock()

	stats, exists := et.endpoints.Get(path)
	if !exists {
		stats = &EndpointStats{
			Path:      path,
			Durations: make([]float64, 0, 64),
		}
		et.endpoints.Set(path, stats)
	}

	stats.Durations = append(stats.Durations, duration)
	stats.Count++
	stats.LastSeen = now

	// Keep only recent data
	if len(stats.Durations) > maxSamplesPerPath {
		stats.Durations = stats.Durations[len(stats.Durations)-maxSamplesPerPath:]
	}
}

// run periodically updates the TopEndpoints metrics
func (et *EndpointTracker) run() {
	for {
		select {
		case <-et.ticker.C:
			et.updateTopEndpoints()
		case <-et.done:
			return
		}
	}
}

type endpointP99 struct {
	path string
	p99  float64
}

// slowest returns the p99 latency of recently active endpoints, slowest first
func (et *EndpointTracker) slowest(now time.Time) []endpointP99 {
	et.mu.Lock()
	defer et.mu.Unlock()

	var result []endpointP99
	cutoff := now.Add(-10 * time.Minute) // Only consider recent data

	for _, path := range et.endpoints.Keys() {
		stats, ok := et.endpoints.Peek(path)
		if !ok || stats.LastSeen.Before(cutoff) || len(stats.Durations) < 10 {
			continue // Skip inactive or low-traffic endpoints
		}

		durations := make([]float64, len(stats.Durations))
		copy(durations, stats.Durations)
		sort.Float64s(durations)

		p99Index := int(float64(len(durations)) * 0.99)
		if p99Index >= len(durations) {
			p99Index = len(durations) - 1
		}

		p99 := durations[p99Index]
		if p99 > 0.1 { // Only track endpoints with P99 > 100ms
			result = append(result, endpointP99{path: path, p99: p99})
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].p99 > result[j].p99
	})

	if len(result) > topEndpointsLimit {
		result = result[:topEndpointsLimit]
	}
	return result
}

// updateTopEndpoints publishes the slowest endpoints
func (et *EndpointTracker) updateTopEndpoints() {
	m := GetMetrics()
	if m == nil {
		return
	}

	top := et.slowest(time.Now())

	m.HTTP.TopEndpoints.Reset()
	for _, e := range top {
		m.HTTP.TopEndpoints.WithLabelValues(e.path).Set(e.p99)
	}
}
