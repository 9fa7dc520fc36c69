package metrics

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/carrousel-labs/review-proxy/cache"
)

type staticStats struct {
	stats cache.Stats
}

func (s staticStats) Stats() cache.Stats { return s.stats }

func TestGetStatusClass(t *testing.T) {
	require.Equal(t, "2xx", GetStatusClass(200))
	require.Equal(t, "3xx", GetStatusClass(304))
	require.Equal(t, "4xx", GetStatusClass(429))
	require.Equal(t, "5xx", GetStatusClass(502))
	require.Equal(t, "other", GetStatusClass(101))
}

func TestGetHandlerPattern(t *testing.T) {
	tests := map[string]string{
		"":                        "root",
		"/":                       "root",
		"/health":                 "health",
		"/swagger/index.html":     "swagger",
		"/api/reviews/v1/reviews": "reviews",
		"/api/admin/cache":        "admin",
		"/api/status":             "status",
		"/api/":                   "api",
		"/favicon.ico":            "other",
	}
	for path, want := range tests {
		require.Equal(t, want, GetHandlerPattern(path), path)
	}
}

func TestGetDurationBucket(t *testing.T) {
	require.Empty(t, GetDurationBucket(0.5))
	require.Equal(t, "1-2s", GetDurationBucket(1.5))
	require.Equal(t, "2-5s", GetDurationBucket(3))
	require.Equal(t, "5s+", GetDurationBucket(12))
}

func TestEndpointTracker_Slowest(t *testing.T) {
	tracker := newEndpointTracker(time.Hour)
	defer tracker.ticker.Stop()

	now := time.Now()
	for i := 0; i < 20; i++ {
		tracker.record("/api/reviews/v1/reviews", 0.5, now)
		tracker.record("/api/status", 0.2, now)
		tracker.record("/health", 0.01, now)
	}
	// too few samples to rank
	tracker.record("/api/rare", 9, now)

	top := tracker.slowest(now)
	require.Len(t, top, 2)
	require.Equal(t, "/api/reviews/v1/reviews", top[0].path)
	require.Equal(t, "/api/status", top[1].path)

	// stale data is ignored
	require.Empty(t, tracker.slowest(now.Add(time.Hour)))
}

func TestEndpointTracker_BoundedPaths(t *testing.T) {
	tracker := newEndpointTracker(time.Hour)
	defer tracker.ticker.Stop()

	for i := 0; i < maxTrackedEndpoints+100; i++ {
		tracker.record("/api/path/"+time.Duration(i).String(), 0.2, time.Now())
	}
	require.Equal(t, maxTrackedEndpoints, tracker.endpoints.Len())
}

func TestCacheStatsUpdater_UpdatesGauges(t *testing.T) {
	cm := NewCacheMetrics()
	provider := staticStats{stats: cache.Stats{
		Items:            12,
		MaxItems:         1000,
		MemoryUsageBytes: 4096,
		MaxMemoryMB:      50,
		HitRate:          0.75,
	}}

	u := NewCacheStatsUpdater(provider, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)), cm)
	u.Start()
	defer u.Stop()

	require.Equal(t, 12.0, testutil.ToFloat64(cm.Items))
	require.Equal(t, 1000.0, testutil.ToFloat64(cm.MaxItems))
	require.Equal(t, 4096.0, testutil.ToFloat64(cm.MemoryUsageBytes))
	require.Equal(t, float64(50*1024*1024), testutil.ToFloat64(cm.MaxMemoryBytes))
	require.Equal(t, 0.75, testutil.ToFloat64(cm.HitRate))
}

func TestCacheObserver_AfterInit(t *testing.T) {
	Init("test")
	m := GetMetrics()
	require.NotNil(t, m)

	before := testutil.ToFloat64(m.Cache.HitsTotal)
	evictedBefore := testutil.ToFloat64(m.Cache.EvictionsTotal)

	obs := CacheObserver{}
	obs.OnHit()
	obs.OnEvict(3)

	require.Equal(t, before+1, testutil.ToFloat64(m.Cache.HitsTotal))
	require.Equal(t, evictedBefore+3, testutil.ToFloat64(m.Cache.EvictionsTotal))
}

func TestTrackExternalRequest_AfterInit(t *testing.T) {
	Init("test")
	m := GetMetrics()

	TrackExternalRequest("reviews", 429, 20*time.Millisecond)
	TrackExternalRequest("reviews", 0, time.Second)

	require.Equal(t, 1.0, testutil.ToFloat64(m.ExternalAPI.RequestsTotal.WithLabelValues("reviews", "429")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.ExternalAPI.RequestsTotal.WithLabelValues("reviews", "error")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.ExternalAPI.RateLimitHitsTotal.WithLabelValues("reviews")))
}

func TestRecoverCacheFault_AfterInit(t *testing.T) {
	Init("test")
	m := GetMetrics()

	faultsBefore := testutil.ToFloat64(m.Error.CacheFaultsTotal.WithLabelValues("get"))
	panicsBefore := testutil.ToFloat64(m.Error.PanicsTotal.WithLabelValues("cache"))

	require.NotPanics(t, func() {
		defer RecoverCacheFault("get", slog.New(slog.NewTextHandler(io.Discard, nil)))
		panic("backend down")
	})

	require.Equal(t, faultsBefore+1, testutil.ToFloat64(m.Error.CacheFaultsTotal.WithLabelValues("get")))
	require.Equal(t, panicsBefore+1, testutil.ToFloat64(m.Error.PanicsTotal.WithLabelValues("cache")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.Error.ComponentHealth.WithLabelValues("cache")))
}

func TestTrackUpstreamFailure_AfterInit(t *testing.T) {
	Init("test")
	m := GetMetrics()

	before := testutil.ToFloat64(m.Error.UpstreamFailuresTotal.WithLabelValues("timeout"))
	TrackUpstreamFailure("timeout")
	require.Equal(t, before+1, testutil.ToFloat64(m.Error.UpstreamFailuresTotal.WithLabelValues("timeout")))
}
