package metrics

import (
	"strconv"
	"time"
)

// Helpers below are no-ops until Init has run, so packages can record
// metrics unconditionally and tests need no registry.

// TrackExternalRequest records one upstream attempt. statusCode 0 means the
// request failed before a response arrived.
func TrackExternalRequest(endpoint string, statusCode int, duration time.Duration) {
	m := GetMetrics()
	if m == nil {
		return
	}

	status := "error"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	m.ExternalAPI.RequestsTotal.WithLabelValues(endpoint, status).Inc()
	m.ExternalAPI.Latency.WithLabelValues(endpoint).Observe(duration.Seconds())
	if statusCode == 429 {
		m.ExternalAPI.RateLimitHitsTotal.WithLabelValues(endpoint).Inc()
	}
}

// TrackExternalRetry records a retried upstream request
func TrackExternalRetry(endpoint string) {
	if m := GetMetrics(); m != nil {
		m.ExternalAPI.RetriesTotal.WithLabelValues(endpoint).Inc()
	}
}

// TrackSemaphoreWait records how long a request waited for an upstream slot
func TrackSemaphoreWait(d time.Duration) {
	if m := GetMetrics(); m != nil {
		m.ExternalAPI.SemaphoreWaitDuration.Observe(d.Seconds())
	}
}

// AdjustConcurrentRequests moves the in-flight upstream request gauge by delta
func AdjustConcurrentRequests(delta float64) {
	if m := GetMetrics(); m != nil {
		m.ExternalAPI.ConcurrentActive.Add(delta)
	}
}

// TrackNegativeCacheHit records a request answered from the unknown-domain cache
func TrackNegativeCacheHit() {
	if m := GetMetrics(); m != nil {
		m.Cache.NegativeHitsTotal.Inc()
	}
}

// TrackCollapsedRequest records a request that shared another request's upstream fetch
func TrackCollapsedRequest() {
	if m := GetMetrics(); m != nil {
		m.Cache.CollapsedTotal.Inc()
	}
}

// TrackRateLimited records a request rejected by the per-client limiter
func TrackRateLimited(path string) {
	if m := GetMetrics(); m != nil {
		m.HTTP.RateLimitedTotal.WithLabelValues(GetHandlerPattern(path)).Inc()
	}
}

// TrackHTTPRequest records a completed HTTP request
func TrackHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	m := GetMetrics()
	if m == nil {
		return
	}

	handler := GetHandlerPattern(path)
	seconds := duration.Seconds()

	m.HTTP.RequestsTotal.WithLabelValues(method, handler, GetStatusClass(statusCode)).Inc()
	m.HTTP.RequestDuration.WithLabelValues(method, handler).Observe(seconds)

	if statusCode >= 400 {
		m.HTTP.ErrorsTotal.WithLabelValues(handler, GetStatusClass(statusCode)).Inc()
	}

	if bucket := GetDurationBucket(seconds); bucket != "" {
		m.HTTP.SlowRequests.WithLabelValues(method, path, bucket).Inc()
	}

	if ShouldTrackDetailed(seconds, path) {
		TrackEndpoint(path, seconds)
	}
}

// AdjustInFlight moves the in-flight HTTP request gauge by delta
func AdjustInFlight(delta float64) {
	if m := GetMetrics(); m != nil {
		m.HTTP.RequestsInFlight.Add(delta)
	}
}
