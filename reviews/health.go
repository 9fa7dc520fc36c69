package reviews

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	// Circuit breaker thresholds
	failureThreshold = 3                // Consecutive exhausted fetches before the upstream is marked unhealthy
	recoveryTimeout  = 30 * time.Second // Time before probing an unhealthy upstream again
)

// healthState is an immutable snapshot of the upstream health
type healthState struct {
	failures      int32
	lastFailureAt time.Time
}

// upstreamHealth is a small circuit breaker around the review API.
// Reads use atomic.Value; updates are serialized by mu.
type upstreamHealth struct {
	mu    sync.Mutex
	state atomic.Value // stores *healthState
	now   func() time.Time
}

func newUpstreamHealth() *upstreamHealth {
	return &upstreamHealth{now: time.Now}
}

func (h *upstreamHealth) load() *healthState {
	v := h.state.Load()
	if v == nil {
		return &healthState{}
	}
	return v.(*healthState)
}

// recordSuccess resets the breaker to healthy
func (h *upstreamHealth) recordSuccess() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.Store(&healthState{})
}

// recordFailure increments the failure count and stamps the failure time
func (h *upstreamHealth) recordFailure() {
	h.mu.Lock()
	defer h.mu.Unlock()
	old := h.load()
	h.state.Store(&healthState{
		failures:      old.failures + 1,
		lastFailureAt: h.now(),
	})
}

// healthy reports whether a request may be sent. After recoveryTimeout an
// unhealthy upstream is probed again.
func (h *upstreamHealth) healthy() bool {
	state := h.load()
	if state.failures < failureThreshold {
		return true
	}
	if state.lastFailureAt.IsZero() {
		return false
	}
	return h.now().Sub(state.lastFailureAt) >= recoveryTimeout
}

func (h *upstreamHealth) failures() int32 {
	return h.load().failures
}
