package metrics

import (
	"fmt"
	"log/slog"
	"runtime"
)

// TrackPanic tracks panic occurrences
func TrackPanic(component string) {
	if m := GetMetrics(); m != nil {
		m.Error.PanicsTotal.WithLabelValues(component).Inc()
	}
}

// TrackError tracks errors by component and type
func TrackError(component, errorType string) {
	if m := GetMetrics(); m != nil {
		m.Error.ErrorsTotal.WithLabelValues(component, errorType).Inc()
	}
}

// SetComponentHealth sets the health status of a component
func SetComponentHealth(component string, healthy bool) {
	m := GetMetrics()
	if m == nil {
		return
	}
	var status float64
	if healthy {
		status = 1
	}
	m.Error.ComponentHealth.WithLabelValues(component).Set(status)
}

// RecoverFromPanic recovers from panics, tracks metrics and re-panics.
// Use it as a deferred call.
func RecoverFromPanic(component string) {
	if r := recover(); r != nil {
		TrackPanic(component)
		TrackError(component, "panic")

		// Re-panic to maintain original behavior
		panic(fmt.Sprintf("recovered panic in %s.%s: %v", component, callerName(), r))
	}
}

// TrackCacheFault records a failed cache operation and marks the cache unhealthy.
func TrackCacheFault(operation string) {
	m := GetMetrics()
	if m == nil {
		return
	}
	m.Error.CacheFaultsTotal.WithLabelValues(operation).Inc()
	m.Error.ComponentHealth.WithLabelValues("cache").Set(0)
}

// TrackUpstreamFailure records a review fetch that ended in an error of errorType.
func TrackUpstreamFailure(errorType string) {
	if m := GetMetrics(); m != nil {
		m.Error.UpstreamFailuresTotal.WithLabelValues(errorType).Inc()
	}
}

// RecoverCacheFault recovers a panic raised by a cache operation, records it and
// logs it instead of propagating it, so the caller continues uncached.
// Use it as a deferred call.
func RecoverCacheFault(operation string, logger *slog.Logger) {
	if r := recover(); r != nil {
		TrackPanic("cache")
		TrackCacheFault(operation)
		logger.Error("cache operation failed, continuing without cache",
			slog.String("operation", operation),
			slog.String("function", callerName()),
			slog.Any("panic", r))
	}
}

func callerName() string {
	// skip callerName, the Recover helper and the runtime panic frame
	pc, _, _, ok := runtime.Caller(3)
	if !ok {
		return "unknown"
	}
	if fn := runtime.FuncForPC(pc); fn != nil {
		return fn.Name()
	}
	return "unknown"
}
