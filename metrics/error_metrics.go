package metrics

import "github.com/prometheus/client_golang/prometheus"

// ErrorMetrics groups error tracking metrics
type ErrorMetrics struct {
	PanicsTotal *prometheus.CounterVec
	ErrorsTotal *prometheus.CounterVec

	// CacheFaultsTotal counts cache calls that failed and were served uncached
	CacheFaultsTotal *prometheus.CounterVec
	// UpstreamFailuresTotal counts review fetches that ended in an error, by error type
	UpstreamFailuresTotal *prometheus.CounterVec

	// upstream, cache
	ComponentHealth *prometheus.GaugeVec
}

func NewErrorMetrics() *ErrorMetrics {
	return &ErrorMetrics{
		PanicsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "reviewproxy_panics_total",
				Help:        "Total number of recovered panics by component",
				ConstLabels: constLabels(),
			},
			[]string{"component"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "reviewproxy_errors_total",
				Help:        "Total number of errors by component and type",
				ConstLabels: constLabels(),
			},
			[]string{"component", "error_type"},
		),
		CacheFaultsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "reviewproxy_cache_faults_total",
				Help:        "Cache operations that failed on the request path and fell back to no caching",
				ConstLabels: constLabels(),
			},
			[]string{"operation"},
		),
		UpstreamFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "reviewproxy_upstream_failures_total",
				Help:        "Review fetches that returned an error to the caller, by error type",
				ConstLabels: constLabels(),
			},
			[]string{"error_type"},
		),
		ComponentHealth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name:        "reviewproxy_component_health",
				Help:        "Health status of upstream and cache (1=healthy, 0=unhealthy)",
				ConstLabels: constLabels(),
			},
			[]string{"component"},
		),
	}
}

// Register registers all error metrics with the given registry
func (e *ErrorMetrics) Register(reg *prometheus.Registry) {
	reg.MustRegister(
		e.PanicsTotal,
		e.ErrorsTotal,
		e.CacheFaultsTotal,
		e.UpstreamFailuresTotal,
		e.ComponentHealth,
	)
}
