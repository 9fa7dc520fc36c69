package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carrousel-labs/review-proxy/config"
)

// Metrics contains all metric groups
type Metrics struct {
	HTTP        *HTTPMetrics
	Cache       *CacheMetrics
	ExternalAPI *ExternalAPIMetrics
	Error       *ErrorMetrics
}

var (
	// Global registry and metrics
	registry *prometheus.Registry
	metrics  *Metrics

	// Global cache stats updater
	cacheStatsUpdater *CacheStatsUpdater
	updaterMu         sync.Mutex

	// Singleton initialization
	initOnce sync.Once

	// Deployment environment for metrics labeling
	environment string
)

// constLabels returns the constant labels to be added to all metrics
func constLabels() prometheus.Labels {
	if environment == "" {
		return nil
	}
	return prometheus.Labels{"environment": environment}
}

// MetricsServer represents the Prometheus metrics HTTP server
type MetricsServer struct {
	server *http.Server
	logger *slog.Logger
	cfg    *config.MetricsConfig
}

// Init initializes the Prometheus metrics registry and registers all metrics
// This function is safe to call multiple times - it will only initialize once
// env is used as the environment label value for all metrics
func Init(env string) {
	initOnce.Do(func() {
		environment = env
		registry = prometheus.NewRegistry()

		// Create metric groups
		m := &Metrics{
			HTTP:        NewHTTPMetrics(),
			Cache:       NewCacheMetrics(),
			ExternalAPI: NewExternalAPIMetrics(),
			Error:       NewErrorMetrics(),
		}

		// Register all metric groups
		m.HTTP.Register(registry)
		m.Cache.Register(registry)
		m.ExternalAPI.Register(registry)
		m.Error.Register(registry)

		// Add Go runtime metrics
		registry.MustRegister(collectors.NewGoCollector())
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		metrics = m

		// Start endpoint tracking for detailed analysis
		StartEndpointTracking()
	})
}

// Registry returns the registry all metric groups are registered with, nil before Init.
func Registry() *prometheus.Registry {
	return registry
}

// NewServer creates a new metrics server
func NewServer(cfg *config.Config, logger *slog.Logger) *MetricsServer {
	metricsConfig := cfg.GetMetricsConfig()

	// Ensure metrics subsystem is initialized
	if registry == nil || metrics == nil {
		Init(cfg.GetEnvironment())
	}

	mux := http.NewServeMux()
	mux.Handle(metricsConfig.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))

	server := &http.Server{
		Addr:              ":" + metricsConfig.Port,
		Handler:           mux,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return &MetricsServer{
		server: server,
		logger: logger.With("component", "metrics"),
		cfg:    metricsConfig,
	}
}

// Start starts the metrics server. It blocks until the server stops and
// returns nil after a graceful shutdown.
func (m *MetricsServer) Start() error {
	if !m.cfg.Enabled {
		m.logger.Info("metrics server disabled")
		return nil
	}

	m.logger.Info("starting metrics server",
		slog.String("addr", m.server.Addr),
		slog.String("path", m.cfg.Path))

	if err := m.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the metrics server
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	StopCacheStatsUpdater()
	StopEndpointTracking()

	if !m.cfg.Enabled {
		return nil
	}

	m.logger.Info("shutting down metrics server")
	return m.server.Shutdown(ctx)
}

// GetMetrics returns the global metrics instance, nil before Init
func GetMetrics() *Metrics {
	return metrics
}

// HTTPMetrics returns the HTTP metrics group
func (m *Metrics) HTTPMetrics() *HTTPMetrics {
	return m.HTTP
}

// CacheMetrics returns the Cache metrics group
func (m *Metrics) CacheMetrics() *CacheMetrics {
	return m.Cache
}

// ExternalAPIMetrics returns the ExternalAPI metrics group
func (m *Metrics) ExternalAPIMetrics() *ExternalAPIMetrics {
	return m.ExternalAPI
}

// ErrorMetrics returns the Error metrics group
func (m *Metrics) ErrorMetrics() *ErrorMetrics {
	return m.Error
}

// StartCacheStatsUpdater starts periodic cache statistics collection
func StartCacheStatsUpdater(provider CacheStatsProvider, interval time.Duration, logger *slog.Logger) {
	updaterMu.Lock()
	defer updaterMu.Unlock()

	if cacheStatsUpdater != nil || metrics == nil {
		return
	}

	cacheStatsUpdater = NewCacheStatsUpdater(provider, interval, logger, metrics.Cache)
	cacheStatsUpdater.Start()
}

// StopCacheStatsUpdater stops the cache statistics collection
func StopCacheStatsUpdater() {
	updaterMu.Lock()
	defer updaterMu.Unlock()

	if cacheStatsUpdater != nil {
		cacheStatsUpdater.Stop()
		cacheStatsUpdater = nil
	}
}
