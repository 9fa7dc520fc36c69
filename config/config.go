package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/carrousel-labs/review-proxy/types"
)

var (
	Version    = "dev"
	CommitHash = "unknown"

	// Singleton instance
	configInstance *Config
	configOnce     sync.Once
)

// Default configuration constants
const (
	// Port settings
	DefaultAPIPort     = "4828"
	DefaultMetricsPort = "9090"
	MinPortNumber      = 1
	MaxPortNumber      = 65535

	// Metrics settings
	DefaultMetricsPath = "/metrics"

	// Default environment
	DefaultEnvironment = "development"
)

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
	Port    string `json:"port"`
}

// SentryConfig contains configuration for Sentry integration
type SentryConfig struct {
	DSN              string  `json:"dsn"`
	SampleRate       float64 `json:"sample_rate"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
	Environment      string  `json:"environment"`
}

func SetBuildInfo(v, commit string) {
	Version = v
	CommitHash = commit
}

type Config struct {
	listenPort      string
	logLevel        string
	logFormat       string
	environment     string
	adminToken      string
	cacheConfig     *CacheConfig
	upstreamConfig  *UpstreamConfig
	rateLimitConfig *RateLimitConfig
	corsConfig      *CORSConfig
	metricsConfig   *MetricsConfig
	sentryConfig    *SentryConfig
}

func setDefaults() {
	viper.SetDefault("PORT", DefaultAPIPort)
	viper.SetDefault("LOG_LEVEL", "warn")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("ENVIRONMENT", DefaultEnvironment)
	viper.SetDefault("ADMIN_TOKEN", "")
	viper.SetDefault("METRICS_ENABLED", false)
	viper.SetDefault("METRICS_PATH", DefaultMetricsPath)
	viper.SetDefault("METRICS_PORT", DefaultMetricsPort)

	// Sentry defaults
	viper.SetDefault("SENTRY_DSN", "")
	viper.SetDefault("SENTRY_SAMPLE_RATE", 1.0)
	viper.SetDefault("SENTRY_TRACES_SAMPLE_RATE", 0.01)

	setCacheDefaults()
	setUpstreamDefaults()
	setHTTPDefaults()
}

// GetConfig loads the process configuration once and returns the shared instance.
func GetConfig() (*Config, error) {
	var err error

	configOnce.Do(func() {
		configInstance, err = Load()
	})

	return configInstance, err
}

// Load reads the environment (and an optional .env file) into a validated Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// just log without panic, local testing purpose only
		fmt.Fprintln(os.Stderr, "No .env file found")
	}
	viper.AutomaticEnv()
	setDefaults()

	cacheConfig, err := loadCacheConfig()
	if err != nil {
		return nil, err
	}

	config := &Config{
		listenPort:      viper.GetString("PORT"),
		logLevel:        viper.GetString("LOG_LEVEL"),
		logFormat:       viper.GetString("LOG_FORMAT"),
		environment:     viper.GetString("ENVIRONMENT"),
		adminToken:      viper.GetString("ADMIN_TOKEN"),
		cacheConfig:     cacheConfig,
		upstreamConfig:  loadUpstreamConfig(),
		rateLimitConfig: loadRateLimitConfig(),
		corsConfig:      loadCORSConfig(),
		metricsConfig: &MetricsConfig{
			Enabled: viper.GetBool("METRICS_ENABLED"),
			Path:    viper.GetString("METRICS_PATH"),
			Port:    viper.GetString("METRICS_PORT"),
		},
		sentryConfig: &SentryConfig{
			DSN:              viper.GetString("SENTRY_DSN"),
			SampleRate:       viper.GetFloat64("SENTRY_SAMPLE_RATE"),
			TracesSampleRate: viper.GetFloat64("SENTRY_TRACES_SAMPLE_RATE"),
			Environment:      viper.GetString("ENVIRONMENT"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c Config) GetListenPort() string {
	return c.listenPort
}

// SetListenPort assigns the listen port for testing purposes.
func (c *Config) SetListenPort(port string) {
	c.listenPort = port
}

func (c Config) GetEnvironment() string {
	return c.environment
}

func (c Config) GetAdminToken() string {
	return c.adminToken
}

// SetAdminToken assigns the admin token for testing purposes.
func (c *Config) SetAdminToken(token string) {
	c.adminToken = token
}

func (c Config) GetCacheConfig() *CacheConfig {
	return c.cacheConfig
}

// SetCacheConfig assigns the cache config for testing purposes.
func (c *Config) SetCacheConfig(cacheCfg *CacheConfig) {
	c.cacheConfig = cacheCfg
}

func (c Config) GetUpstreamConfig() *UpstreamConfig {
	return c.upstreamConfig
}

// SetUpstreamConfig assigns the upstream config for testing purposes.
func (c *Config) SetUpstreamConfig(upstreamCfg *UpstreamConfig) {
	c.upstreamConfig = upstreamCfg
}

func (c Config) GetRateLimitConfig() *RateLimitConfig {
	return c.rateLimitConfig
}

// SetRateLimitConfig assigns the rate limit config for testing purposes.
func (c *Config) SetRateLimitConfig(rateLimitCfg *RateLimitConfig) {
	c.rateLimitConfig = rateLimitCfg
}

func (c Config) GetCORSConfig() *CORSConfig {
	return c.corsConfig
}

// SetCORSConfig assigns the CORS config for testing purposes.
func (c *Config) SetCORSConfig(corsCfg *CORSConfig) {
	c.corsConfig = corsCfg
}

func (c Config) GetMetricsConfig() *MetricsConfig {
	return c.metricsConfig
}

// SetMetricsConfig assigns the metrics config for testing purposes.
func (c *Config) SetMetricsConfig(metricsCfg *MetricsConfig) {
	c.metricsConfig = metricsCfg
}

func (c Config) GetSentryConfig() *SentryConfig {
	if c.sentryConfig == nil || c.sentryConfig.DSN == "" {
		return nil
	}
	return c.sentryConfig
}

func (c Config) GetLogLevel() slog.Level {
	switch c.logLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func (c Config) GetLogFormat() string {
	if c.logFormat == "json" {
		return "json"
	}
	return "plain"
}

func (c Config) Validate() error {
	if err := c.validatePort(); err != nil {
		return err
	}
	if err := c.validateLogSettings(); err != nil {
		return err
	}
	if err := c.validateMetricsConfig(); err != nil {
		return err
	}
	if err := c.validateSubConfigs(); err != nil {
		return err
	}
	return nil
}

// validatePort validates the listen port configuration
func (c Config) validatePort() error {
	if len(c.listenPort) == 0 {
		return types.NewValidationError("PORT", "required field is missing")
	}
	if port, err := strconv.Atoi(c.listenPort); err != nil || port < MinPortNumber || port > MaxPortNumber {
		return types.NewValidationError("PORT", fmt.Sprintf("must be a valid port number (%d-%d)", MinPortNumber, MaxPortNumber))
	}
	return nil
}

// validateLogSettings validates log format and level configuration
func (c Config) validateLogSettings() error {
	switch c.logFormat {
	case "json", "plain":
		break
	default:
		return types.NewValidationError("LOG_FORMAT", fmt.Sprintf("invalid value '%s', must be 'json' or 'plain'", c.logFormat))
	}

	switch c.logLevel {
	case "debug", "info", "warn", "error":
		break
	default:
		return types.NewValidationError("LOG_LEVEL", fmt.Sprintf("invalid value '%s', must be one of: debug, info, warn, error", c.logLevel))
	}
	return nil
}

// validateMetricsConfig validates metrics configuration
func (c Config) validateMetricsConfig() error {
	if c.metricsConfig == nil || !c.metricsConfig.Enabled {
		return nil
	}
	if port, err := strconv.Atoi(c.metricsConfig.Port); err != nil || port < MinPortNumber || port > MaxPortNumber {
		return types.NewValidationError("METRICS_PORT", fmt.Sprintf("must be a valid port number (%d-%d)", MinPortNumber, MaxPortNumber))
	}
	if c.metricsConfig.Port == c.listenPort {
		return types.NewValidationError("METRICS_PORT", fmt.Sprintf("metrics port %s conflicts with API port", c.metricsConfig.Port))
	}
	if c.metricsConfig.Path == "" || c.metricsConfig.Path[0] != '/' {
		return types.NewValidationError("METRICS_PATH", "must start with '/'")
	}
	return nil
}

// validateSubConfigs validates nested configuration objects
func (c Config) validateSubConfigs() error {
	if c.cacheConfig == nil {
		return types.NewValidationError("CACHE", "configuration is missing")
	}
	if err := c.cacheConfig.Validate(); err != nil {
		return err
	}
	if c.upstreamConfig == nil {
		return types.NewValidationError("EXTERNAL_API", "configuration is missing")
	}
	if err := c.upstreamConfig.Validate(); err != nil {
		return err
	}
	if c.rateLimitConfig != nil {
		if err := c.rateLimitConfig.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// durationFromMillis converts an integer millisecond setting into a Duration.
func durationFromMillis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
