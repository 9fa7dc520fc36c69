package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/carrousel-labs/review-proxy/types"
)

const (
	DefaultRateLimitWindowMs    = 60000
	DefaultRateLimitMaxRequests = 100
	DefaultRateLimitMaxClients  = 10000
	DefaultCORSMaxAge           = 86400
)

// CORSConfig contains configuration for the CORS middleware
type CORSConfig struct {
	Enabled          bool
	AllowOrigin      []string
	AllowMethods     []string
	AllowHeaders     []string
	AllowCredentials bool
	ExposeHeaders    []string
	MaxAge           int
}

// RateLimitConfig contains configuration for the per-client fixed window limiter
type RateLimitConfig struct {
	Window      time.Duration
	MaxRequests int
	MaxClients  int
}

func setHTTPDefaults() {
	viper.SetDefault("RATE_LIMIT_WINDOW_MS", DefaultRateLimitWindowMs)
	viper.SetDefault("RATE_LIMIT_MAX_REQUESTS", DefaultRateLimitMaxRequests)
	viper.SetDefault("RATE_LIMIT_MAX_CLIENTS", DefaultRateLimitMaxClients)

	viper.SetDefault("CORS_ENABLED", true)
	viper.SetDefault("ALLOWED_ORIGINS", "*")
	viper.SetDefault("CORS_MAX_AGE", DefaultCORSMaxAge)
}

func loadRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		Window:      durationFromMillis(viper.GetInt("RATE_LIMIT_WINDOW_MS")),
		MaxRequests: viper.GetInt("RATE_LIMIT_MAX_REQUESTS"),
		MaxClients:  viper.GetInt("RATE_LIMIT_MAX_CLIENTS"),
	}
}

func loadCORSConfig() *CORSConfig {
	return &CORSConfig{
		Enabled:          viper.GetBool("CORS_ENABLED"),
		AllowOrigin:      splitList(viper.GetString("ALLOWED_ORIGINS")),
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "X-Requested-With"},
		AllowCredentials: false,
		ExposeHeaders:    []string{"X-Cache"},
		MaxAge:           viper.GetInt("CORS_MAX_AGE"),
	}
}

func (rc RateLimitConfig) Validate() error {
	if rc.Window <= 0 {
		return types.NewValidationError("RATE_LIMIT_WINDOW_MS", "must be positive")
	}
	if rc.MaxRequests < 1 {
		return types.NewValidationError("RATE_LIMIT_MAX_REQUESTS", "must be at least 1")
	}
	if rc.MaxClients < 1 {
		return types.NewValidationError("RATE_LIMIT_MAX_CLIENTS", "must be at least 1")
	}
	return nil
}

// splitList parses a comma separated env value, dropping empty items.
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
