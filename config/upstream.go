package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"

	"github.com/carrousel-labs/review-proxy/types"
)

const (
	DefaultExternalAPIBaseURL    = "https://api.trustpilot.com"
	DefaultUpstreamUserAgent     = "TrustpilotCarrousel/1.0.0"
	DefaultQueryTimeout          = 10 * time.Second
	DefaultUpstreamMaxRetries    = 3
	DefaultMaxConcurrentRequests = 50

	MaxUpstreamRetries       = 10
	MinConcurrentRequests    = 1
	MaxConcurrentRequestsCap = 1000
)

type UpstreamConfig struct {
	BaseURL               string
	UserAgent             string
	Timeout               time.Duration
	MaxRetries            int
	MaxConcurrentRequests int
}

func setUpstreamDefaults() {
	viper.SetDefault("EXTERNAL_API_BASE_URL", DefaultExternalAPIBaseURL)
	viper.SetDefault("UPSTREAM_USER_AGENT", DefaultUpstreamUserAgent)
	viper.SetDefault("QUERY_TIMEOUT", DefaultQueryTimeout)
	viper.SetDefault("UPSTREAM_MAX_RETRIES", DefaultUpstreamMaxRetries)
	viper.SetDefault("MAX_CONCURRENT_REQUESTS", DefaultMaxConcurrentRequests)
}

func loadUpstreamConfig() *UpstreamConfig {
	return &UpstreamConfig{
		BaseURL:               viper.GetString("EXTERNAL_API_BASE_URL"),
		UserAgent:             viper.GetString("UPSTREAM_USER_AGENT"),
		Timeout:               viper.GetDuration("QUERY_TIMEOUT"),
		MaxRetries:            viper.GetInt("UPSTREAM_MAX_RETRIES"),
		MaxConcurrentRequests: viper.GetInt("MAX_CONCURRENT_REQUESTS"),
	}
}

func (uc UpstreamConfig) Validate() error {
	if len(uc.BaseURL) == 0 {
		return types.NewValidationError("EXTERNAL_API_BASE_URL", "required field is missing")
	}
	if u, err := url.Parse(uc.BaseURL); err != nil {
		return types.NewInvalidValueError("EXTERNAL_API_BASE_URL", uc.BaseURL, fmt.Sprintf("invalid URL: %v", err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		return types.NewInvalidValueError("EXTERNAL_API_BASE_URL", uc.BaseURL, fmt.Sprintf("must use http or https scheme, got: %s", u.Scheme))
	}

	if uc.Timeout <= 0 {
		return types.NewValidationError("QUERY_TIMEOUT", "must be positive")
	}
	if uc.MaxRetries < 0 || uc.MaxRetries > MaxUpstreamRetries {
		return types.NewValidationError("UPSTREAM_MAX_RETRIES", fmt.Sprintf("must be between 0 and %d", MaxUpstreamRetries))
	}
	if uc.MaxConcurrentRequests < MinConcurrentRequests || uc.MaxConcurrentRequests > MaxConcurrentRequestsCap {
		return types.NewValidationError("MAX_CONCURRENT_REQUESTS", fmt.Sprintf("must be between %d and %d", MinConcurrentRequests, MaxConcurrentRequestsCap))
	}

	return nil
}
