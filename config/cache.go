package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/carrousel-labs/review-proxy/types"
)

const (
	CacheTypeMemory = "memory"
	CacheTypeRedis  = "redis"

	// MaxCacheTTL is the hard ceiling applied to every cache entry.
	MaxCacheTTL = 30 * time.Minute

	DefaultCacheTTLSeconds    = 1800
	DefaultCacheMaxItems      = 1000
	DefaultCacheMaxMemoryMB   = 50
	DefaultCacheSweepInterval = 2 * time.Minute
	DefaultCacheStatsInterval = 15 * time.Second
	DefaultNegativeCacheTTL   = time.Minute
	DefaultNegativeCacheSize  = 1000
)

type CacheConfig struct {
	Type          string
	TTL           time.Duration
	MaxItems      int
	MaxMemoryMB   int
	SweepInterval time.Duration
	StatsInterval time.Duration

	// Negative cache for domains the upstream reported as unknown
	NegativeTTL  time.Duration
	NegativeSize int
}

// MaxMemoryBytes returns the memory ceiling in bytes.
func (cc CacheConfig) MaxMemoryBytes() int64 {
	return int64(cc.MaxMemoryMB) * 1024 * 1024
}

func setCacheDefaults() {
	viper.SetDefault("CACHE_TYPE", CacheTypeMemory)
	viper.SetDefault("CACHE_TTL_SECONDS", DefaultCacheTTLSeconds)
	viper.SetDefault("CACHE_MAX_ITEMS", DefaultCacheMaxItems)
	viper.SetDefault("CACHE_MAX_MEMORY_MB", DefaultCacheMaxMemoryMB)
	viper.SetDefault("CACHE_SWEEP_INTERVAL", DefaultCacheSweepInterval)
	viper.SetDefault("CACHE_STATS_INTERVAL", DefaultCacheStatsInterval)
	viper.SetDefault("NEGATIVE_CACHE_TTL", DefaultNegativeCacheTTL)
	viper.SetDefault("NEGATIVE_CACHE_SIZE", DefaultNegativeCacheSize)
}

func loadCacheConfig() (*CacheConfig, error) {
	ttlSeconds := viper.GetInt("CACHE_TTL_SECONDS")
	if ttlSeconds <= 0 {
		return nil, types.NewValidationError("CACHE_TTL_SECONDS", "must be greater than 0")
	}

	return &CacheConfig{
		Type:          viper.GetString("CACHE_TYPE"),
		TTL:           ClampTTL(time.Duration(ttlSeconds) * time.Second),
		MaxItems:      viper.GetInt("CACHE_MAX_ITEMS"),
		MaxMemoryMB:   viper.GetInt("CACHE_MAX_MEMORY_MB"),
		SweepInterval: viper.GetDuration("CACHE_SWEEP_INTERVAL"),
		StatsInterval: viper.GetDuration("CACHE_STATS_INTERVAL"),
		NegativeTTL:   viper.GetDuration("NEGATIVE_CACHE_TTL"),
		NegativeSize:  viper.GetInt("NEGATIVE_CACHE_SIZE"),
	}, nil
}

// ClampTTL caps ttl at MaxCacheTTL.
func ClampTTL(ttl time.Duration) time.Duration {
	if ttl > MaxCacheTTL {
		return MaxCacheTTL
	}
	return ttl
}

func (cc CacheConfig) Validate() error {
	switch cc.Type {
	case CacheTypeMemory, CacheTypeRedis:
	default:
		return types.NewInvalidValueError("CACHE_TYPE", cc.Type, "must be 'memory' or 'redis'")
	}

	if cc.TTL <= 0 {
		return types.NewValidationError("CACHE_TTL_SECONDS", "must be greater than 0")
	}
	if cc.TTL > MaxCacheTTL {
		return types.NewValidationError("CACHE_TTL_SECONDS", fmt.Sprintf("must not exceed %d", int(MaxCacheTTL.Seconds())))
	}
	if cc.MaxItems < 1 {
		return types.NewValidationError("CACHE_MAX_ITEMS", "must be at least 1")
	}
	if cc.MaxMemoryMB < 1 {
		return types.NewValidationError("CACHE_MAX_MEMORY_MB", "must be at least 1")
	}
	if cc.SweepInterval <= 0 {
		return types.NewValidationError("CACHE_SWEEP_INTERVAL", "must be positive")
	}
	if cc.StatsInterval <= 0 {
		return types.NewValidationError("CACHE_STATS_INTERVAL", "must be positive")
	}
	if cc.NegativeTTL < 0 {
		return types.NewValidationError("NEGATIVE_CACHE_TTL", "must not be negative")
	}
	if cc.NegativeSize < 1 {
		return types.NewValidationError("NEGATIVE_CACHE_SIZE", "must be at least 1")
	}

	return nil
}
