package cache

import (
	"log/slog"
	"time"

	"github.com/carrousel-labs/review-proxy/config"
	"github.com/carrousel-labs/review-proxy/types"
)

const (
	DefaultTTL            = 30 * time.Minute
	DefaultMaxItems       = 1000
	DefaultMaxMemoryBytes = 50 * 1024 * 1024
	DefaultSweepInterval  = 2 * time.Minute

	// MaxTTL is the ceiling applied to every entry regardless of the requested ttl.
	MaxTTL = config.MaxCacheTTL

	// softLimitRatio is the share of MaxMemoryBytes above which eviction kicks in.
	softLimitRatio = 0.8
	// evictFraction is the minimum share of entries removed by one eviction pass.
	evictFraction = 0.25
)

// Store is the narrow interface collaborators use to talk to a cache backend.
// Implementations are safe for concurrent use.
type Store interface {
	// Get returns the value stored under key, or false when it is absent or expired.
	Get(key string) (any, bool)
	// Set stores value under key. A ttl <= 0 selects the store default; any ttl is capped at MaxTTL.
	Set(key string, value any, ttl time.Duration)
	// Delete removes key and reports whether it was present.
	Delete(key string) bool
	// Has reports whether key holds a live entry. It counts as an access.
	Has(key string) bool
	// Clear drops every entry.
	Clear()
	Stats() Stats
	// Close stops background work and releases all entries. It is idempotent.
	Close() error
}

// Observer receives cache events. Implementations must not call back into the cache.
type Observer interface {
	OnHit()
	OnMiss()
	OnEvict(n int)
	OnExpire(n int)
}

type nopObserver struct{}

func (nopObserver) OnHit()       {}
func (nopObserver) OnMiss()      {}
func (nopObserver) OnEvict(int)  {}
func (nopObserver) OnExpire(int) {}

type Options struct {
	Type           string
	DefaultTTL     time.Duration
	MaxItems       int
	MaxMemoryBytes int64
	SweepInterval  time.Duration
	Observer       Observer

	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// OptionsFromConfig maps the environment driven cache settings onto store options.
func OptionsFromConfig(cfg *config.CacheConfig) Options {
	return Options{
		Type:           cfg.Type,
		DefaultTTL:     cfg.TTL,
		MaxItems:       cfg.MaxItems,
		MaxMemoryBytes: cfg.MaxMemoryBytes(),
		SweepInterval:  cfg.SweepInterval,
	}
}

func (o Options) withDefaults() Options {
	if o.DefaultTTL <= 0 {
		o.DefaultTTL = DefaultTTL
	}
	if o.DefaultTTL > MaxTTL {
		o.DefaultTTL = MaxTTL
	}
	if o.MaxItems <= 0 {
		o.MaxItems = DefaultMaxItems
	}
	if o.MaxMemoryBytes <= 0 {
		o.MaxMemoryBytes = DefaultMaxMemoryBytes
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = DefaultSweepInterval
	}
	if o.Observer == nil {
		o.Observer = nopObserver{}
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}

// New builds the backend selected by opts.Type.
func New(opts Options, logger *slog.Logger) (Store, error) {
	switch opts.Type {
	case "", config.CacheTypeMemory:
		return NewMemoryCache(opts, logger), nil
	case config.CacheTypeRedis:
		// extension point for a shared backend; refuse to start rather than run uncached
		return nil, types.NewNotImplementedError("redis cache backend")
	default:
		return nil, types.NewInvalidValueError("CACHE_TYPE", opts.Type, "unknown cache backend")
	}
}

// GetAs reads key from s and asserts the stored value to T.
// A value of another type is reported as a miss.
func GetAs[T any](s Store, key string) (T, bool) {
	var zero T
	v, ok := s.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
