package cache

import (
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
)

// Config holds micro-cache configuration
type Config struct {
	// Expiration time for the cache
	Expiration time.Duration
	// IncludeQueryParams determines if query parameters should be included in cache key
	IncludeQueryParams bool
}

// DefaultConfig returns a default cache configuration
func DefaultConfig() Config {
	return Config{
		Expiration:         time.Second,
		IncludeQueryParams: true,
	}
}

// New creates a response cache middleware with the given configuration.
// Fiber's cache stores expirations with second resolution, so sub-second
// values behave like one second.
func New(cfg Config) fiber.Handler {
	// fallback to default
	if cfg.Expiration <= 0 {
		cfg.Expiration = time.Second
	}

	cacheConfig := cache.Config{
		Expiration: cfg.Expiration,
	}

	if cfg.IncludeQueryParams {
		cacheConfig.KeyGenerator = keyWithQuery
	}

	return cache.New(cacheConfig)
}

// WithExpiration creates a cache middleware with custom expiration time
func WithExpiration(expiration time.Duration) fiber.Handler {
	cfg := DefaultConfig()
	cfg.Expiration = expiration
	return New(cfg)
}

// keyWithQuery builds method:path?query with the query parameters sorted,
// so ?page=1&limit=10 and ?limit=10&page=1 share an entry.
func keyWithQuery(c *fiber.Ctx) string {
	args := c.Request().URI().QueryArgs()
	if args.Len() == 0 {
		return c.Method() + ":" + c.Path()
	}

	values := url.Values{}
	args.VisitAll(func(key, value []byte) {
		values.Add(string(key), string(value))
	})
	// Encode sorts by key
	return c.Method() + ":" + c.Path() + "?" + values.Encode()
}
