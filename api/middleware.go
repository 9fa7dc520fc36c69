package api

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/carrousel-labs/review-proxy/cache"
	"github.com/carrousel-labs/review-proxy/config"
	"github.com/carrousel-labs/review-proxy/metrics"
)

const headerXRealIP = "X-Real-IP"

// trackHTTPMetrics records request count, latency and in-flight requests.
func trackHTTPMetrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		metrics.AdjustInFlight(1)
		defer metrics.AdjustInFlight(-1)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				status = e.Code
			}
		}

		// label values outlive the request buffers
		metrics.TrackHTTPRequest(utils.CopyString(c.Method()), utils.CopyString(c.Path()), status, time.Since(start))
		return err
	}
}

// addRateLimiter installs a fixed-window limiter per client IP. Limiter state
// lives in a bounded LRU so unknown clients cannot grow memory without bound.
func addRateLimiter(router fiber.Router, cfg *config.Config, logger *slog.Logger) {
	rlCfg := cfg.GetRateLimitConfig()
	if rlCfg == nil {
		return
	}

	router.Use(limiter.New(limiter.Config{
		Max:          rlCfg.MaxRequests,
		Expiration:   rlCfg.Window,
		KeyGenerator: clientIP,
		Storage:      cache.NewLimiterStorage(rlCfg.MaxClients),
		LimitReached: func(c *fiber.Ctx) error {
			path := utils.CopyString(c.Path())
			metrics.TrackRateLimited(path)
			logger.Debug("rate limit exceeded",
				slog.String("client", clientIP(c)),
				slog.String("path", path))
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later")
		},
	}))
}

// clientIP resolves the caller address: first X-Forwarded-For hop, then
// X-Real-IP, then the socket address.
func clientIP(c *fiber.Ctx) string {
	if xff := c.Get(fiber.HeaderXForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return utils.CopyString(ip)
		}
	}
	if ip := strings.TrimSpace(c.Get(headerXRealIP)); ip != "" {
		return utils.CopyString(ip)
	}
	return utils.CopyString(c.IP())
}
