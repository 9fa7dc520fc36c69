package api

import (
	"log/slog"
	"net/url"
	"slices"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/carrousel-labs/review-proxy/config"
)

const wildcardOrigin = "*"

// addCORS installs the CORS middleware described by the config. Entries in
// AllowOrigin are exact origins, "*", or subdomain patterns such as
// "*.example.com" (which do not match the bare domain).
func addCORS(app *fiber.App, cfg *config.Config, logger *slog.Logger) {
	corsCfg := cfg.GetCORSConfig()
	if corsCfg == nil || !corsCfg.Enabled {
		return
	}

	allowCredentials := corsCfg.AllowCredentials
	if allowCredentials && slices.Contains(corsCfg.AllowOrigin, wildcardOrigin) {
		logger.Warn("CORS credentials cannot be combined with a wildcard origin, disabling credentials")
		allowCredentials = false
	}

	corsConfig := cors.Config{
		AllowMethods:     strings.Join(corsCfg.AllowMethods, ","),
		AllowHeaders:     strings.Join(corsCfg.AllowHeaders, ","),
		AllowCredentials: allowCredentials,
		ExposeHeaders:    strings.Join(corsCfg.ExposeHeaders, ","),
		MaxAge:           corsCfg.MaxAge,
	}

	exact, patterns := splitOrigins(corsCfg.AllowOrigin)
	switch {
	case slices.Contains(corsCfg.AllowOrigin, wildcardOrigin):
		corsConfig.AllowOrigins = wildcardOrigin
	case len(exact) == 0 && len(patterns) == 0:
		// nothing configured: deny every cross-origin request
		corsConfig.AllowOriginsFunc = func(string) bool { return false }
	default:
		corsConfig.AllowOrigins = strings.Join(exact, ",")
		if len(patterns) > 0 {
			corsConfig.AllowOriginsFunc = func(origin string) bool {
				return matchesAnyPattern(origin, patterns)
			}
		}
	}

	logger.Info("CORS enabled",
		slog.String("origins", strings.Join(corsCfg.AllowOrigin, ",")),
		slog.Bool("credentials", allowCredentials),
		slog.Int("max_age", corsCfg.MaxAge))

	app.Use(cors.New(corsConfig))
}

func splitOrigins(origins []string) (exact, patterns []string) {
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		switch {
		case origin == "" || origin == wildcardOrigin:
		case strings.Contains(origin, "*."):
			patterns = append(patterns, strings.ToLower(origin))
		default:
			exact = append(exact, strings.ToLower(strings.TrimSuffix(origin, "/")))
		}
	}
	return exact, patterns
}

func matchesAnyPattern(origin string, patterns []string) bool {
	u, err := url.Parse(strings.ToLower(origin))
	if err != nil || u.Host == "" {
		return false
	}
	for _, pattern := range patterns {
		if matchesPattern(u, pattern) {
			return true
		}
	}
	return false
}

// matchesPattern reports whether u is a strict subdomain of pattern. A scheme
// in the pattern ("https://*.example.com") must match as well.
func matchesPattern(u *url.URL, pattern string) bool {
	scheme, host, found := strings.Cut(pattern, "://")
	if !found {
		scheme, host = "", pattern
	}
	if scheme != "" && scheme != u.Scheme {
		return false
	}

	suffix := strings.TrimPrefix(host, "*")
	hostname := u.Hostname()
	return len(hostname) > len(suffix) && strings.HasSuffix(hostname, suffix)
}
