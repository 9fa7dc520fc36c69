package status

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/carrousel-labs/review-proxy/api/handler/common"
	"github.com/carrousel-labs/review-proxy/cache"
	"github.com/carrousel-labs/review-proxy/config"
)

func setup(t *testing.T) (*StatusHandler, cache.Store, *config.Config) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := cache.New(cache.Options{MaxItems: 5}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg := &config.Config{}
	base := common.NewBaseHandler(cfg, logger, store, nil)
	return NewStatusHandler(base), store, cfg
}

func TestGetStatus(t *testing.T) {
	h, store, cfg := setup(t)
	cfg.SetCacheConfig(&config.CacheConfig{Type: config.CacheTypeMemory})

	store.Set("a", "value", 0)
	store.Get("a")
	store.Get("missing")

	app := fiber.New()
	app.Get("/status", h.GetStatus)

	req, _ := http.NewRequest("GET", "/status", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body StatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	require.Equal(t, config.Version, body.Version)
	require.Equal(t, config.CacheTypeMemory, body.CacheBackend)
	require.Equal(t, 1, body.Cache.Items)
	require.Equal(t, 5, body.Cache.MaxItems)
	require.EqualValues(t, 1, body.Cache.Hits)
	require.EqualValues(t, 1, body.Cache.Misses)
	require.InDelta(t, 0.5, body.Cache.HitRate, 1e-9)
}

func TestGetStatus_DefaultsToMemoryBackend(t *testing.T) {
	h, _, _ := setup(t)

	app := fiber.New()
	app.Get("/status", h.GetStatus)

	req, _ := http.NewRequest("GET", "/status", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	var body StatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, config.CacheTypeMemory, body.CacheBackend)
	require.Zero(t, body.Cache.Items)
}
