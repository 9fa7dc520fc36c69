package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/carrousel-labs/review-proxy/cache"
	"github.com/carrousel-labs/review-proxy/config"
	"github.com/carrousel-labs/review-proxy/reviews"
	"github.com/carrousel-labs/review-proxy/types"
)

const testAdminToken = "s3cret"

type stubFetcher struct {
	calls atomic.Int32
	resp  *reviews.UpstreamResponse
	err   error
}

func (f *stubFetcher) Fetch(_ context.Context, _ reviews.Params) (*reviews.UpstreamResponse, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type testApi struct {
	*Api
	store   cache.Store
	fetcher *stubFetcher
}

func newTestApi(t *testing.T, mutate func(cfg *config.Config)) *testApi {
	t.Helper()

	cacheCfg := &config.CacheConfig{
		Type:         config.CacheTypeMemory,
		TTL:          10 * time.Minute,
		MaxItems:     100,
		MaxMemoryMB:  1,
		NegativeTTL:  time.Minute,
		NegativeSize: 10,
	}

	cfg := &config.Config{}
	cfg.SetListenPort("0")
	cfg.SetCacheConfig(cacheCfg)
	cfg.SetRateLimitConfig(&config.RateLimitConfig{Window: time.Minute, MaxRequests: 100, MaxClients: 100})
	cfg.SetCORSConfig(&config.CORSConfig{Enabled: false})
	if mutate != nil {
		mutate(cfg)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := cache.New(cache.OptionsFromConfig(cacheCfg), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	fetcher := &stubFetcher{resp: &reviews.UpstreamResponse{
		BusinessUnit: &reviews.BusinessUnit{DisplayName: "Example", IdentifyingName: "example.com"},
		Reviews:      []reviews.UpstreamReview{{ID: "r1", Title: "Nice", Text: "Good", Rating: 5}},
	}}
	svc := reviews.NewService(store, fetcher, cacheCfg, logger)

	return &testApi{
		Api:     New(cfg, logger, store, svc),
		store:   store,
		fetcher: fetcher,
	}
}

func (a *testApi) do(t *testing.T, method, target string, header map[string]string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, target, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestHealth(t *testing.T) {
	a := newTestApi(t, nil)
	resp, body := a.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "OK", string(body))
}

func TestGetReviews_MissThenHit(t *testing.T) {
	a := newTestApi(t, nil)

	resp, body := a.do(t, http.MethodGet, "/api/reviews/v1/reviews?domain=Example.com", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "miss", resp.Header.Get("X-Cache"))

	var data reviews.ReviewsData
	require.NoError(t, json.Unmarshal(body, &data))
	require.Len(t, data.Reviews, 1)
	require.Equal(t, "Example", data.Company.Name)

	resp, _ = a.do(t, http.MethodGet, "/api/reviews/v1/reviews?domain=example.com&page=1&limit=20", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "hit", resp.Header.Get("X-Cache"))
	require.EqualValues(t, 1, a.fetcher.calls.Load())
	require.True(t, a.store.Has("trustpilot:example.com:1:20:all:latest"))
}

func TestGetReviews_ErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		target string
		err    error
		status int
	}{
		{"missing domain", "/api/reviews/v1/reviews", nil, http.StatusBadRequest},
		{"invalid limit", "/api/reviews/v1/reviews?domain=example.com&limit=1000", nil, http.StatusBadRequest},
		{"invalid sort", "/api/reviews/v1/reviews?domain=example.com&sort=oldest", nil, http.StatusBadRequest},
		{"unknown domain", "/api/reviews/v1/reviews?domain=unknown.example", types.NewNotFoundError("reviews for domain"), http.StatusNotFound},
		{"upstream failure", "/api/reviews/v1/reviews?domain=example.com", types.NewUpstreamError("upstream", 503, ""), http.StatusBadGateway},
		{"network failure", "/api/reviews/v1/reviews?domain=example.com", types.NewNetworkError("upstream", io.ErrUnexpectedEOF), http.StatusBadGateway},
		{"upstream timeout", "/api/reviews/v1/reviews?domain=example.com", types.NewTimeoutError("upstream request"), http.StatusGatewayTimeout},
		{"circuit open", "/api/reviews/v1/reviews?domain=example.com", types.NewUnavailableError("upstream", "circuit open"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestApi(t, nil)
			a.fetcher.err = tt.err

			resp, _ := a.do(t, http.MethodGet, tt.target, nil)
			require.Equal(t, tt.status, resp.StatusCode)
			require.Empty(t, resp.Header.Get("X-Cache"))
			require.Zero(t, a.store.Stats().Items)
		})
	}
}

func TestRateLimit(t *testing.T) {
	a := newTestApi(t, func(cfg *config.Config) {
		cfg.SetRateLimitConfig(&config.RateLimitConfig{Window: time.Minute, MaxRequests: 2, MaxClients: 10})
	})

	client := map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}
	for i := 0; i < 2; i++ {
		resp, _ := a.do(t, http.MethodGet, "/api/reviews/v1/reviews?domain=example.com", client)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, _ := a.do(t, http.MethodGet, "/api/reviews/v1/reviews?domain=example.com", client)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	// another client keeps its own window
	resp, _ = a.do(t, http.MethodGet, "/api/reviews/v1/reviews?domain=example.com", map[string]string{"X-Real-IP": "198.51.100.2"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// health checks are not limited
	resp, _ = a.do(t, http.MethodGet, "/health", client)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatus(t *testing.T) {
	a := newTestApi(t, nil)
	a.do(t, http.MethodGet, "/api/reviews/v1/reviews?domain=example.com", nil)

	resp, body := a.do(t, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status struct {
		Version      string      `json:"version"`
		CacheBackend string      `json:"cache_backend"`
		Cache        cache.Stats `json:"cache"`
	}
	require.NoError(t, json.Unmarshal(body, &status))
	require.Equal(t, config.CacheTypeMemory, status.CacheBackend)
	require.Equal(t, 1, status.Cache.Items)
	require.Equal(t, 100, status.Cache.MaxItems)
}

func TestAdmin_DisabledWithoutToken(t *testing.T) {
	a := newTestApi(t, nil)
	resp, _ := a.do(t, http.MethodDelete, "/api/admin/cache", map[string]string{"Authorization": "Bearer anything"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdmin_RequiresToken(t *testing.T) {
	a := newTestApi(t, func(cfg *config.Config) { cfg.SetAdminToken(testAdminToken) })

	for _, header := range []map[string]string{
		nil,
		{"Authorization": "Bearer wrong"},
		{"Authorization": testAdminToken},
	} {
		resp, _ := a.do(t, http.MethodGet, "/api/admin/cache/stats", header)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
}

func TestAdmin_CacheOperations(t *testing.T) {
	a := newTestApi(t, func(cfg *config.Config) { cfg.SetAdminToken(testAdminToken) })
	auth := map[string]string{"Authorization": "Bearer " + testAdminToken}
	const key = "trustpilot:example.com:1:20:all:latest"

	a.do(t, http.MethodGet, "/api/reviews/v1/reviews?domain=example.com", nil)
	a.do(t, http.MethodGet, "/api/reviews/v1/reviews?domain=example.com&page=2", nil)
	require.Equal(t, 2, a.store.Stats().Items)

	resp, body := a.do(t, http.MethodGet, "/api/admin/cache/entry?key="+key, auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"key":"`+key+`","present":true}`, string(body))

	resp, _ = a.do(t, http.MethodGet, "/api/admin/cache/entry", auth)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = a.do(t, http.MethodDelete, "/api/admin/cache/entry?key="+key, auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"key":"`+key+`","deleted":true}`, string(body))
	require.False(t, a.store.Has(key))

	resp, body = a.do(t, http.MethodDelete, "/api/admin/cache", auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"cleared":1}`, string(body))
	require.Zero(t, a.store.Stats().Items)

	resp, body = a.do(t, http.MethodGet, "/api/admin/cache/stats", auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats cache.Stats
	require.NoError(t, json.Unmarshal(body, &stats))
	require.Zero(t, stats.Items)
}

func TestClientIP(t *testing.T) {
	a := newTestApi(t, nil)
	a.app.Get("/ip", func(c *fiber.Ctx) error { return c.SendString(clientIP(c)) })

	_, body := a.do(t, http.MethodGet, "/ip", map[string]string{"X-Forwarded-For": " 203.0.113.7 , 10.0.0.1", "X-Real-IP": "198.51.100.2"})
	require.Equal(t, "203.0.113.7", string(body))

	_, body = a.do(t, http.MethodGet, "/ip", map[string]string{"X-Real-IP": "198.51.100.2"})
	require.Equal(t, "198.51.100.2", string(body))

	_, body = a.do(t, http.MethodGet, "/ip", nil)
	require.NotEmpty(t, string(body))
}
