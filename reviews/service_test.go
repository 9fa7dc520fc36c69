package reviews

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/carrousel-labs/review-proxy/cache"
	"github.com/carrousel-labs/review-proxy/config"
	"github.com/carrousel-labs/review-proxy/types"
)

type fakeFetcher struct {
	calls atomic.Int32
	gate  chan struct{} // when set, Fetch blocks until it is closed
	resp  *UpstreamResponse
	err   error
}

func (f *fakeFetcher) Fetch(ctx context.Context, p Params) (*UpstreamResponse, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

// panicStore fails every call, standing in for a broken backend.
type panicStore struct{ cache.Store }

func (panicStore) Get(string) (any, bool)          { panic("backend down") }
func (panicStore) Set(string, any, time.Duration) { panic("backend down") }

func testCacheConfig() *config.CacheConfig {
	return &config.CacheConfig{
		TTL:          10 * time.Minute,
		NegativeTTL:  time.Minute,
		NegativeSize: 10,
	}
}

func newTestService(t *testing.T, f Fetcher, cfg *config.CacheConfig) (*Service, cache.Store) {
	t.Helper()
	store, err := cache.New(cache.Options{MaxItems: 10}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewService(store, f, cfg, testLogger()), store
}

func sampleResponse() *UpstreamResponse {
	return &UpstreamResponse{
		BusinessUnit: &BusinessUnit{DisplayName: "Example", IdentifyingName: "example.com"},
		Reviews:      []UpstreamReview{{ID: "r1", Title: "Nice", Text: "Good", Rating: 5}},
	}
}

func TestFetchReviews_MissThenHit(t *testing.T) {
	f := &fakeFetcher{resp: sampleResponse()}
	svc, store := newTestService(t, f, testCacheConfig())

	data, hit, err := svc.FetchReviews(context.Background(), Params{Domain: "Example.com"})
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, "Example", data.Company.Name)
	require.True(t, store.Has("trustpilot:example.com:1:20:all:latest"))

	again, hit, err := svc.FetchReviews(context.Background(), Params{Domain: "example.com", Page: 1, Limit: 20, Sort: SortLatest})
	require.NoError(t, err)
	require.True(t, hit)
	require.Same(t, data, again)
	require.EqualValues(t, 1, f.calls.Load())
}

func TestFetchReviews_InvalidParamsSkipUpstream(t *testing.T) {
	f := &fakeFetcher{resp: sampleResponse()}
	svc, _ := newTestService(t, f, testCacheConfig())

	_, _, err := svc.FetchReviews(context.Background(), Params{Domain: "example.com", Limit: 500})
	require.True(t, types.IsErrorType(err, types.ErrTypeInvalidValue))
	require.Zero(t, f.calls.Load())
}

func TestFetchReviews_FailuresAreNotCached(t *testing.T) {
	f := &fakeFetcher{err: types.NewUpstreamError("upstream", 503, "")}
	svc, store := newTestService(t, f, testCacheConfig())

	_, _, err := svc.FetchReviews(context.Background(), Params{Domain: "example.com"})
	require.True(t, types.IsErrorType(err, types.ErrTypeUpstream))
	require.Zero(t, store.Stats().Items)

	f.err, f.resp = nil, sampleResponse()
	_, hit, err := svc.FetchReviews(context.Background(), Params{Domain: "example.com"})
	require.NoError(t, err)
	require.False(t, hit)
	require.EqualValues(t, 2, f.calls.Load())
}

func TestFetchReviews_NegativeCache(t *testing.T) {
	f := &fakeFetcher{err: types.NewNotFoundError("reviews for domain")}
	svc, _ := newTestService(t, f, testCacheConfig())

	for i := 0; i < 3; i++ {
		_, _, err := svc.FetchReviews(context.Background(), Params{Domain: "unknown.example", Page: i + 1})
		require.True(t, types.IsErrorType(err, types.ErrTypeNotFound))
	}
	require.EqualValues(t, 1, f.calls.Load())
}

func TestFetchReviews_NegativeCacheDisabled(t *testing.T) {
	cfg := testCacheConfig()
	cfg.NegativeTTL = 0
	f := &fakeFetcher{err: types.NewNotFoundError("reviews for domain")}
	svc, _ := newTestService(t, f, cfg)

	for i := 0; i < 3; i++ {
		_, _, err := svc.FetchReviews(context.Background(), Params{Domain: "unknown.example"})
		require.True(t, types.IsErrorType(err, types.ErrTypeNotFound))
	}
	require.EqualValues(t, 3, f.calls.Load())
}

func TestFetchReviews_CollapsesConcurrentMisses(t *testing.T) {
	gate := make(chan struct{})
	f := &fakeFetcher{resp: sampleResponse(), gate: gate}
	svc, _ := newTestService(t, f, testCacheConfig())

	const callers = 8
	var (
		wg      sync.WaitGroup
		started sync.WaitGroup
		results = make([]*ReviewsData, callers)
		errs    = make([]error, callers)
	)
	started.Add(callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			started.Done()
			results[i], _, errs[i] = svc.FetchReviews(context.Background(), Params{Domain: "example.com"})
		}(i)
	}
	started.Wait()

	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, time.Millisecond)
	// let the stragglers join the in-flight fetch
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	require.EqualValues(t, 1, f.calls.Load())
	for i, data := range results {
		require.NoError(t, errs[i])
		require.Same(t, results[0], data)
	}
}

func TestFetchReviews_CallerContextCanceled(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	f := &fakeFetcher{resp: sampleResponse(), gate: gate}
	svc, _ := newTestService(t, f, testCacheConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, _, err := svc.FetchReviews(ctx, Params{Domain: "example.com"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetchReviews_BrokenStoreDegradesToUncached(t *testing.T) {
	f := &fakeFetcher{resp: sampleResponse()}
	svc := NewService(panicStore{}, f, testCacheConfig(), testLogger())

	for i := 0; i < 2; i++ {
		data, hit, err := svc.FetchReviews(context.Background(), Params{Domain: "example.com"})
		require.NoError(t, err)
		require.False(t, hit)
		require.Len(t, data.Reviews, 1)
	}
	require.EqualValues(t, 2, f.calls.Load())
}
