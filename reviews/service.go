package reviews

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/carrousel-labs/review-proxy/cache"
	"github.com/carrousel-labs/review-proxy/config"
	"github.com/carrousel-labs/review-proxy/metrics"
	"github.com/carrousel-labs/review-proxy/types"
)

// Service answers review requests from the cache, falling back to the
// upstream API on a miss.
type Service struct {
	store    cache.Store
	fetcher  Fetcher
	ttl      time.Duration
	notFound *cache.TTLCache[string, struct{}] // nil when the negative cache is disabled
	group    singleflight.Group
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(store cache.Store, fetcher Fetcher, cfg *config.CacheConfig, logger *slog.Logger) *Service {
	s := &Service{
		store:   store,
		fetcher: fetcher,
		ttl:     cfg.TTL,
		logger:  logger.With("component", "reviews"),
		now:     time.Now,
	}
	if cfg.NegativeTTL > 0 {
		s.notFound = cache.NewTTL[string, struct{}](cfg.NegativeSize, cfg.NegativeTTL)
	}
	return s
}

// FetchReviews returns the normalized page selected by p and whether it was
// served from the cache. Failed upstream calls are never cached.
func (s *Service) FetchReviews(ctx context.Context, p Params) (*ReviewsData, bool, error) {
	p, err := p.Normalize()
	if err != nil {
		return nil, false, err
	}
	key := p.CacheKey()

	if data, ok := s.cached(key); ok {
		return data, true, nil
	}

	if s.notFound != nil {
		if _, ok := s.notFound.Get(p.Domain); ok {
			metrics.TrackNegativeCacheHit()
			return nil, false, types.NewNotFoundError("reviews for domain")
		}
	}

	// the shared fetch outlives any single caller; each caller still honors its own ctx
	fetchCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		return s.fetch(fetchCtx, p, key)
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Shared {
			metrics.TrackCollapsedRequest()
		}
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.(*ReviewsData), false, nil
	}
}

func (s *Service) fetch(ctx context.Context, p Params, key string) (*ReviewsData, error) {
	resp, err := s.fetcher.Fetch(ctx, p)
	if err != nil {
		if s.notFound != nil && types.IsErrorType(err, types.ErrTypeNotFound) {
			s.notFound.Set(p.Domain, struct{}{})
		}
		return nil, err
	}

	data := Normalize(resp, s.now())
	s.remember(key, data)

	return data, nil
}

// A panicking store is logged and treated as absent so requests keep
// flowing uncached.

func (s *Service) cached(key string) (data *ReviewsData, ok bool) {
	defer metrics.RecoverCacheFault("get", s.logger)
	return cache.GetAs[*ReviewsData](s.store, key)
}

func (s *Service) remember(key string, data *ReviewsData) {
	defer metrics.RecoverCacheFault("set", s.logger)
	s.store.Set(key, data, s.ttl)
	s.logger.Debug("cached reviews",
		slog.String("key", key),
		slog.Int("reviews", len(data.Reviews)))
}
