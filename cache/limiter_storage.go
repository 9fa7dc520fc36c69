package cache

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

var _ fiber.Storage = (*LimiterStorage)(nil)

type limiterItem struct {
	value     []byte
	expiresAt time.Time
}

// LimiterStorage is a fiber.Storage backed by a bounded LRU. It holds per-client
// rate limiter state, so an unbounded stream of client keys cannot grow memory;
// the least recently seen clients are dropped first.
type LimiterStorage struct {
	items *Cache[string, limiterItem]
	now   func() time.Time
}

func NewLimiterStorage(maxClients int) *LimiterStorage {
	return &LimiterStorage{
		items: NewLRU[string, limiterItem](maxClients),
		now:   time.Now,
	}
}

// Get returns nil without error when key is unknown or expired.
func (s *LimiterStorage) Get(key string) ([]byte, error) {
	if len(key) == 0 {
		return nil, nil
	}
	item, ok := s.items.Get(key)
	if !ok {
		return nil, nil
	}
	if !item.expiresAt.IsZero() && !s.now().Before(item.expiresAt) {
		s.items.Remove(key)
		return nil, nil
	}
	return item.value, nil
}

func (s *LimiterStorage) Set(key string, val []byte, exp time.Duration) error {
	if len(key) == 0 || len(val) == 0 {
		return nil
	}

	item := limiterItem{value: append([]byte(nil), val...)}
	if exp > 0 {
		item.expiresAt = s.now().Add(exp)
	}
	// fiber keys may alias request buffers
	s.items.Set(strings.Clone(key), item)
	return nil
}

func (s *LimiterStorage) Delete(key string) error {
	if len(key) == 0 {
		return nil
	}
	s.items.Remove(key)
	return nil
}

func (s *LimiterStorage) Reset() error {
	s.items.Purge()
	return nil
}

func (s *LimiterStorage) Close() error {
	return nil
}

// Len returns the number of tracked clients.
func (s *LimiterStorage) Len() int {
	return s.items.Len()
}
