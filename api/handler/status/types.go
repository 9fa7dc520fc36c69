package status

import "github.com/carrousel-labs/review-proxy/cache"

type StatusResponse struct {
	Version      string      `json:"version" extensions:"x-order:0"`
	CommitHash   string      `json:"commit_hash" extensions:"x-order:1"`
	Environment  string      `json:"environment" extensions:"x-order:2"`
	CacheBackend string      `json:"cache_backend" extensions:"x-order:3"`
	Cache        cache.Stats `json:"cache" extensions:"x-order:4"`
}
