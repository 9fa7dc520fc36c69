package admin

type ClearCacheResponse struct {
	Cleared int `json:"cleared"`
}

type CacheEntryResponse struct {
	Key     string `json:"key"`
	Present bool   `json:"present"`
}

type DeleteCacheEntryResponse struct {
	Key     string `json:"key"`
	Deleted bool   `json:"deleted"`
}
