package admin

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// GetCacheStats handles GET /admin/cache/stats
// @Summary Cache statistics
// @Description Get hit rate, size and memory usage of the review cache
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} cache.Stats
// @Router /api/admin/cache/stats [get]
func (h *AdminHandler) GetCacheStats(c *fiber.Ctx) error {
	return c.JSON(h.GetStore().Stats())
}

// ClearCache handles DELETE /admin/cache
// @Summary Clear cache
// @Description Drop every cached review page
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ClearCacheResponse
// @Router /api/admin/cache [delete]
func (h *AdminHandler) ClearCache(c *fiber.Ctx) error {
	store := h.GetStore()
	cleared := store.Stats().Items
	store.Clear()

	h.GetLogger().Info("cache cleared by admin", slog.Int("items", cleared))
	return c.JSON(ClearCacheResponse{Cleared: cleared})
}

// GetCacheEntry handles GET /admin/cache/entry
// @Summary Check cache entry
// @Description Report whether a cache key holds a live entry
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param key query string true "Cache key, e.g. trustpilot:example.com:1:20:all:latest"
// @Success 200 {object} CacheEntryResponse
// @Router /api/admin/cache/entry [get]
func (h *AdminHandler) GetCacheEntry(c *fiber.Ctx) error {
	key, err := keyParam(c)
	if err != nil {
		return err
	}
	return c.JSON(CacheEntryResponse{Key: key, Present: h.GetStore().Has(key)})
}

// DeleteCacheEntry handles DELETE /admin/cache/entry
// @Summary Delete cache entry
// @Description Remove a single cache key
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param key query string true "Cache key"
// @Success 200 {object} DeleteCacheEntryResponse
// @Router /api/admin/cache/entry [delete]
func (h *AdminHandler) DeleteCacheEntry(c *fiber.Ctx) error {
	key, err := keyParam(c)
	if err != nil {
		return err
	}

	deleted := h.GetStore().Delete(key)
	h.GetLogger().Info("cache entry deleted by admin", slog.String("key", key), slog.Bool("deleted", deleted))
	return c.JSON(DeleteCacheEntryResponse{Key: key, Deleted: deleted})
}

func keyParam(c *fiber.Ctx) (string, error) {
	key := c.Query("key")
	if key == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "missing parameter: key")
	}
	return utils.CopyString(key), nil
}
