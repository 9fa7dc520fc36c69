package status

import (
	"github.com/gofiber/fiber/v2"

	"github.com/carrousel-labs/review-proxy/config"
)

// GetStatus handles GET /status
// @Summary Status check
// @Description Get build information and current cache statistics
// @Tags App
// @Accept json
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /api/status [get]
func (h *StatusHandler) GetStatus(c *fiber.Ctx) error {
	backend := config.CacheTypeMemory
	if cacheCfg := h.GetConfig().GetCacheConfig(); cacheCfg != nil && cacheCfg.Type != "" {
		backend = cacheCfg.Type
	}

	return c.JSON(&StatusResponse{
		Version:      config.Version,
		CommitHash:   config.CommitHash,
		Environment:  h.GetConfig().GetEnvironment(),
		CacheBackend: backend,
		Cache:        h.GetStore().Stats(),
	})
}
