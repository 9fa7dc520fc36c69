package admin

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/carrousel-labs/review-proxy/api/handler/common"
)

const bearerPrefix = "Bearer "

type AdminHandler struct {
	*common.BaseHandler
}

var _ common.HandlerRegistrar = (*AdminHandler)(nil)

func NewAdminHandler(base *common.BaseHandler) *AdminHandler {
	return &AdminHandler{BaseHandler: base}
}

// Register mounts the cache administration routes. Without an admin token
// they are not exposed at all.
func (h *AdminHandler) Register(router fiber.Router) {
	token := h.GetConfig().GetAdminToken()
	if token == "" {
		return
	}

	admin := router.Group("/admin", requireBearer(token))

	admin.Get("/cache/stats", h.GetCacheStats)
	admin.Delete("/cache", h.ClearCache)
	admin.Get("/cache/entry", h.GetCacheEntry)
	admin.Delete("/cache/entry", h.DeleteCacheEntry)
}

func requireBearer(token string) fiber.Handler {
	expected := []byte(token)
	return func(c *fiber.Ctx) error {
		auth := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(auth, bearerPrefix) ||
			subtle.ConstantTimeCompare([]byte(strings.TrimPrefix(auth, bearerPrefix)), expected) != 1 {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}
		return c.Next()
	}
}
