package status

import (
	"time"

	"github.com/gofiber/fiber/v2"

	apicache "github.com/carrousel-labs/review-proxy/api/cache"
	"github.com/carrousel-labs/review-proxy/api/handler/common"
)

type StatusHandler struct {
	*common.BaseHandler
}

var _ common.HandlerRegistrar = (*StatusHandler)(nil)

func NewStatusHandler(base *common.BaseHandler) *StatusHandler {
	return &StatusHandler{BaseHandler: base}
}

func (h *StatusHandler) Register(router fiber.Router) {
	status := router.Group("/status")

	status.Get("/", apicache.WithExpiration(time.Second), h.GetStatus)
}
