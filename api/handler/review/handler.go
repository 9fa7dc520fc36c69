package review

import (
	"github.com/gofiber/fiber/v2"

	"github.com/carrousel-labs/review-proxy/api/handler/common"
)

type ReviewHandler struct {
	*common.BaseHandler
}

var _ common.HandlerRegistrar = (*ReviewHandler)(nil)

func NewReviewHandler(base *common.BaseHandler) *ReviewHandler {
	return &ReviewHandler{BaseHandler: base}
}

func (h *ReviewHandler) Register(router fiber.Router) {
	reviews := router.Group("/reviews/v1")

	reviews.Get("/reviews", h.GetReviews)
}
