package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/carrousel-labs/review-proxy/api/handler/admin"
	"github.com/carrousel-labs/review-proxy/api/handler/common"
	"github.com/carrousel-labs/review-proxy/api/handler/review"
	"github.com/carrousel-labs/review-proxy/api/handler/status"
	"github.com/carrousel-labs/review-proxy/cache"
	"github.com/carrousel-labs/review-proxy/config"
	"github.com/carrousel-labs/review-proxy/reviews"
)

func Register(router fiber.Router, cfg *config.Config, logger *slog.Logger, store cache.Store, svc *reviews.Service) {
	base := common.NewBaseHandler(cfg, logger, store, svc)
	handlers := []common.HandlerRegistrar{
		status.NewStatusHandler(base),
		review.NewReviewHandler(base),
		admin.NewAdminHandler(base),
	}

	for _, handler := range handlers {
		handler.Register(router)
	}
}
