package common

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/carrousel-labs/review-proxy/cache"
	"github.com/carrousel-labs/review-proxy/config"
	"github.com/carrousel-labs/review-proxy/metrics"
	"github.com/carrousel-labs/review-proxy/reviews"
)

type HandlerRegistrar interface {
	Register(router fiber.Router)
}

type BaseHandler struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   cache.Store
	reviews *reviews.Service
}

func NewBaseHandler(cfg *config.Config, logger *slog.Logger, store cache.Store, svc *reviews.Service) *BaseHandler {
	return &BaseHandler{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		reviews: svc,
	}
}

func (h *BaseHandler) GetConfig() *config.Config           { return h.cfg }
func (h *BaseHandler) GetLogger() *slog.Logger             { return h.logger }
func (h *BaseHandler) GetStore() cache.Store               { return h.store }
func (h *BaseHandler) GetReviewsService() *reviews.Service { return h.reviews }

// TrackError tracks errors in handlers
func (h *BaseHandler) TrackError(errorType string) {
	metrics.TrackError("api", errorType)
}
