package review

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/carrousel-labs/review-proxy/api/handler/common"
	"github.com/carrousel-labs/review-proxy/reviews"
	"github.com/carrousel-labs/review-proxy/sentry_integration"
)

const (
	headerXCache = "X-Cache"
	cacheHit     = "hit"
	cacheMiss    = "miss"
)

// GetReviews handles GET /reviews/v1/reviews
// @Summary Get reviews
// @Description Get one page of normalized reviews for a business domain. Served from the cache when possible.
// @Tags Reviews
// @Accept json
// @Produce json
// @Param domain query string true "Business domain, e.g. example.com"
// @Param page query int false "Page number, default is 1"
// @Param limit query int false "Reviews per page (1-100), default is 20"
// @Param rating query int false "Only reviews with this star rating (1-5)"
// @Param sort query string false "Sort order, latest or rating. default is latest"
// @Success 200 {object} reviews.ReviewsData
// @Header 200 {string} X-Cache "hit or miss"
// @Router /api/reviews/v1/reviews [get]
func (h *ReviewHandler) GetReviews(c *fiber.Ctx) error {
	params, err := reviews.ParamsFromQuery(func(key string) string {
		// params outlive the request, so copy out of fiber's buffers
		return utils.CopyString(c.Query(key))
	})
	if err != nil {
		h.TrackError("invalid_params")
		return common.ToFiberError(err)
	}

	tx, ctx := sentry_integration.StartSentryTransaction(c.UserContext(), "reviews.get", params.Domain)
	defer tx.Finish()

	data, hit, err := h.GetReviewsService().FetchReviews(ctx, params)
	if err != nil {
		fiberErr := common.ToFiberError(err)
		if fiberErr.Code >= fiber.StatusInternalServerError {
			h.TrackError("upstream")
			h.GetLogger().Error("GetReviews",
				slog.String("domain", params.Domain),
				slog.Any("error", err))
		}
		return fiberErr
	}

	if hit {
		c.Set(headerXCache, cacheHit)
	} else {
		c.Set(headerXCache, cacheMiss)
	}
	return c.JSON(data)
}
