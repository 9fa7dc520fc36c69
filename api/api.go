package api

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/gofiber/swagger"

	"github.com/carrousel-labs/review-proxy/api/docs"
	"github.com/carrousel-labs/review-proxy/api/handler"
	"github.com/carrousel-labs/review-proxy/cache"
	"github.com/carrousel-labs/review-proxy/config"
	"github.com/carrousel-labs/review-proxy/reviews"
)

const appName = "Review Proxy API"

type Api struct {
	app    *fiber.App
	cfg    *config.Config
	logger *slog.Logger
}

// @title Review Proxy API
// @version 1.0
// @description Cached proxy for business review pages
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @tag.name Reviews
// @tag.description Review pages served to the carousel widget

// @tag.name Admin
// @tag.description Cache administration, enabled by ADMIN_TOKEN
func New(cfg *config.Config, logger *slog.Logger, store cache.Store, svc *reviews.Service) *Api {
	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ErrorHandler:          createErrorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(trackHTTPMetrics())
	addCORS(app, cfg, logger)

	app.Get("/health", health)

	api := app.Group("/api")
	addRateLimiter(api, cfg, logger)
	handler.Register(api, cfg, logger, store, svc)

	// Swagger documentation
	swaggerConfig := swagger.Config{
		URL:         "/swagger/doc.json",
		DeepLinking: true,
		TagsSorter: template.JS(`function(a, b) {
			const order = ["Reviews", "App", "Admin"];
			return order.indexOf(a) - order.indexOf(b);
		}`),
	}

	app.Get("/swagger/*", swagger.New(swaggerConfig))

	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%s", cfg.GetListenPort())
	docs.SwaggerInfo.Title = appName

	return &Api{
		app:    app,
		cfg:    cfg,
		logger: logger,
	}
}

// createErrorHandler creates the error handler function for the fiber app
func createErrorHandler(logger *slog.Logger) func(c *fiber.Ctx, err error) error {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		e := &fiber.Error{}
		if errors.As(err, &e) {
			code = e.Code
		}

		errString := err.Error()
		if code >= fiber.StatusInternalServerError && !strings.HasPrefix(errString, "Cannot GET") {
			logger.Error(errString, "path", c.Path(), "method", c.Method())
		}

		if code >= fiber.StatusInternalServerError {
			return c.Status(code).SendString(utils.StatusMessage(code))
		}
		return c.Status(code).SendString(errString)
	}
}

func (a *Api) Start() error {
	listenAddr := ":" + a.cfg.GetListenPort()

	a.logger.Info("starting API server", slog.String("addr", listenAddr))
	return a.app.Listen(listenAddr)
}

func (a *Api) Shutdown(ctx context.Context) error {
	return a.app.ShutdownWithContext(ctx)
}

// health handles GET /health
// @Summary Health check
// @Tags App
// @Success 200 "OK"
// @Router /health [get]
func health(c *fiber.Ctx) error {
	return c.SendString("OK")
}
