package api

import (
	v1 "github.com/flexprice/donorsync/internal/api/v1"
	"github.com/flexprice/donorsync/internal/config"
	"github.com/flexprice/donorsync/internal/logger"
	"github.com/flexprice/donorsync/internal/rest/middleware"
	"github.com/flexprice/donorsync/internal/sentry"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Health  *v1.HealthHandler
	Webhook *v1.WebhookHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger, sentrySvc *sentry.Service) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.SentryMiddleware(cfg),
		middleware.RequestIDMiddleware,
		middleware.AccessLogMiddleware(logger),
		middleware.ErrorHandler(logger, sentrySvc),
	)

	router.GET("/health", handlers.Health.Health)
	router.POST("/health", handlers.Health.Health)

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	// Cardcom webhooks
	cardcom := router.Group("/webhooks/cardcom")
	{
		cardcom.POST("/donation", handlers.Webhook.DonationWebhook)
		cardcom.POST("/recurring", handlers.Webhook.RecurringStatusWebhook)
	}
}
