package router

import (
	"github.com/gin-gonic/gin"

	"bloodbridge.app/engage/internal/http/handler"
	"bloodbridge.app/engage/internal/http/middleware"
	"bloodbridge.app/engage/internal/service"
)

type RouterConfig struct {
	AdminAPIKey string
	RankLimit   int
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	webhookHandler := handler.NewWebhookHandler(services.Dispatcher())
	BotRouter(router.Group("/bot"), webhookHandler)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AdminAuth(cfg.AdminAPIKey))
	{
		donorHandler := handler.NewDonorHandler(services.Ranking())
		DonorRouter(v1.Group("/donors"), donorHandler)

		requestHandler := handler.NewRequestHandler(
			services.Requests(), services.Bridges(), services.Ranking(), services.Notifier(), cfg.RankLimit)
		RequestRouter(v1.Group("/requests"), requestHandler)

		bridgeHandler := handler.NewBridgeHandler(services.Bridges())
		BridgeRouter(v1.Group("/bridges"), bridgeHandler)

		messageHandler := handler.NewMessageHandler(services.Messages())
		MessageRouter(v1.Group("/messages"), messageHandler)
	}
}
