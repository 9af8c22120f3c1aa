package router

import (
	"github.com/gin-gonic/gin"

	"bloodbridge.app/engage/internal/http/handler"
)

func BotRouter(rg *gin.RouterGroup, h *handler.WebhookHandler) {
	rg.POST("/inbound", h.HandleInbound)
}
