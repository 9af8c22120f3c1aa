package router

import (
	"github.com/gin-gonic/gin"

	"bloodbridge.app/engage/internal/http/handler"
)

func MessageRouter(rg *gin.RouterGroup, h *handler.MessageHandler) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
}
