package router

import (
	"github.com/gin-gonic/gin"

	"bloodbridge.app/engage/internal/http/handler"
)

func RequestRouter(rg *gin.RouterGroup, h *handler.RequestHandler) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id/status", h.UpdateStatus)
	rg.GET("/:id/bridges", h.ListBridges)
}
