package router

import (
	"github.com/gin-gonic/gin"

	"bloodbridge.app/engage/internal/http/handler"
)

func DonorRouter(rg *gin.RouterGroup, h *handler.DonorHandler) {
	rg.POST("/rank", h.Rank)
}
