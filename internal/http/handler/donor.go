package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"bloodbridge.app/engage/internal/http/dto"
	"bloodbridge.app/engage/internal/service"
)

type DonorHandler struct {
	ranking service.RankingService
}

func NewDonorHandler(ranking service.RankingService) *DonorHandler {
	return &DonorHandler{ranking: ranking}
}

func (h *DonorHandler) Rank(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RankDonorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid rank request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ranked, err := h.ranking.Rank(ctx, service.RankParams{
		BloodGroup: req.BloodGroup,
		Location:   req.Location,
		Limit:      req.Limit,
	})
	if err != nil {
		slog.ErrorContext(ctx, "donor ranking failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rank donors"})
		return
	}

	c.JSON(http.StatusOK, dto.ToRankDonorsResponse(ranked))
}
