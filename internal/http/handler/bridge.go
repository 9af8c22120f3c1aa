package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"

	"bloodbridge.app/engage/internal/http/dto"
	"bloodbridge.app/engage/internal/model"
	"bloodbridge.app/engage/internal/service"
	"bloodbridge.app/engage/internal/store"
)

const pgFKViolation = "23503"

type BridgeHandler struct {
	bridges service.BridgeService
}

func NewBridgeHandler(bridges service.BridgeService) *BridgeHandler {
	return &BridgeHandler{bridges: bridges}
}

// Create opens a bridge outside the alert fan-out, for donors reached by
// phone or in person.
func (h *BridgeHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var body dto.CreateBridgeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bridge, err := h.bridges.Create(ctx, body.RequestID, body.DonorUserID, body.Notes)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgFKViolation {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown request or donor"})
			return
		}
		slog.ErrorContext(ctx, "failed to create bridge", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create bridge"})
		return
	}

	c.JSON(http.StatusCreated, dto.ToBridgeResponse(bridge))
}

// List returns the bridges fanned out for one request.
func (h *BridgeHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	requestID, err := strconv.ParseInt(c.Query("request_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request_id is required"})
		return
	}

	bridges, err := h.bridges.ListByRequest(ctx, requestID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list bridges", "error", err, "request_id", requestID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list bridges"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bridges": dto.ToBridgeResponses(bridges), "count": len(bridges)})
}

func (h *BridgeHandler) GetByID(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bridge id"})
		return
	}

	bridge, err := h.bridges.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "bridge not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch bridge"})
		return
	}

	c.JSON(http.StatusOK, dto.ToBridgeResponse(bridge))
}

// UpdateStatus is the coordinator path for transitions the bot never makes,
// e.g. marking a confirmed bridge completed after the donation.
func (h *BridgeHandler) UpdateStatus(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bridge id"})
		return
	}

	var body dto.UpdateBridgeStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bridge, err := h.bridges.UpdateStatus(ctx, id, model.BridgeStatus(body.Status))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "bridge not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to update bridge status", "error", err, "bridge_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update bridge"})
		return
	}

	c.JSON(http.StatusOK, dto.ToBridgeResponse(bridge))
}
