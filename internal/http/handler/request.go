package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"bloodbridge.app/engage/internal/bot"
	"bloodbridge.app/engage/internal/http/dto"
	"bloodbridge.app/engage/internal/model"
	"bloodbridge.app/engage/internal/service"
	"bloodbridge.app/engage/internal/store"
)

type RequestHandler struct {
	requests  service.RequestService
	bridges   service.BridgeService
	ranking   service.RankingService
	notifier  service.NotifierService
	rankLimit int
}

func NewRequestHandler(requests service.RequestService, bridges service.BridgeService, ranking service.RankingService, notifier service.NotifierService, rankLimit int) *RequestHandler {
	return &RequestHandler{
		requests:  requests,
		bridges:   bridges,
		ranking:   ranking,
		notifier:  notifier,
		rankLimit: rankLimit,
	}
}

// Create registers a blood request from the coordinator API. With notify set
// it also ranks donors and fans out alerts, same as the bot path.
func (h *RequestHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.requests.Create(ctx, service.CreateRequestParams{
		RequesterName:  req.RequesterName,
		RequesterPhone: req.RequesterPhone,
		BloodGroup:     req.BloodGroup,
		Units:          req.Units,
		Urgency:        req.Urgency,
		Location:       req.Location,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidBloodGroup) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid blood group"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create request"})
		return
	}

	contacted := 0
	if req.Notify {
		contacted = h.notify(c, created)
	}

	c.JSON(http.StatusCreated, dto.CreateRequestResponse{
		Request:         dto.ToRequestResponse(created),
		DonorsContacted: contacted,
	})
}

func (h *RequestHandler) notify(c *gin.Context, created *model.Request) int {
	ctx := c.Request.Context()

	location := created.Location
	var locFilter *string
	if location != "" && !strings.EqualFold(location, bot.DefaultLocation) {
		locFilter = &location
	}

	ranked, err := h.ranking.Rank(ctx, service.RankParams{
		BloodGroup: &created.BloodGroup,
		Location:   locFilter,
		Limit:      h.rankLimit,
	})
	if err != nil {
		// The request exists; alerting is best-effort on this path too.
		slog.ErrorContext(ctx, "ranking failed for coordinator request",
			"error", err,
			"request_id", created.ID)
		return 0
	}

	return h.notifier.Fanout(ctx, created, ranked)
}

func (h *RequestHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var status *model.RequestStatus
	if s := c.Query("status"); s != "" {
		st := model.RequestStatus(s)
		if !model.ValidRequestStatus(st) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
			return
		}
		status = &st
	}

	reqs, err := h.requests.List(ctx, status)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list requests", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list requests"})
		return
	}

	out := make([]dto.RequestResponse, 0, len(reqs))
	for i := range reqs {
		out = append(out, *dto.ToRequestResponse(&reqs[i]))
	}
	c.JSON(http.StatusOK, gin.H{"requests": out, "count": len(out)})
}

func (h *RequestHandler) GetByID(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	req, err := h.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch request"})
		return
	}

	c.JSON(http.StatusOK, dto.ToRequestResponse(req))
}

func (h *RequestHandler) UpdateStatus(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	var body dto.UpdateRequestStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := h.requests.UpdateStatus(ctx, id, model.RequestStatus(body.Status))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to update request status", "error", err, "request_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update request"})
		return
	}

	c.JSON(http.StatusOK, dto.ToRequestResponse(req))
}

// ListBridges returns the engagement state of every donor contacted for a
// request.
func (h *RequestHandler) ListBridges(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	bridges, err := h.bridges.ListByRequest(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list bridges", "error", err, "request_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list bridges"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bridges": dto.ToBridgeResponses(bridges), "count": len(bridges)})
}
