package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bloodbridge.app/engage/common/id"
	"bloodbridge.app/engage/internal/http/dto"
	"bloodbridge.app/engage/internal/model"
	"bloodbridge.app/engage/internal/store"
)

const defaultMessageLimit = 50

type MessageHandler struct {
	messages store.MessageStore
}

func NewMessageHandler(messages store.MessageStore) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// Create records a message exchanged off-platform, e.g. a coordinator's
// phone call, so the conversation log stays complete.
func (h *MessageHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var body dto.CreateMessageRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg := &model.Message{
		ID:        id.New(),
		UserID:    body.UserID,
		Channel:   body.Channel,
		Direction: model.Direction(body.Direction),
		Text:      body.Text,
		Intent:    body.Intent,
	}
	if err := h.messages.Create(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "failed to record message", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record message"})
		return
	}

	c.JSON(http.StatusCreated, dto.ToMessageResponse(msg))
}

func (h *MessageHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var userID *int64
	if s := c.Query("user_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}
		userID = &id
	}

	limit := defaultMessageLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	messages, err := h.messages.List(ctx, userID, limit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list messages", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": dto.ToMessageResponses(messages), "count": len(messages)})
}
