package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"bloodbridge.app/engage/common/logger"
	"bloodbridge.app/engage/internal/service"
)

// WebhookHandler receives inbound channel callbacks (Twilio webhook shape).
type WebhookHandler struct {
	dispatcher service.Dispatcher
}

func NewWebhookHandler(dispatcher service.Dispatcher) *WebhookHandler {
	return &WebhookHandler{dispatcher: dispatcher}
}

// HandleInbound processes one inbound message. It always acknowledges with
// 200 regardless of the processing outcome: the channel provider retries
// non-2xx responses and a retry would re-run commands that already executed.
func (h *WebhookHandler) HandleInbound(c *gin.Context) {
	ctx := c.Request.Context()

	from := c.PostForm("From")
	body := c.PostForm("Body")

	if from == "" {
		slog.WarnContext(ctx, "inbound webhook without sender, ignoring")
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	slog.InfoContext(ctx, "inbound message received",
		"from", from,
		"body", logger.Truncate(body, 120))

	if err := h.dispatcher.HandleInbound(ctx, from, body); err != nil {
		slog.ErrorContext(ctx, "inbound processing failed", "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
