package dto

import (
	"time"

	"bloodbridge.app/engage/internal/model"
)

type CreateMessageRequest struct {
	UserID    *int64  `json:"user_id,string,omitempty"`
	Channel   string  `json:"channel" binding:"required,max=32"`
	Direction string  `json:"direction" binding:"required,oneof=in out"`
	Text      string  `json:"text" binding:"required"`
	Intent    *string `json:"intent,omitempty" binding:"omitempty,max=64"`
}

type MessageResponse struct {
	ID        int64     `json:"id,string"`
	UserID    *int64    `json:"user_id,string,omitempty"`
	Channel   string    `json:"channel"`
	Direction string    `json:"direction"`
	Text      string    `json:"text"`
	Intent    *string   `json:"intent,omitempty"`
	Timestamp time.Time `json:"ts"`
}

func ToMessageResponse(m *model.Message) *MessageResponse {
	return &MessageResponse{
		ID:        m.ID,
		UserID:    m.UserID,
		Channel:   m.Channel,
		Direction: string(m.Direction),
		Text:      m.Text,
		Intent:    m.Intent,
		Timestamp: m.Timestamp,
	}
}

func ToMessageResponses(messages []model.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(messages))
	for i := range messages {
		out = append(out, *ToMessageResponse(&messages[i]))
	}
	return out
}
