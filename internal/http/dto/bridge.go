package dto

import (
	"time"

	"bloodbridge.app/engage/internal/model"
)

type CreateBridgeRequest struct {
	RequestID   int64   `json:"request_id,string" binding:"required"`
	DonorUserID int64   `json:"donor_user_id,string" binding:"required"`
	Notes       *string `json:"notes,omitempty" binding:"omitempty,max=1024"`
}

type UpdateBridgeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed declined completed"`
}

type BridgeResponse struct {
	ID          int64      `json:"id,string"`
	RequestID   int64      `json:"request_id,string"`
	DonorUserID int64      `json:"donor_user_id,string"`
	Status      string     `json:"status"`
	ContactedAt time.Time  `json:"contacted_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
}

func ToBridgeResponse(b *model.Bridge) *BridgeResponse {
	return &BridgeResponse{
		ID:          b.ID,
		RequestID:   b.RequestID,
		DonorUserID: b.DonorUserID,
		Status:      string(b.Status),
		ContactedAt: b.ContactedAt,
		ConfirmedAt: b.ConfirmedAt,
		Notes:       b.Notes,
	}
}

func ToBridgeResponses(bridges []model.Bridge) []BridgeResponse {
	out := make([]BridgeResponse, 0, len(bridges))
	for i := range bridges {
		out = append(out, *ToBridgeResponse(&bridges[i]))
	}
	return out
}
