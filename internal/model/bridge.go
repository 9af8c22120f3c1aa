package model

import "time"

type BridgeStatus string

const (
	BridgePending   BridgeStatus = "pending"
	BridgeConfirmed BridgeStatus = "confirmed"
	BridgeDeclined  BridgeStatus = "declined"
	BridgeCompleted BridgeStatus = "completed" // set by the coordinator, not the bot
)

func ValidBridgeStatus(s BridgeStatus) bool {
	switch s {
	case BridgePending, BridgeConfirmed, BridgeDeclined, BridgeCompleted:
		return true
	}
	return false
}

// Bridge links one request to one candidate donor and tracks the donor's
// reply. At most one bridge per donor should be pending at a time; the reply
// path resolves the most recently created pending one.
type Bridge struct {
	ID          int64        `json:"id"`
	RequestID   int64        `json:"request_id"`
	DonorUserID int64        `json:"donor_user_id"`
	Status      BridgeStatus `json:"status"`
	ContactedAt time.Time    `json:"contacted_at"`
	ConfirmedAt *time.Time   `json:"confirmed_at,omitempty"`
	Notes       *string      `json:"notes,omitempty"`
}
