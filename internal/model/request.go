package model

import "time"

type RequestStatus string

const (
	RequestOpen    RequestStatus = "open"
	RequestMatched RequestStatus = "matched"
	RequestClosed  RequestStatus = "closed"
)

// ValidRequestStatus reports whether s names a known request status.
// Transitions are not guarded beyond this; the coordinator path sets status
// directly.
func ValidRequestStatus(s RequestStatus) bool {
	switch s {
	case RequestOpen, RequestMatched, RequestClosed:
		return true
	}
	return false
}

type Urgency string

const (
	UrgencyNormal   Urgency = "normal"
	UrgencyUrgent   Urgency = "urgent"
	UrgencyCritical Urgency = "critical"
)

// Request is a unit of blood need.
type Request struct {
	ID             int64         `json:"id"`
	RequesterName  string        `json:"requester_name"`
	RequesterPhone string        `json:"requester_phone"`
	BloodGroup     string        `json:"blood_group"`
	Units          int           `json:"units"`
	Urgency        Urgency       `json:"urgency"`
	Location       string        `json:"location"`
	Status         RequestStatus `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
}
