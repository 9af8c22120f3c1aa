package dto

import (
	"time"

	"bloodbridge.app/engage/internal/model"
)

type CreateRequestRequest struct {
	RequesterName  string `json:"requester_name" binding:"required,min=1,max=255"`
	RequesterPhone string `json:"requester_phone" binding:"required,min=5,max=32"`
	BloodGroup     string `json:"blood_group" binding:"required,min=2,max=3"`
	Units          int    `json:"units" binding:"required,min=1"`
	Urgency        string `json:"urgency,omitempty" binding:"omitempty,oneof=normal urgent critical"`
	Location       string `json:"location,omitempty" binding:"omitempty,max=255"`
	Notify         bool   `json:"notify,omitempty"`
}

type UpdateRequestStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=open matched closed"`
}

type RequestResponse struct {
	ID             int64     `json:"id,string"`
	RequesterName  string    `json:"requester_name"`
	RequesterPhone string    `json:"requester_phone"`
	BloodGroup     string    `json:"blood_group"`
	Units          int       `json:"units"`
	Urgency        string    `json:"urgency"`
	Location       string    `json:"location"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

func ToRequestResponse(r *model.Request) *RequestResponse {
	return &RequestResponse{
		ID:             r.ID,
		RequesterName:  r.RequesterName,
		RequesterPhone: r.RequesterPhone,
		BloodGroup:     r.BloodGroup,
		Units:          r.Units,
		Urgency:        string(r.Urgency),
		Location:       r.Location,
		Status:         string(r.Status),
		CreatedAt:      r.CreatedAt,
	}
}

type CreateRequestResponse struct {
	Request         *RequestResponse `json:"request"`
	DonorsContacted int              `json:"donors_contacted"`
}
