package dto

import (
	"bloodbridge.app/engage/internal/model"
	"bloodbridge.app/engage/internal/service"
)

type RankDonorsRequest struct {
	BloodGroup *string `json:"blood_group,omitempty" binding:"omitempty,min=2,max=3"`
	Location   *string `json:"location,omitempty" binding:"omitempty,max=255"`
	Limit      int     `json:"limit,omitempty" binding:"omitempty,min=1,max=50"`
}

type RankedDonorResponse struct {
	ID         int64   `json:"id,string"`
	Name       string  `json:"name"`
	Phone      string  `json:"phone"`
	BloodGroup *string `json:"blood_group,omitempty"`
	Location   *string `json:"location,omitempty"`
	OptedIn    bool    `json:"opted_in"`
	Score      float64 `json:"score"`
}

type RankDonorsResponse struct {
	Donors []RankedDonorResponse `json:"donors"`
	Count  int                   `json:"count"`
}

func ToRankDonorsResponse(ranked []service.RankedDonor) *RankDonorsResponse {
	donors := make([]RankedDonorResponse, 0, len(ranked))
	for _, d := range ranked {
		donors = append(donors, RankedDonorResponse{
			ID:         d.ID,
			Name:       d.Name,
			Phone:      d.Phone,
			BloodGroup: d.BloodGroup,
			Location:   d.Location,
			OptedIn:    d.OptedIn,
			Score:      d.Score,
		})
	}
	return &RankDonorsResponse{Donors: donors, Count: len(donors)}
}

type DonorResponse struct {
	ID         int64   `json:"id,string"`
	Name       string  `json:"name"`
	Phone      string  `json:"phone"`
	BloodGroup *string `json:"blood_group,omitempty"`
	Location   *string `json:"location,omitempty"`
	OptedIn    bool    `json:"opted_in"`
}

func ToDonorResponse(u *model.User) *DonorResponse {
	return &DonorResponse{
		ID:         u.ID,
		Name:       u.Name,
		Phone:      u.Phone,
		BloodGroup: u.BloodGroup,
		Location:   u.Location,
		OptedIn:    u.OptedIn,
	}
}
