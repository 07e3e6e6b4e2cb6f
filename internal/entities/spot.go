package entities

import (
	"time"

	"vagalivre/internal/db"
)

type SpotRequest struct {
	Title           string `json:"title"`
	Address         string `json:"address"`
	HourlyRateCents int64  `json:"hourly_rate_cents"`
	Capacity        int    `json:"capacity"`
}

type SpotResponse struct {
	ID              int64     `json:"id"`
	OwnerID         int64     `json:"owner_id"`
	Title           string    `json:"title"`
	Address         string    `json:"address"`
	HourlyRateCents int64     `json:"hourly_rate_cents"`
	Capacity        int       `json:"capacity"`
	CreatedAt       time.Time `json:"created_at"`
}

func NewSpotResponse(s *db.Spot) SpotResponse {
	return SpotResponse{
		ID:              s.ID,
		OwnerID:         s.OwnerID,
		Title:           s.Title,
		Address:         s.Address,
		HourlyRateCents: s.HourlyRateCents,
		Capacity:        s.Capacity,
		CreatedAt:       s.CreatedAt,
	}
}
