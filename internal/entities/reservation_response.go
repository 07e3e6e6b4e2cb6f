package entities

import (
	"time"

	"vagalivre/internal/db"
)

type ReservationResponse struct {
	ID              int64     `json:"id"`
	Code            string    `json:"code"`
	SpotID          int64     `json:"spot_id"`
	SlotNumber      int       `json:"slot_number"`
	RenterID        int64     `json:"renter_id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Status          string    `json:"status"`
	TotalPriceCents int64     `json:"total_price_cents"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewReservationResponse(r *db.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:              r.ID,
		Code:            r.Code,
		SpotID:          r.SpotID,
		SlotNumber:      r.SlotNumber,
		RenterID:        r.RenterID,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		Status:          r.Status,
		TotalPriceCents: r.TotalPriceCents,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}
