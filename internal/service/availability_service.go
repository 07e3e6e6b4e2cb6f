package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"vagalivre/internal/db"
	"vagalivre/internal/entities"
	apperrors "vagalivre/internal/errors"
	"vagalivre/internal/repository"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// AvailabilityService answers what is free and occupied per slot, and
// applies owner edits to the declared availability windows.
type AvailabilityService struct {
	spots        repository.SpotStore
	windows      repository.AvailabilityStore
	reservations repository.ReservationStore
	log          zerolog.Logger
}

func NewAvailabilityService(spots repository.SpotStore, windows repository.AvailabilityStore, reservations repository.ReservationStore, log zerolog.Logger) *AvailabilityService {
	return &AvailabilityService{spots: spots, windows: windows, reservations: reservations, log: log}
}

// GetAvailability computes, for each requested date, the occupied
// [start, end) ranges of every slot from 1 up to the largest quantity
// offered by that date's windows. A date with no window yields an empty
// slot list. A date string that fails to parse yields a per-date error
// entry; the remaining dates are still answered.
func (s *AvailabilityService) GetAvailability(ctx context.Context, spotID int64, dates []string) (*entities.AvailabilityResponse, error) {
	if _, err := s.spots.GetByID(ctx, spotID); err != nil {
		return nil, err
	}

	resp := &entities.AvailabilityResponse{SpotID: spotID, Dates: make([]entities.DateAvailability, 0, len(dates))}
	for _, dateStr := range dates {
		date, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			resp.Dates = append(resp.Dates, entities.DateAvailability{
				Date:  dateStr,
				Error: "invalid date: use YYYY-MM-DD",
				Slots: []entities.SlotOccupancy{},
			})
			continue
		}

		entry, err := s.dateAvailability(ctx, spotID, dateStr, date)
		if err != nil {
			return nil, err
		}
		resp.Dates = append(resp.Dates, *entry)
	}
	return resp, nil
}

func (s *AvailabilityService) dateAvailability(ctx context.Context, spotID int64, dateStr string, date time.Time) (*entities.DateAvailability, error) {
	entry := &entities.DateAvailability{Date: dateStr, Slots: []entities.SlotOccupancy{}}

	windows, err := s.windows.ListForSpotOnDate(ctx, spotID, date)
	if err != nil {
		return nil, err
	}
	maxQuantity := 0
	for _, w := range windows {
		if w.Quantity > maxQuantity {
			maxQuantity = w.Quantity
		}
	}
	if maxQuantity == 0 {
		return entry, nil
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)
	reservations, err := s.reservations.ListForSpotBetween(ctx, spotID, dayStart, dayEnd, db.BlockingStatuses)
	if err != nil {
		return nil, err
	}

	for slot := 1; slot <= maxQuantity; slot++ {
		occupancy := entities.SlotOccupancy{SlotNumber: slot, Occupied: []entities.TimeRange{}}
		for _, res := range reservations {
			if res.SlotNumber != slot {
				continue
			}
			occupancy.Occupied = append(occupancy.Occupied, entities.TimeRange{
				StartTime: res.StartTime,
				EndTime:   res.EndTime,
			})
		}
		entry.Slots = append(entry.Slots, occupancy)
	}
	return entry, nil
}

// ReplaceWindows validates and applies an owner's availability edit.
// The previous windows of the spot are discarded wholesale; partial
// merges are not supported.
func (s *AvailabilityService) ReplaceWindows(ctx context.Context, ownerID, spotID int64, reqs []entities.AvailabilityWindowRequest) ([]db.AvailabilityWindow, error) {
	spot, err := s.spots.GetByID(ctx, spotID)
	if err != nil {
		return nil, err
	}
	if spot.OwnerID != ownerID {
		return nil, apperrors.Permissionf("only the spot owner can edit availability")
	}

	seen := make(map[string]bool, len(reqs))
	windows := make([]db.AvailabilityWindow, 0, len(reqs))
	for _, req := range reqs {
		date, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			return nil, apperrors.Validationf("invalid date %q: use YYYY-MM-DD", req.Date)
		}
		startTime, err := time.Parse(timeLayout, req.StartTime)
		if err != nil {
			return nil, apperrors.Validationf("invalid start_time %q: use HH:MM", req.StartTime)
		}
		endTime, err := time.Parse(timeLayout, req.EndTime)
		if err != nil {
			return nil, apperrors.Validationf("invalid end_time %q: use HH:MM", req.EndTime)
		}
		if !endTime.After(startTime) {
			return nil, apperrors.InvalidInterval()
		}
		if req.Quantity < 1 {
			return nil, apperrors.Validationf("quantity must be at least 1")
		}
		if req.Quantity > spot.Capacity {
			return nil, apperrors.Validationf("quantity %d exceeds spot capacity %d", req.Quantity, spot.Capacity)
		}

		key := req.Date + "/" + req.StartTime + "/" + req.EndTime
		if seen[key] {
			return nil, apperrors.Validationf("duplicate availability window %s %s-%s", req.Date, req.StartTime, req.EndTime)
		}
		seen[key] = true

		windows = append(windows, db.AvailabilityWindow{
			SpotID:    spotID,
			Date:      date,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
			Quantity:  req.Quantity,
		})
	}

	if err := s.windows.ReplaceForSpot(ctx, spotID, windows); err != nil {
		return nil, err
	}
	s.log.Info().Int64("spot_id", spotID).Int("windows", len(windows)).Msg("availability replaced")
	return windows, nil
}
