package service

import (
	"context"

	"github.com/rs/zerolog"

	"vagalivre/internal/db"
	"vagalivre/internal/entities"
	apperrors "vagalivre/internal/errors"
	"vagalivre/internal/repository"
)

// SpotService is the listing side of the marketplace. The booking core
// only ever reads capacity, owner and rate from it.
type SpotService struct {
	spots repository.SpotStore
	log   zerolog.Logger
}

func NewSpotService(spots repository.SpotStore, log zerolog.Logger) *SpotService {
	return &SpotService{spots: spots, log: log}
}

func (s *SpotService) CreateSpot(ctx context.Context, ownerID int64, req entities.SpotRequest) (*db.Spot, error) {
	if req.Title == "" {
		return nil, apperrors.Validationf("title is required")
	}
	if req.HourlyRateCents <= 0 {
		return nil, apperrors.Validationf("hourly_rate_cents must be positive")
	}
	if req.Capacity < 1 {
		return nil, apperrors.Validationf("capacity must be at least 1")
	}

	spot := &db.Spot{
		OwnerID:         ownerID,
		Title:           req.Title,
		Address:         req.Address,
		HourlyRateCents: req.HourlyRateCents,
		Capacity:        req.Capacity,
	}
	if err := s.spots.Create(ctx, spot); err != nil {
		return nil, err
	}
	s.log.Info().Int64("spot_id", spot.ID).Int64("owner_id", ownerID).Msg("spot created")
	return spot, nil
}

func (s *SpotService) GetSpot(ctx context.Context, id int64) (*db.Spot, error) {
	return s.spots.GetByID(ctx, id)
}

func (s *SpotService) ListSpots(ctx context.Context) ([]db.Spot, error) {
	return s.spots.List(ctx)
}

func (s *SpotService) ListOwnerSpots(ctx context.Context, ownerID int64) ([]db.Spot, error) {
	return s.spots.ListByOwner(ctx, ownerID)
}
