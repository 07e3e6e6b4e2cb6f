package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vagalivre/internal/db"
	"vagalivre/internal/entities"
	apperrors "vagalivre/internal/errors"
	"vagalivre/internal/events"
	"vagalivre/internal/repository"
)

// BookingService is the entry point for the reservation lifecycle:
// create (renter), approve/refuse (owner), cancel (renter). State
// transitions emit events for the chat and notification collaborators;
// the transitions themselves never depend on event delivery.
type BookingService struct {
	reservations repository.ReservationStore
	spots        repository.SpotStore
	bus          *events.Bus
	log          zerolog.Logger
	now          func() time.Time
}

func NewBookingService(reservations repository.ReservationStore, spots repository.SpotStore, bus *events.Bus, log zerolog.Logger) *BookingService {
	return &BookingService{
		reservations: reservations,
		spots:        spots,
		bus:          bus,
		log:          log,
		now:          time.Now,
	}
}

// CreateReservation validates a booking request and persists it as
// pending. Validation order: interval parses and is well-formed, start
// is not in the past, slot number is within the spot's capacity, the
// renter is not the owner, and no blocking reservation overlaps.
func (s *BookingService) CreateReservation(ctx context.Context, renterID int64, req entities.BookingRequest) (*db.Reservation, error) {
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, apperrors.Validationf("invalid start_time: use RFC 3339, e.g. 2025-07-23T10:00:00Z")
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return nil, apperrors.Validationf("invalid end_time: use RFC 3339, e.g. 2025-07-23T12:00:00Z")
	}
	if !end.After(start) {
		return nil, apperrors.InvalidInterval()
	}
	if start.Before(s.now()) {
		return nil, apperrors.Validationf("cannot reserve a slot in the past")
	}

	spot, err := s.spots.GetByID(ctx, req.SpotID)
	if err != nil {
		return nil, err
	}
	if req.SlotNumber < 1 || req.SlotNumber > spot.Capacity {
		return nil, apperrors.Validationf("slot_number must be between 1 and %d", spot.Capacity)
	}
	if renterID == spot.OwnerID {
		return nil, apperrors.Permissionf("owners cannot reserve their own spot")
	}

	blocking, err := s.reservations.ListBlocking(ctx, spot.ID, req.SlotNumber, db.BlockingStatuses, 0)
	if err != nil {
		return nil, err
	}
	if c := FindConflict(blocking, start, end); c != nil {
		return nil, apperrors.Conflictf("slot %d of spot %d is already reserved for part or all of the requested period", req.SlotNumber, spot.ID)
	}

	price, err := TotalPriceCents(start, end, spot.HourlyRateCents)
	if err != nil {
		return nil, err
	}

	res := &db.Reservation{
		Code:            uuid.NewString(),
		SpotID:          spot.ID,
		SlotNumber:      req.SlotNumber,
		RenterID:        renterID,
		StartTime:       start,
		EndTime:         end,
		Status:          db.StatusPending,
		TotalPriceCents: price,
	}
	// The store repeats the overlap check atomically with the insert.
	if err := s.reservations.Create(ctx, res); err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("reservation_id", res.ID).
		Int64("spot_id", spot.ID).
		Int("slot", res.SlotNumber).
		Int64("renter_id", renterID).
		Msg("reservation created")
	s.bus.Publish(events.Event{Type: events.ReservationCreated, Reservation: *res, OwnerID: spot.OwnerID})
	return res, nil
}

// ApproveReservation confirms a pending request. Only the spot's owner
// may approve. The store re-runs the overlap check against confirmed
// reservations (excluding this one) atomically with the transition, so
// approving one of two competing pendings invalidates the other.
func (s *BookingService) ApproveReservation(ctx context.Context, ownerID, reservationID int64) (*db.Reservation, error) {
	_, spot, err := s.reservationWithSpot(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if spot.OwnerID != ownerID {
		return nil, apperrors.Permissionf("only the spot owner can approve a reservation")
	}

	updated, err := s.reservations.Confirm(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("reservation_id", reservationID).Int64("owner_id", ownerID).Msg("reservation approved")
	s.bus.Publish(events.Event{Type: events.ReservationApproved, Reservation: *updated, OwnerID: spot.OwnerID})
	return updated, nil
}

// RefuseReservation refuses a pending request. Owner-only.
func (s *BookingService) RefuseReservation(ctx context.Context, ownerID, reservationID int64) (*db.Reservation, error) {
	res, spot, err := s.reservationWithSpot(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if spot.OwnerID != ownerID {
		return nil, apperrors.Permissionf("only the spot owner can refuse a reservation")
	}

	updated, err := s.reservations.UpdateStatus(ctx, res.ID, db.StatusRefused, []string{db.StatusPending})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("reservation_id", reservationID).Int64("owner_id", ownerID).Msg("reservation refused")
	s.bus.Publish(events.Event{Type: events.ReservationRefused, Reservation: *updated, OwnerID: spot.OwnerID})
	return updated, nil
}

// CancelReservation marks a reservation cancelled. Renter-only, and
// only while the reservation has not started. Cancelled rows stay in
// the ledger for audit; they never block the slot again.
func (s *BookingService) CancelReservation(ctx context.Context, renterID, reservationID int64) error {
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return err
	}
	if res.RenterID != renterID {
		return apperrors.Permissionf("only the renter can cancel their reservation")
	}
	if !res.StartTime.After(s.now()) {
		return apperrors.Validationf("reservations can only be cancelled before their start time")
	}

	_, err = s.reservations.UpdateStatus(ctx, res.ID, db.StatusCancelled, []string{db.StatusPending, db.StatusConfirmed})
	if err != nil {
		return err
	}

	s.log.Info().Int64("reservation_id", reservationID).Int64("renter_id", renterID).Msg("reservation cancelled")
	return nil
}

func (s *BookingService) ListRenterReservations(ctx context.Context, renterID int64) ([]db.Reservation, error) {
	return s.reservations.ListByRenter(ctx, renterID)
}

// GetReservationByCode looks a reservation up by its public code.
// Visible to its renter and to the spot's owner only.
func (s *BookingService) GetReservationByCode(ctx context.Context, userID int64, code string) (*db.Reservation, error) {
	res, err := s.reservations.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	spot, err := s.spots.GetByID(ctx, res.SpotID)
	if err != nil {
		return nil, err
	}
	if userID != res.RenterID && userID != spot.OwnerID {
		return nil, apperrors.Permissionf("reservation is only visible to its renter and the spot owner")
	}
	return res, nil
}

func (s *BookingService) reservationWithSpot(ctx context.Context, reservationID int64) (*db.Reservation, *db.Spot, error) {
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, nil, err
	}
	spot, err := s.spots.GetByID(ctx, res.SpotID)
	if err != nil {
		return nil, nil, err
	}
	return res, spot, nil
}
