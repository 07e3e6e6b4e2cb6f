package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"vagalivre/internal/db"
	"vagalivre/internal/events"
	"vagalivre/internal/repository"
)

// JobService runs the periodic sweeps scheduled by cron.
type JobService struct {
	reservations repository.ReservationStore
	spots        repository.SpotStore
	bus          *events.Bus
	log          zerolog.Logger
	now          func() time.Time
}

func NewJobService(reservations repository.ReservationStore, spots repository.SpotStore, bus *events.Bus, log zerolog.Logger) *JobService {
	return &JobService{
		reservations: reservations,
		spots:        spots,
		bus:          bus,
		log:          log,
		now:          time.Now,
	}
}

// ExpirePendingReservations refuses pending requests whose start time
// has already passed. The owner never acted on them; refusing keeps the
// ledger append-only on statuses instead of deleting rows.
func (s *JobService) ExpirePendingReservations(ctx context.Context) error {
	expired, err := s.reservations.ListPendingStartedBefore(ctx, s.now())
	if err != nil {
		return fmt.Errorf("list expired pending reservations: %w", err)
	}
	if len(expired) == 0 {
		return nil
	}

	refused := 0
	for _, res := range expired {
		updated, err := s.reservations.UpdateStatus(ctx, res.ID, db.StatusRefused, []string{db.StatusPending})
		if err != nil {
			// Lost a race with an owner action on the same row. Skip it.
			s.log.Warn().Err(err).Int64("reservation_id", res.ID).Msg("expiry sweep: skipping reservation")
			continue
		}
		refused++

		spot, err := s.spots.GetByID(ctx, res.SpotID)
		if err != nil {
			s.log.Error().Err(err).Int64("spot_id", res.SpotID).Msg("expiry sweep: spot lookup failed")
			continue
		}
		s.bus.Publish(events.Event{Type: events.ReservationRefused, Reservation: *updated, OwnerID: spot.OwnerID})
	}

	s.log.Info().Int("refused", refused).Int("found", len(expired)).Msg("expiry sweep finished")
	return nil
}
