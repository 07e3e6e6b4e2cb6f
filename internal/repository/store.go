package repository

import (
	"context"
	"time"

	"vagalivre/internal/db"
)

// ReservationStore persists the reservation ledger. Create and Confirm
// are the two operations racing over the same (spot, slot) key: both
// must run their overlap check and their write as one atomic unit, so
// two concurrent calls for an overlapping window can never both
// succeed.
type ReservationStore interface {
	// Create inserts res with its current status after verifying no
	// pending or confirmed reservation on the same (spot, slot)
	// overlaps [StartTime, EndTime). Returns a ConflictError on
	// overlap.
	Create(ctx context.Context, res *db.Reservation) error

	// Confirm transitions a pending reservation to confirmed after
	// re-checking overlaps against confirmed reservations only,
	// excluding the reservation itself. A competing pending request is
	// not a blocker at this stage. Returns a ValidationError when the
	// reservation is not pending and a ConflictError on overlap; the
	// row is left untouched in both cases.
	Confirm(ctx context.Context, id int64) (*db.Reservation, error)

	// UpdateStatus sets newStatus when the current status is one of
	// expect, returning the updated row. A ValidationError is returned
	// otherwise.
	UpdateStatus(ctx context.Context, id int64, newStatus string, expect []string) (*db.Reservation, error)

	GetByID(ctx context.Context, id int64) (*db.Reservation, error)

	// GetByCode looks a reservation up by its public code.
	GetByCode(ctx context.Context, code string) (*db.Reservation, error)

	// ListBlocking returns reservations on (spot, slot) with one of the
	// given statuses, excluding excludeID when non-zero.
	ListBlocking(ctx context.Context, spotID int64, slot int, statuses []string, excludeID int64) ([]db.Reservation, error)

	// ListForSpotBetween returns reservations on the spot whose
	// interval intersects [from, to), any slot, ordered by start time.
	ListForSpotBetween(ctx context.Context, spotID int64, from, to time.Time, statuses []string) ([]db.Reservation, error)

	ListByRenter(ctx context.Context, renterID int64) ([]db.Reservation, error)

	// ListPendingStartedBefore returns pending reservations whose start
	// time is before cutoff. Used by the expiry sweep.
	ListPendingStartedBefore(ctx context.Context, cutoff time.Time) ([]db.Reservation, error)
}

type SpotStore interface {
	Create(ctx context.Context, spot *db.Spot) error
	GetByID(ctx context.Context, id int64) (*db.Spot, error)
	List(ctx context.Context) ([]db.Spot, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]db.Spot, error)
}

type AvailabilityStore interface {
	// ReplaceForSpot deletes every window of the spot and inserts the
	// given set in one transaction. There is no partial merge.
	ReplaceForSpot(ctx context.Context, spotID int64, windows []db.AvailabilityWindow) error
	ListForSpotOnDate(ctx context.Context, spotID int64, date time.Time) ([]db.AvailabilityWindow, error)
	ListForSpot(ctx context.Context, spotID int64) ([]db.AvailabilityWindow, error)
}

type UserStore interface {
	Create(ctx context.Context, user *db.User) error
	GetByEmail(ctx context.Context, email string) (*db.User, error)
	GetByID(ctx context.Context, id int64) (*db.User, error)
}

var (
	_ ReservationStore  = (*ReservationRepository)(nil)
	_ SpotStore         = (*SpotRepository)(nil)
	_ AvailabilityStore = (*AvailabilityRepository)(nil)
	_ UserStore         = (*UserRepository)(nil)
)
