package db

import "time"

// Reservation statuses. A reservation blocks its slot while it is
// pending or confirmed; refused and cancelled rows are kept for audit
// and never block.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusRefused   = "refused"
	StatusCancelled = "cancelled"
)

// BlockingStatuses are the statuses that occupy a slot for conflict
// and occupancy purposes.
var BlockingStatuses = []string{StatusPending, StatusConfirmed}

type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FullName     string
	Phone        string
	CreatedAt    time.Time
}

// Spot is a listed parking location. Slots are not stored: they are the
// derived numbering 1..Capacity, only meaningful scoped to their spot.
type Spot struct {
	ID              int64
	OwnerID         int64
	Title           string
	Address         string
	HourlyRateCents int64
	Capacity        int
	CreatedAt       time.Time
}

// AvailabilityWindow declares that a spot offers Quantity slots on Date
// between StartTime and EndTime ("15:04" wall-clock strings). Windows
// are unique per (spot, date, start, end) and are replaced wholesale
// when the owner edits availability.
type AvailabilityWindow struct {
	ID        int64
	SpotID    int64
	Date      time.Time
	StartTime string
	EndTime   string
	Quantity  int
}

type Reservation struct {
	ID              int64
	Code            string
	SpotID          int64
	SlotNumber      int
	RenterID        int64
	StartTime       time.Time
	EndTime         time.Time
	Status          string
	TotalPriceCents int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Blocks reports whether the reservation currently occupies its slot.
func (r *Reservation) Blocks() bool {
	return r.Status == StatusPending || r.Status == StatusConfirmed
}
