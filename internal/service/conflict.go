package service

import (
	"time"

	"vagalivre/internal/db"
)

// FindConflict returns the first reservation in existing whose interval
// overlaps the half-open candidate [start, end), or nil when the
// candidate is free. Callers pass only the blocking set they care
// about: pending and confirmed at creation time, confirmed only at
// approval time (with the reservation itself excluded).
//
// This check is advisory on the request path. The stores repeat it
// atomically with their write, so a concurrent insert between check and
// write still cannot double-book a slot.
func FindConflict(existing []db.Reservation, start, end time.Time) *db.Reservation {
	for i := range existing {
		if existing[i].OverlapsInterval(start, end) {
			return &existing[i]
		}
	}
	return nil
}
