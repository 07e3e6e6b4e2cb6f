package db

import "time"

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// share at least one instant. Touching boundaries (e1 == s2) do not
// overlap, so back-to-back reservations on the same slot are valid.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// OverlapsInterval reports whether the reservation's interval overlaps
// [start, end).
func (r *Reservation) OverlapsInterval(start, end time.Time) bool {
	return Overlaps(r.StartTime, r.EndTime, start, end)
}
