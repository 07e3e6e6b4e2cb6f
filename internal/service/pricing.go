package service

import (
	"math"
	"time"

	apperrors "vagalivre/internal/errors"
)

// TotalPriceCents computes the price of an interval at an hourly rate:
// fractional hours times the rate, rounded half-up (away from zero) to
// the nearest cent. A 90-minute booking at 10.00/h costs 15.00.
func TotalPriceCents(start, end time.Time, hourlyRateCents int64) (int64, error) {
	if !end.After(start) {
		return 0, apperrors.InvalidInterval()
	}
	hours := end.Sub(start).Hours()
	return int64(math.Floor(hours*float64(hourlyRateCents) + 0.5)), nil
}
