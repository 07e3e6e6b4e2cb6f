package entities

import "time"

// AvailabilityWindowRequest is one window of the owner's replace-all
// availability edit. Date is "2006-01-02", times are "15:04".
type AvailabilityWindowRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Quantity  int    `json:"quantity"`
}

// TimeRange is a half-open [start, end) occupied interval.
type TimeRange struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// SlotOccupancy lists the occupied ranges of one numbered slot on one
// date, ordered by start time.
type SlotOccupancy struct {
	SlotNumber int         `json:"slot_number"`
	Occupied   []TimeRange `json:"occupied"`
}

// DateAvailability answers one requested date. A date with no
// availability window yields an empty Slots list; a date that failed to
// parse carries Error and nothing else, without affecting other dates.
type DateAvailability struct {
	Date  string          `json:"date"`
	Error string          `json:"error,omitempty"`
	Slots []SlotOccupancy `json:"slots"`
}

type AvailabilityResponse struct {
	SpotID int64              `json:"spot_id"`
	Dates  []DateAvailability `json:"dates"`
}
