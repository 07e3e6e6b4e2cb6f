package entities

// BookingRequest is a renter's request to reserve one numbered slot of
// a spot for a time interval. Times are RFC 3339 strings; parsing them
// is the first validation step of the orchestrator.
type BookingRequest struct {
	SpotID     int64  `json:"spot_id"`
	SlotNumber int    `json:"slot_number"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}
