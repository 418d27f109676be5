package bookings

import "time"

type ExpireBookingsResponse struct {
	Expired          int       `json:"expired"`
	ThresholdMinutes int       `json:"threshold_minutes"`
	RanAt            time.Time `json:"ran_at"`
}
