package bookings

// CreateBookingRequest carries the customer id for callers without a token.
// A customer id in the access token takes precedence.
type CreateBookingRequest struct {
	CustomerID uint `json:"customer_id"`
}

type ExpireBookingsRequest struct {
	ThresholdMinutes int `json:"threshold_minutes" binding:"omitempty,min=1"`
}
