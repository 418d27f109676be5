package tickets

// IssueRequest asks for one seat of a showtime under a pending booking.
// Pricing overrides the service's default strategy when set.
type IssueRequest struct {
	BookingID  uint            `json:"booking_id" validate:"required,gt=0"`
	ShowtimeID uint            `json:"showtime_id" validate:"required,gt=0"`
	SeatNumber string          `json:"seat_number" validate:"required,alphanum,max=10"`
	TicketType TicketType      `json:"ticket_type" validate:"omitempty,oneof=adult senior child"`
	Pricing    PricingStrategy `json:"-" validate:"-"`
}
