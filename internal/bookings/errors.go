package bookings

import "cineplex/internal/shared/apperr"

var (
	ErrBookingNotFound = apperr.NotFound("booking_not_found", "booking not found")
	ErrInvalidState    = apperr.New(apperr.KindState, "invalid_booking_state", "booking is not pending")
)
