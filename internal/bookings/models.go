package bookings

import (
	"time"
)

// Booking is a customer's reservation. It starts pending, collects tickets
// and ends confirmed or cancelled.
type Booking struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	CustomerID  uint       `gorm:"not null;index" json:"customer_id"`
	Status      Status     `gorm:"type:varchar(20);not null;default:'pending';check:status IN ('pending', 'confirmed', 'cancelled');index:idx_bookings_status_created,priority:1" json:"status"`
	CreatedAt   time.Time  `gorm:"not null;index:idx_bookings_status_created,priority:2" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

func (Booking) TableName() string {
	return "bookings"
}

// TicketLine is a ticket of a booking joined with its showtime
type TicketLine struct {
	TicketID   uint    `json:"ticket_id"`
	ShowtimeID uint    `json:"showtime_id"`
	MovieID    uint    `json:"movie_id"`
	ShowDate   string  `json:"date"`
	StartTime  string  `json:"start_time"`
	SeatNumber string  `json:"seat_number"`
	TicketType string  `json:"ticket_type"`
	Price      float64 `json:"price"`
}

type BookingDetails struct {
	Booking Booking      `json:"booking"`
	Tickets []TicketLine `json:"tickets"`
	Total   float64      `json:"total"`
}

// Total sums ticket prices, rounded to cents
func Total(lines []TicketLine) float64 {
	var cents int64
	for _, l := range lines {
		cents += int64(l.Price*100 + 0.5)
	}
	return float64(cents) / 100
}

// ExpiryMessage is the payload of a per-booking expiry timer
type ExpiryMessage struct {
	BookingID uint      `json:"booking_id"`
	CreatedAt time.Time `json:"created_at"`
}
