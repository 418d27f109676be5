package tickets

import (
	"time"
)

type TicketType string

const (
	TicketTypeAdult  TicketType = "adult"
	TicketTypeSenior TicketType = "senior"
	TicketTypeChild  TicketType = "child"
)

func (t TicketType) IsValid() bool {
	switch t {
	case TicketTypeAdult, TicketTypeSenior, TicketTypeChild:
		return true
	}
	return false
}

// Ticket is one seat of one showtime, owned by a booking. Tickets are deleted
// when their booking is cancelled, so (showtime_id, seat_number) is unique
// over every stored row.
type Ticket struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	BookingID  uint       `gorm:"not null;index" json:"booking_id"`
	ShowtimeID uint       `gorm:"not null;uniqueIndex:idx_tickets_showtime_seat,priority:1" json:"showtime_id"`
	SeatNumber string     `gorm:"type:varchar(10);not null;uniqueIndex:idx_tickets_showtime_seat,priority:2" json:"seat_number"`
	TicketType TicketType `gorm:"type:varchar(10);not null;default:'adult';check:ticket_type IN ('adult', 'senior', 'child')" json:"ticket_type"`
	Price      float64    `gorm:"type:numeric(10,2);not null;check:price >= 0" json:"price"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (Ticket) TableName() string {
	return "tickets"
}

// SeatMap is the availability view of one showtime
type SeatMap struct {
	ShowtimeID     uint     `json:"showtime_id"`
	TotalSeats     int      `json:"total_seats"`
	TakenSeats     []string `json:"taken_seats"`
	AvailableCount int      `json:"available_count"`
}
