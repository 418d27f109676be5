package rooms

import "time"

// Room is a screening room. Rows are owned by catalog management; this
// service only reads them.
type Room struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	SeatCount int       `gorm:"not null" json:"seat_count"`
	CreatedAt time.Time `json:"created_at"`
}

func (Room) TableName() string {
	return "rooms"
}

// CanHostShowtimes reports whether the room has a usable capacity
func (r *Room) CanHostShowtimes() bool {
	return r.SeatCount > 0
}
