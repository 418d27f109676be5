package showtimes

import (
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	MaxDurationMinutes = 24 * 60
)

// Showtime is a screening of a movie in one room. StartsAt and EndsAt are
// derived from ShowDate, StartTime and DurationMinutes and carry the storage
// level exclusion constraint.
type Showtime struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	MovieID         uint      `json:"movie_id" gorm:"not null;index"`
	RoomID          uint      `json:"room_id" gorm:"not null;index:idx_showtimes_room_date,priority:1"`
	ShowDate        string    `json:"date" gorm:"type:varchar(10);not null;index:idx_showtimes_room_date,priority:2"`
	StartTime       string    `json:"start_time" gorm:"type:varchar(5);not null"`
	DurationMinutes int       `json:"duration_minutes" gorm:"not null;check:duration_minutes > 0"`
	TotalSeats      int       `json:"total_seats" gorm:"not null;check:total_seats > 0"`
	Price           float64   `json:"price" gorm:"type:numeric(10,2);not null;check:price >= 0"`
	StartsAt        time.Time `json:"starts_at" gorm:"not null"`
	EndsAt          time.Time `json:"ends_at" gorm:"not null"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Showtime) TableName() string {
	return "showtimes"
}

func (s *Showtime) Interval() Interval {
	return Interval{Start: s.StartsAt, End: s.EndsAt}
}

// ScheduleRequest is one candidate showtime. Date is YYYY-MM-DD and StartTime
// is HH:MM on a 24 hour clock.
type ScheduleRequest struct {
	MovieID         uint    `json:"movie_id" validate:"required,gt=0"`
	RoomID          uint    `json:"room_id" validate:"required,gt=0"`
	Date            string  `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime       string  `json:"start_time" validate:"required,datetime=15:04"`
	DurationMinutes int     `json:"duration_minutes" validate:"required,min=1,max=1440"`
	Price           float64 `json:"price" validate:"gte=0"`
}

type ScheduleBatchRequest struct {
	Showtimes []ScheduleRequest `json:"showtimes" validate:"required,min=1,dive"`
}

type SeatMapResponse struct {
	ShowtimeID     uint     `json:"showtime_id"`
	TotalSeats     int      `json:"total_seats"`
	TakenSeats     []string `json:"taken_seats"`
	AvailableCount int      `json:"available_count"`
}
