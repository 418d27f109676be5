package database

import (
	"cineplex/internal/bookings"
	"cineplex/internal/customers"
	"cineplex/internal/promotions"
	"cineplex/internal/rooms"
	"cineplex/internal/showtimes"
	"cineplex/internal/tickets"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&rooms.Room{},
		&customers.Customer{},
		&showtimes.Showtime{},
		&bookings.Booking{},
		&tickets.Ticket{},
		&promotions.Promotion{},
	)
	if err != nil {
		return err
	}
	return MigrateConstraints(db)
}
