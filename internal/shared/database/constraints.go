package database

import (
	"fmt"

	"gorm.io/gorm"
)

type constraint struct {
	name  string
	table string
	ddl   string
}

// constraints gorm tags cannot express. Foreign keys are added here because
// AutoMigrate runs with DisableForeignKeyConstraintWhenMigrating.
var constraints = []constraint{
	{
		name:  "showtimes_room_no_overlap",
		table: "showtimes",
		ddl:   `EXCLUDE USING gist (room_id WITH =, tstzrange(starts_at, ends_at, '[)') WITH &&)`,
	},
	{
		name:  "fk_showtimes_room",
		table: "showtimes",
		ddl:   `FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE RESTRICT`,
	},
	{
		name:  "fk_bookings_customer",
		table: "bookings",
		ddl:   `FOREIGN KEY (customer_id) REFERENCES customers(id) ON DELETE CASCADE`,
	},
	{
		name:  "fk_tickets_booking",
		table: "tickets",
		ddl:   `FOREIGN KEY (booking_id) REFERENCES bookings(id) ON DELETE CASCADE`,
	},
	{
		name:  "fk_tickets_showtime",
		table: "tickets",
		ddl:   `FOREIGN KEY (showtime_id) REFERENCES showtimes(id) ON DELETE RESTRICT`,
	},
}

// MigrateConstraints adds the room overlap exclusion and the foreign keys.
// Postgres has no ADD CONSTRAINT IF NOT EXISTS so each one is checked first.
func MigrateConstraints(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		return fmt.Errorf("create btree_gist extension: %w", err)
	}

	for _, c := range constraints {
		var exists bool
		err := db.Raw(`SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = ?)`, c.name).Scan(&exists).Error
		if err != nil {
			return fmt.Errorf("check constraint %s: %w", c.name, err)
		}
		if exists {
			continue
		}

		stmt := fmt.Sprintf(`ALTER TABLE %s ADD CONSTRAINT %s %s`, c.table, c.name, c.ddl)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("add constraint %s: %w", c.name, err)
		}
	}

	// Sweep scans pending bookings by age
	err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bookings_pending_created
		ON bookings (created_at, id) WHERE status = 'pending'
	`).Error
	if err != nil {
		return fmt.Errorf("create pending bookings index: %w", err)
	}

	return nil
}
