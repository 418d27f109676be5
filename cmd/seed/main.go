package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"cineplex/internal/bookings"
	"cineplex/internal/customers"
	"cineplex/internal/promotions"
	"cineplex/internal/rooms"
	"cineplex/internal/shared/config"
	"cineplex/internal/shared/database"
	"cineplex/internal/showtimes"
	"cineplex/internal/tickets"
	"cineplex/pkg/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Seeder struct {
	db  *database.DB
	log *logger.Logger
}

func main() {
	fmt.Println("🌱 Starting Cineplex Database Seeder...")

	cfg := config.Load()
	appLogger := logger.GetDefault()

	db, err := database.InitDB(cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db, log: appLogger}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(context.Background()); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates every table, children first
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"tickets",
		"bookings",
		"showtimes",
		"promotions",
		"customers",
		"rooms",
	}

	return s.db.PostgreSQL.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			fmt.Printf("  Truncating table: %s\n", table)
			if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
				return fmt.Errorf("failed to truncate table %s: %w", table, err)
			}
		}
		return nil
	})
}

// SeedAll seeds reference rows directly and drives the domain services for the
// schedule, a demo booking and a promotion
func (s *Seeder) SeedAll(ctx context.Context) error {
	roomIDs, err := s.SeedRooms()
	if err != nil {
		return fmt.Errorf("failed to seed rooms: %w", err)
	}

	customerIDs, err := s.SeedCustomers()
	if err != nil {
		return fmt.Errorf("failed to seed customers: %w", err)
	}

	showtimeIDs, err := s.SeedSchedule(ctx, roomIDs)
	if err != nil {
		return fmt.Errorf("failed to seed schedule: %w", err)
	}

	if err := s.SeedDemoBooking(ctx, customerIDs["customer1"], showtimeIDs[0]); err != nil {
		return fmt.Errorf("failed to seed demo booking: %w", err)
	}

	if err := s.SeedPromotions(ctx); err != nil {
		return fmt.Errorf("failed to seed promotions: %w", err)
	}

	return nil
}

func (s *Seeder) SeedRooms() ([]uint, error) {
	fmt.Println("  🎬 Seeding rooms...")

	roomsData := []rooms.Room{
		{Name: "Auditorium 1", SeatCount: 120},
		{Name: "Auditorium 2", SeatCount: 80},
		{Name: "IMAX", SeatCount: 250},
	}

	var ids []uint
	for i := range roomsData {
		room := roomsData[i]
		if err := s.db.PostgreSQL.Create(&room).Error; err != nil {
			return nil, fmt.Errorf("failed to create room %s: %w", room.Name, err)
		}
		ids = append(ids, room.ID)
		fmt.Printf("    ✅ Created room: %s (%d seats)\n", room.Name, room.SeatCount)
	}
	return ids, nil
}

func (s *Seeder) SeedCustomers() (map[string]uint, error) {
	fmt.Println("  👤 Seeding customers...")

	// every seeded account uses "qwerty"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("qwerty"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	customersData := []struct {
		key        string
		firstName  string
		lastName   string
		email      string
		role       customers.Role
		subscribed bool
	}{
		{"admin", "Admin", "User", "admin@cineplex.local", customers.RoleAdmin, false},
		{"customer1", "Ana", "Lopez", "ana@cineplex.local", customers.RoleCustomer, true},
		{"customer2", "Ben", "Okafor", "ben@cineplex.local", customers.RoleCustomer, true},
		{"customer3", "Chen", "Wei", "chen@cineplex.local", customers.RoleCustomer, false},
	}

	ids := make(map[string]uint)
	for _, data := range customersData {
		customer := customers.Customer{
			FirstName:             data.firstName,
			LastName:              data.lastName,
			Email:                 data.email,
			PasswordHash:          string(hashedPassword),
			Role:                  data.role,
			PromotionSubscription: data.subscribed,
		}

		if err := s.db.PostgreSQL.Create(&customer).Error; err != nil {
			return nil, fmt.Errorf("failed to create customer %s: %w", data.email, err)
		}

		ids[data.key] = customer.ID
		fmt.Printf("    ✅ Created customer: %s (%s)\n", customer.Email, customer.Role)
	}
	return ids, nil
}

// SeedSchedule books three days of showtimes through the scheduler so the
// overlap rules apply to seed data too
func (s *Seeder) SeedSchedule(ctx context.Context, roomIDs []uint) ([]uint, error) {
	fmt.Println("  🗓️ Seeding schedule...")

	svc := showtimes.NewService(showtimes.NewRepository(s.db.PostgreSQL), s.log)

	slots := []struct {
		movieID  uint
		start    string
		duration int
		price    float64
	}{
		{1, "12:00", 110, 9.50},
		{2, "14:30", 125, 11.00},
		{3, "18:00", 140, 12.50},
		{1, "21:00", 110, 12.50},
	}

	var reqs []showtimes.ScheduleRequest
	today := time.Now().UTC()
	for day := 1; day <= 3; day++ {
		date := today.AddDate(0, 0, day).Format("2006-01-02")
		for i, roomID := range roomIDs {
			for _, slot := range slots {
				reqs = append(reqs, showtimes.ScheduleRequest{
					MovieID:         slot.movieID + uint(i),
					RoomID:          roomID,
					Date:            date,
					StartTime:       slot.start,
					DurationMinutes: slot.duration,
					Price:           slot.price,
				})
			}
		}
	}

	scheduled, err := svc.ScheduleShowtimes(ctx, reqs)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(scheduled))
	for _, st := range scheduled {
		ids = append(ids, st.ID)
	}
	fmt.Printf("    ✅ Scheduled %d showtimes\n", len(ids))
	return ids, nil
}

func (s *Seeder) SeedDemoBooking(ctx context.Context, customerID, showtimeID uint) error {
	fmt.Println("  🎟️ Seeding demo booking...")

	bookingService := bookings.NewService(
		bookings.NewRepository(s.db.PostgreSQL),
		customers.NewDirectory(s.db.PostgreSQL),
		bookings.DefaultConfig(),
		s.log,
	)
	ticketService := tickets.NewService(tickets.NewRepository(s.db.PostgreSQL), tickets.FlatPricing{}, s.log)

	booking, err := bookingService.CreateBookingShell(ctx, customerID)
	if err != nil {
		return err
	}

	for _, seat := range []struct {
		number string
		kind   tickets.TicketType
	}{
		{"E7", tickets.TicketTypeAdult},
		{"E8", tickets.TicketTypeChild},
	} {
		_, err := ticketService.IssueTicket(ctx, tickets.IssueRequest{
			BookingID:  booking.ID,
			ShowtimeID: showtimeID,
			SeatNumber: seat.number,
			TicketType: seat.kind,
		})
		if err != nil {
			return err
		}
	}

	if _, err := bookingService.ConfirmBooking(ctx, booking.ID); err != nil {
		return err
	}

	fmt.Printf("    ✅ Created confirmed booking %d with 2 tickets\n", booking.ID)
	return nil
}

func (s *Seeder) SeedPromotions(ctx context.Context) error {
	fmt.Println("  🏷️ Seeding promotions...")

	svc := promotions.NewService(promotions.NewRepository(s.db.PostgreSQL), customers.NewDirectory(s.db.PostgreSQL), s.log)

	for _, req := range []promotions.CreateRequest{
		{Code: "MATINEE15", DiscountPercentage: 15, Description: "15% off every showtime before 5pm"},
		{DiscountPercentage: 20, Description: "Opening weekend discount"},
	} {
		promotion, err := svc.CreatePromotion(ctx, req)
		if err != nil {
			return err
		}
		fmt.Printf("    ✅ Created promotion: %s (%.0f%%)\n", promotion.Code, promotion.DiscountPercentage)
	}
	return nil
}
