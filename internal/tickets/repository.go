package tickets

import (
	"context"

	"cineplex/internal/bookings"
	"cineplex/internal/showtimes"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	WithTx(ctx context.Context, fn func(repo Repository) error) error

	// Row locks held until the surrounding transaction ends
	LockBooking(ctx context.Context, bookingID uint) (*bookings.Booking, error)
	LockShowtime(ctx context.Context, showtimeID uint) (*showtimes.Showtime, error)

	GetShowtime(ctx context.Context, showtimeID uint) (*showtimes.Showtime, error)
	SeatTaken(ctx context.Context, showtimeID uint, seatNumber string) (bool, error)
	CountByShowtime(ctx context.Context, showtimeID uint) (int64, error)
	SeatNumbers(ctx context.Context, showtimeID uint) ([]string, error)

	Create(ctx context.Context, ticket *Ticket) error
	GetByID(ctx context.Context, id uint) (*Ticket, error)
	Delete(ctx context.Context, id uint) error
	ListByBooking(ctx context.Context, bookingID uint) ([]Ticket, error)
	ListByCustomer(ctx context.Context, customerID uint) ([]Ticket, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(ctx context.Context, fn func(repo Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repository{db: tx})
	})
}

func (r *repository) LockBooking(ctx context.Context, bookingID uint) (*bookings.Booking, error) {
	var booking bookings.Booking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&booking, bookingID).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) LockShowtime(ctx context.Context, showtimeID uint) (*showtimes.Showtime, error) {
	var showtime showtimes.Showtime
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&showtime, showtimeID).Error
	if err != nil {
		return nil, err
	}
	return &showtime, nil
}

func (r *repository) GetShowtime(ctx context.Context, showtimeID uint) (*showtimes.Showtime, error) {
	var showtime showtimes.Showtime
	if err := r.db.WithContext(ctx).First(&showtime, showtimeID).Error; err != nil {
		return nil, err
	}
	return &showtime, nil
}

// activeTickets scopes a query to tickets whose booking still holds its seats
func (r *repository) activeTickets(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&Ticket{}).
		Joins("JOIN bookings ON bookings.id = tickets.booking_id").
		Where("bookings.status IN ?", bookings.SeatHoldingStatuses())
}

func (r *repository) SeatTaken(ctx context.Context, showtimeID uint, seatNumber string) (bool, error) {
	var count int64
	err := r.activeTickets(ctx).
		Where("tickets.showtime_id = ? AND tickets.seat_number = ?", showtimeID, seatNumber).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CountByShowtime(ctx context.Context, showtimeID uint) (int64, error) {
	var count int64
	err := r.activeTickets(ctx).
		Where("tickets.showtime_id = ?", showtimeID).
		Count(&count).Error
	return count, err
}

func (r *repository) SeatNumbers(ctx context.Context, showtimeID uint) ([]string, error) {
	var seats []string
	err := r.activeTickets(ctx).
		Where("tickets.showtime_id = ?", showtimeID).
		Order("tickets.seat_number ASC").
		Pluck("tickets.seat_number", &seats).Error
	if err != nil {
		return nil, err
	}
	return seats, nil
}

func (r *repository) Create(ctx context.Context, ticket *Ticket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Ticket, error) {
	var ticket Ticket
	if err := r.db.WithContext(ctx).First(&ticket, id).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&Ticket{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) ListByBooking(ctx context.Context, bookingID uint) ([]Ticket, error) {
	var tickets []Ticket
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("id ASC").
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *repository) ListByCustomer(ctx context.Context, customerID uint) ([]Ticket, error) {
	var tickets []Ticket
	err := r.db.WithContext(ctx).
		Joins("JOIN bookings ON bookings.id = tickets.booking_id").
		Where("bookings.customer_id = ?", customerID).
		Order("tickets.created_at DESC").
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}
