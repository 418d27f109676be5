package bookings

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	WithTx(ctx context.Context, fn func(repo Repository) error) error

	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id uint) (*Booking, error)
	// LockByID holds the row until the surrounding transaction ends
	LockByID(ctx context.Context, id uint) (*Booking, error)
	Delete(ctx context.Context, id uint) error
	ListByCustomer(ctx context.Context, customerID uint) ([]Booking, error)

	// Conditional transitions report whether the row was still pending
	MarkConfirmed(ctx context.Context, id uint, at time.Time) (bool, error)
	MarkCancelled(ctx context.Context, id uint, at time.Time) (bool, error)

	// ReleaseTickets deletes the booking's tickets and returns the showtimes
	// they belonged to
	ReleaseTickets(ctx context.Context, bookingID uint) ([]uint, int64, error)
	TicketLines(ctx context.Context, bookingID uint) ([]TicketLine, error)

	ListStalePendingIDs(ctx context.Context, cutoff time.Time, afterID uint, limit int) ([]uint, error)
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

func (r *repository) Create(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Booking, error) {
	var booking Booking
	if err := r.db.WithContext(ctx).First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) LockByID(ctx context.Context, id uint) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&Booking{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) ListByCustomer(ctx context.Context, customerID uint) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repository) MarkConfirmed(ctx context.Context, id uint, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]interface{}{
			"status":       StatusConfirmed,
			"confirmed_at": at,
			"updated_at":   at,
		})
	return result.RowsAffected == 1, result.Error
}

func (r *repository) MarkCancelled(ctx context.Context, id uint, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]interface{}{
			"status":       StatusCancelled,
			"cancelled_at": at,
			"updated_at":   at,
		})
	return result.RowsAffected == 1, result.Error
}

func (r *repository) ReleaseTickets(ctx context.Context, bookingID uint) ([]uint, int64, error) {
	var showtimeIDs []uint
	err := r.db.WithContext(ctx).
		Table("tickets").
		Where("booking_id = ?", bookingID).
		Distinct("showtime_id").
		Pluck("showtime_id", &showtimeIDs).Error
	if err != nil {
		return nil, 0, err
	}

	result := r.db.WithContext(ctx).Exec("DELETE FROM tickets WHERE booking_id = ?", bookingID)
	if result.Error != nil {
		return nil, 0, result.Error
	}
	return showtimeIDs, result.RowsAffected, nil
}

func (r *repository) TicketLines(ctx context.Context, bookingID uint) ([]TicketLine, error) {
	var lines []TicketLine
	err := r.db.WithContext(ctx).
		Table("tickets").
		Select("tickets.id AS ticket_id, tickets.showtime_id, showtimes.movie_id, showtimes.show_date, " +
			"showtimes.start_time, tickets.seat_number, tickets.ticket_type, tickets.price").
		Joins("JOIN showtimes ON showtimes.id = tickets.showtime_id").
		Where("tickets.booking_id = ?", bookingID).
		Order("tickets.id ASC").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// ListStalePendingIDs pages through pending bookings created at or before the
// cutoff in id order
func (r *repository) ListStalePendingIDs(ctx context.Context, cutoff time.Time, afterID uint, limit int) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("status = ? AND created_at <= ? AND id > ?", StatusPending, cutoff, afterID).
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
