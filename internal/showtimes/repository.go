package showtimes

import (
	"context"
	"time"

	"cineplex/internal/rooms"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// WithTx runs fn against a repository bound to one transaction. The
	// transaction commits when fn returns nil.
	WithTx(ctx context.Context, fn func(repo Repository) error) error

	// Scheduling
	LockRoom(ctx context.Context, roomID uint) (*rooms.Room, error)
	FindOverlapping(ctx context.Context, roomID uint, start, end time.Time) ([]Showtime, error)
	Create(ctx context.Context, showtime *Showtime) error

	// Reads
	GetByID(ctx context.Context, id uint) (*Showtime, error)
	ListByMovie(ctx context.Context, movieID uint) ([]Showtime, error)
	ListByRoomAndDate(ctx context.Context, roomID uint, date string) ([]Showtime, error)

	// Removal
	LockByID(ctx context.Context, id uint) (*Showtime, error)
	CountTickets(ctx context.Context, showtimeID uint) (int64, error)
	Delete(ctx context.Context, id uint) error
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

func (r *repository) LockRoom(ctx context.Context, roomID uint) (*rooms.Room, error) {
	return rooms.LockByID(r.db.WithContext(ctx), roomID)
}

// FindOverlapping returns showtimes in the room whose [starts_at, ends_at)
// range intersects [start, end). The date column is not used so shows that
// run past midnight are found from either day.
func (r *repository) FindOverlapping(ctx context.Context, roomID uint, start, end time.Time) ([]Showtime, error) {
	var showtimes []Showtime
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Where("starts_at < ? AND ends_at > ?", end, start).
		Order("starts_at ASC").
		Find(&showtimes).Error
	if err != nil {
		return nil, err
	}
	return showtimes, nil
}

func (r *repository) Create(ctx context.Context, showtime *Showtime) error {
	return r.db.WithContext(ctx).Create(showtime).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Showtime, error) {
	var showtime Showtime
	if err := r.db.WithContext(ctx).First(&showtime, id).Error; err != nil {
		return nil, err
	}
	return &showtime, nil
}

func (r *repository) ListByMovie(ctx context.Context, movieID uint) ([]Showtime, error) {
	var showtimes []Showtime
	err := r.db.WithContext(ctx).
		Where("movie_id = ?", movieID).
		Order("starts_at ASC").
		Find(&showtimes).Error
	if err != nil {
		return nil, err
	}
	return showtimes, nil
}

func (r *repository) ListByRoomAndDate(ctx context.Context, roomID uint, date string) ([]Showtime, error) {
	var showtimes []Showtime
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND show_date = ?", roomID, date).
		Order("starts_at ASC").
		Find(&showtimes).Error
	if err != nil {
		return nil, err
	}
	return showtimes, nil
}

func (r *repository) LockByID(ctx context.Context, id uint) (*Showtime, error) {
	var showtime Showtime
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&showtime, id).Error
	if err != nil {
		return nil, err
	}
	return &showtime, nil
}

// CountTickets counts tickets sold for the showtime. Tickets of cancelled
// bookings are deleted on cancellation, so every remaining row is active.
func (r *repository) CountTickets(ctx context.Context, showtimeID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("tickets").
		Where("showtime_id = ?", showtimeID).
		Count(&count).Error
	return count, err
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&Showtime{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
