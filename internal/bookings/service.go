package bookings

import (
	"context"
	"time"

	"cineplex/internal/customers"
	"cineplex/internal/notifications"
	"cineplex/internal/shared/apperr"
	"cineplex/pkg/logger"
)

// CustomerDirectory answers identity questions for the externally owned
// customer records
type CustomerDirectory interface {
	CustomerExists(ctx context.Context, customerID uint) (bool, error)
	CustomerEmail(ctx context.Context, customerID uint) (string, error)
}

// Notifier delivers the confirmation email
type Notifier interface {
	SendBookingConfirmation(ctx context.Context, email string, confirmation notifications.BookingConfirmation) error
}

// AsyncRunner runs a job after the caller returns
type AsyncRunner interface {
	Go(ctx context.Context, kind string, fields map[string]interface{}, job func(ctx context.Context) error)
}

// SeatMapInvalidator drops cached seat maps (implemented by the ticket
// service, declared here to avoid a circular dependency)
type SeatMapInvalidator interface {
	InvalidateSeatMaps(ctx context.Context, showtimeIDs ...uint)
}

// ExpiryScheduler arms a per-booking expiry timer
type ExpiryScheduler interface {
	ScheduleExpiry(ctx context.Context, msg ExpiryMessage) error
}

type Service interface {
	SetNotifier(notifier Notifier, runner AsyncRunner)
	SetSeatMapInvalidator(invalidator SeatMapInvalidator)
	SetExpiryScheduler(scheduler ExpiryScheduler)

	CreateBookingShell(ctx context.Context, customerID uint) (*Booking, error)
	ConfirmBooking(ctx context.Context, id uint) (*Booking, error)
	CancelBooking(ctx context.Context, id uint) (*Booking, error)
	DeleteBooking(ctx context.Context, id uint) error

	ExpireStalePendingBookings(ctx context.Context, threshold time.Duration) (int, error)
	ExpireBooking(ctx context.Context, id uint, threshold time.Duration) (bool, error)
	PendingExpiry() time.Duration

	GetBooking(ctx context.Context, id uint) (*Booking, error)
	GetBookingsForCustomer(ctx context.Context, customerID uint) ([]Booking, error)
	GetBookingDetails(ctx context.Context, id uint) (*BookingDetails, error)
}

// Config holds the booking lifecycle settings
type Config struct {
	PendingExpiry  time.Duration
	SweepBatchSize int
}

func DefaultConfig() Config {
	return Config{PendingExpiry: 30 * time.Minute, SweepBatchSize: 100}
}

type service struct {
	repo      Repository
	customers CustomerDirectory
	config    Config
	log       *logger.Logger
	now       func() time.Time

	notifier    Notifier
	runner      AsyncRunner
	invalidator SeatMapInvalidator
	scheduler   ExpiryScheduler
}

func NewService(repo Repository, directory CustomerDirectory, cfg Config, log *logger.Logger) Service {
	defaults := DefaultConfig()
	if cfg.PendingExpiry <= 0 {
		cfg.PendingExpiry = defaults.PendingExpiry
	}
	if cfg.SweepBatchSize <= 0 {
		cfg.SweepBatchSize = defaults.SweepBatchSize
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{
		repo:      repo,
		customers: directory,
		config:    cfg,
		log:       log.WithComponent("bookings"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) SetNotifier(notifier Notifier, runner AsyncRunner) {
	s.notifier = notifier
	s.runner = runner
}

func (s *service) SetSeatMapInvalidator(invalidator SeatMapInvalidator) {
	s.invalidator = invalidator
}

func (s *service) SetExpiryScheduler(scheduler ExpiryScheduler) {
	s.scheduler = scheduler
}

func (s *service) PendingExpiry() time.Duration {
	return s.config.PendingExpiry
}

func (s *service) CreateBookingShell(ctx context.Context, customerID uint) (*Booking, error) {
	if customerID == 0 {
		return nil, apperr.Validation("customer_id is required")
	}

	exists, err := s.customers.CustomerExists(ctx, customerID)
	if err != nil {
		return nil, apperr.FromStorage("lookup customer", err, nil, nil)
	}
	if !exists {
		return nil, customers.ErrCustomerNotFound.WithDetail("customer %d", customerID)
	}

	booking := &Booking{
		CustomerID: customerID,
		Status:     StatusPending,
		CreatedAt:  s.now(),
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, apperr.Dependency("create booking", err)
	}

	s.log.LogBookingCreated(ctx, booking.ID, booking.CustomerID)

	if s.scheduler != nil {
		msg := ExpiryMessage{BookingID: booking.ID, CreatedAt: booking.CreatedAt}
		if err := s.scheduler.ScheduleExpiry(ctx, msg); err != nil {
			// the periodic sweep still expires the booking
			s.log.ErrorWithContext(ctx, "failed to schedule booking expiry", err, map[string]interface{}{
				"booking_id": booking.ID,
			})
		}
	}

	return booking, nil
}

// ConfirmBooking moves a pending booking to confirmed with a conditional
// update. The confirmation email is sent after the update commits and its
// failure never reverts the confirmation.
func (s *service) ConfirmBooking(ctx context.Context, id uint) (*Booking, error) {
	now := s.now()

	ok, err := s.repo.MarkConfirmed(ctx, id, now)
	if err != nil {
		return nil, apperr.Dependency("confirm booking", err)
	}

	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromStorage("get booking", err, ErrBookingNotFound, nil)
	}
	if !ok {
		return nil, ErrInvalidState.WithDetail("booking %d is %s", booking.ID, booking.Status)
	}

	s.log.LogBookingConfirmed(ctx, booking.ID, booking.CustomerID)
	s.notifyConfirmed(ctx, booking)

	return booking, nil
}

func (s *service) notifyConfirmed(ctx context.Context, booking *Booking) {
	if s.notifier == nil {
		return
	}

	bookingID, customerID := booking.ID, booking.CustomerID
	job := func(ctx context.Context) error {
		email, err := s.customers.CustomerEmail(ctx, customerID)
		if err != nil {
			return err
		}
		lines, err := s.repo.TicketLines(ctx, bookingID)
		if err != nil {
			return apperr.Dependency("load ticket lines", err)
		}
		return s.notifier.SendBookingConfirmation(ctx, email, confirmationFor(bookingID, customerID, lines))
	}

	fields := map[string]interface{}{"booking_id": bookingID, "customer_id": customerID}
	if s.runner != nil {
		s.runner.Go(ctx, "booking_confirmation", fields, job)
		return
	}
	if err := job(ctx); err != nil {
		s.log.LogNotificationFailed(ctx, "booking_confirmation", err, fields)
	}
}

func confirmationFor(bookingID, customerID uint, lines []TicketLine) notifications.BookingConfirmation {
	tickets := make([]notifications.TicketLine, 0, len(lines))
	for _, l := range lines {
		tickets = append(tickets, notifications.TicketLine{
			MovieID:    l.MovieID,
			ShowDate:   l.ShowDate,
			StartTime:  l.StartTime,
			SeatNumber: l.SeatNumber,
			TicketType: l.TicketType,
			Price:      l.Price,
		})
	}
	return notifications.BookingConfirmation{
		BookingID:  bookingID,
		CustomerID: customerID,
		Tickets:    tickets,
		Total:      Total(lines),
	}
}

// CancelBooking cancels a pending booking and deletes its tickets so their
// seats can be sold again. Cancelling a cancelled booking is a no-op.
func (s *service) CancelBooking(ctx context.Context, id uint) (*Booking, error) {
	var (
		booking     *Booking
		showtimeIDs []uint
		released    int64
	)

	err := s.repo.WithTx(ctx, func(repo Repository) error {
		var err error
		booking, err = repo.LockByID(ctx, id)
		if err != nil {
			return apperr.FromStorage("lock booking", err, ErrBookingNotFound, nil)
		}

		if booking.Status == StatusCancelled {
			return nil
		}
		if !booking.Status.CanTransitionTo(StatusCancelled) {
			return ErrInvalidState.WithDetail("booking %d is %s", booking.ID, booking.Status)
		}

		showtimeIDs, released, err = s.cancelLocked(ctx, repo, booking)
		return err
	})
	if err != nil {
		return nil, apperr.FromStorage("cancel booking", err, nil, nil)
	}

	if len(showtimeIDs) > 0 || released > 0 {
		s.afterRelease(ctx, booking.ID, "cancelled", showtimeIDs, released)
	}
	return booking, nil
}

// cancelLocked runs inside a transaction holding the booking row
func (s *service) cancelLocked(ctx context.Context, repo Repository, booking *Booking) ([]uint, int64, error) {
	now := s.now()

	ok, err := repo.MarkCancelled(ctx, booking.ID, now)
	if err != nil {
		return nil, 0, apperr.Dependency("cancel booking", err)
	}
	if !ok {
		return nil, 0, ErrInvalidState.WithDetail("booking %d is no longer pending", booking.ID)
	}

	showtimeIDs, released, err := repo.ReleaseTickets(ctx, booking.ID)
	if err != nil {
		return nil, 0, apperr.Dependency("release tickets", err)
	}

	booking.Status = StatusCancelled
	booking.CancelledAt = &now
	booking.UpdatedAt = now
	return showtimeIDs, released, nil
}

func (s *service) afterRelease(ctx context.Context, bookingID uint, reason string, showtimeIDs []uint, released int64) {
	if s.invalidator != nil && len(showtimeIDs) > 0 {
		s.invalidator.InvalidateSeatMaps(ctx, showtimeIDs...)
	}
	s.log.LogBookingCancelled(ctx, bookingID, reason, int(released))
}

// DeleteBooking removes a booking in any status together with its tickets
func (s *service) DeleteBooking(ctx context.Context, id uint) error {
	var (
		showtimeIDs []uint
		released    int64
	)

	err := s.repo.WithTx(ctx, func(repo Repository) error {
		if _, err := repo.LockByID(ctx, id); err != nil {
			return apperr.FromStorage("lock booking", err, ErrBookingNotFound, nil)
		}

		var err error
		showtimeIDs, released, err = repo.ReleaseTickets(ctx, id)
		if err != nil {
			return apperr.Dependency("release tickets", err)
		}
		return apperr.FromStorage("delete booking", repo.Delete(ctx, id), ErrBookingNotFound, nil)
	})
	if err != nil {
		return apperr.FromStorage("delete booking", err, nil, nil)
	}

	s.afterRelease(ctx, id, "deleted", showtimeIDs, released)
	return nil
}

// ExpireStalePendingBookings cancels pending bookings older than threshold.
// Each booking is cancelled in its own short transaction guarded by its
// status, so a concurrent confirm or a second sweep simply finds nothing to do.
func (s *service) ExpireStalePendingBookings(ctx context.Context, threshold time.Duration) (int, error) {
	if threshold <= 0 {
		threshold = s.config.PendingExpiry
	}

	started := time.Now()
	cutoff := s.now().Add(-threshold)

	expired := 0
	var afterID uint
	for {
		ids, err := s.repo.ListStalePendingIDs(ctx, cutoff, afterID, s.config.SweepBatchSize)
		if err != nil {
			return expired, apperr.Dependency("list stale bookings", err)
		}
		if len(ids) == 0 {
			break
		}

		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return expired, apperr.Dependency("expire stale bookings", err)
			}
			ok, err := s.expire(ctx, id, cutoff)
			if err != nil {
				s.log.ErrorWithContext(ctx, "failed to expire booking", err, map[string]interface{}{"booking_id": id})
				continue
			}
			if ok {
				expired++
			}
		}

		afterID = ids[len(ids)-1]
		if len(ids) < s.config.SweepBatchSize {
			break
		}
	}

	if expired > 0 {
		s.log.LogBookingsExpired(ctx, expired, threshold, time.Since(started))
	}
	return expired, nil
}

// ExpireBooking cancels one booking if it is still pending and older than
// threshold. It reports whether the booking was cancelled.
func (s *service) ExpireBooking(ctx context.Context, id uint, threshold time.Duration) (bool, error) {
	if threshold <= 0 {
		threshold = s.config.PendingExpiry
	}
	return s.expire(ctx, id, s.now().Add(-threshold))
}

func (s *service) expire(ctx context.Context, id uint, cutoff time.Time) (bool, error) {
	var (
		expired     bool
		showtimeIDs []uint
		released    int64
	)

	err := s.repo.WithTx(ctx, func(repo Repository) error {
		booking, err := repo.LockByID(ctx, id)
		if err != nil {
			return apperr.FromStorage("lock booking", err, ErrBookingNotFound, nil)
		}
		if !booking.Status.CanTransitionTo(StatusCancelled) || booking.CreatedAt.After(cutoff) {
			return nil
		}

		showtimeIDs, released, err = s.cancelLocked(ctx, repo, booking)
		if err != nil {
			return err
		}
		expired = true
		return nil
	})
	if err != nil {
		return false, apperr.FromStorage("expire booking", err, nil, nil)
	}

	if expired {
		s.afterRelease(ctx, id, "expired", showtimeIDs, released)
	}
	return expired, nil
}

func (s *service) GetBooking(ctx context.Context, id uint) (*Booking, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromStorage("get booking", err, ErrBookingNotFound, nil)
	}
	return booking, nil
}

func (s *service) GetBookingsForCustomer(ctx context.Context, customerID uint) ([]Booking, error) {
	exists, err := s.customers.CustomerExists(ctx, customerID)
	if err != nil {
		return nil, apperr.FromStorage("lookup customer", err, nil, nil)
	}
	if !exists {
		return nil, customers.ErrCustomerNotFound.WithDetail("customer %d", customerID)
	}

	bookings, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, apperr.Dependency("list bookings", err)
	}
	return bookings, nil
}

func (s *service) GetBookingDetails(ctx context.Context, id uint) (*BookingDetails, error) {
	booking, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.TicketLines(ctx, id)
	if err != nil {
		return nil, apperr.Dependency("load ticket lines", err)
	}
	if lines == nil {
		lines = []TicketLine{}
	}

	return &BookingDetails{Booking: *booking, Tickets: lines, Total: Total(lines)}, nil
}
