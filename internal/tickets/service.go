package tickets

import (
	"context"
	"sort"
	"strings"
	"time"

	"cineplex/internal/bookings"
	"cineplex/internal/shared/apperr"
	"cineplex/internal/shared/constants"
	"cineplex/internal/shared/utils/validation"
	"cineplex/internal/showtimes"
	"cineplex/pkg/cache"
	"cineplex/pkg/logger"
)

var (
	ErrTicketNotFound    = apperr.NotFound("ticket_not_found", "ticket not found")
	ErrSeatTaken         = apperr.New(apperr.KindConflict, "seat_taken", "seat is already taken for this showtime")
	ErrShowtimeSoldOut   = apperr.New(apperr.KindConflict, "showtime_sold_out", "showtime has no seats left")
	ErrBookingNotPending = apperr.New(apperr.KindState, "booking_not_pending", "tickets can only change while the booking is pending")
)

type Service interface {
	SetCacheService(cacheService cache.Service, ttl time.Duration)

	IssueTicket(ctx context.Context, req IssueRequest) (*Ticket, error)
	DeleteTicket(ctx context.Context, id uint) error

	GetTicket(ctx context.Context, id uint) (*Ticket, error)
	ListTicketsForBooking(ctx context.Context, bookingID uint) ([]Ticket, error)
	ListTicketsForCustomer(ctx context.Context, customerID uint) ([]Ticket, error)

	GetSeatNumbersForShowtime(ctx context.Context, showtimeID uint) ([]string, error)
	GetSeatMap(ctx context.Context, showtimeID uint) (*SeatMap, error)
	InvalidateSeatMaps(ctx context.Context, showtimeIDs ...uint)
}

type service struct {
	repo         Repository
	pricing      PricingStrategy
	cacheService cache.Service
	seatMapTTL   time.Duration
	log          *logger.Logger
}

func NewService(repo Repository, pricing PricingStrategy, log *logger.Logger) Service {
	if pricing == nil {
		pricing = FlatPricing{}
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{
		repo:       repo,
		pricing:    pricing,
		seatMapTTL: constants.TTL_SHOWTIME_SEATS,
		log:        log.WithComponent("tickets"),
	}
}

// SetCacheService enables the seat map cache
func (s *service) SetCacheService(cacheService cache.Service, ttl time.Duration) {
	s.cacheService = cacheService
	if ttl > 0 {
		s.seatMapTTL = ttl
	}
}

// IssueTicket claims one seat for a pending booking. The booking row and then
// the showtime row are locked so concurrent issues for the same showtime run
// one at a time; the unique index on (showtime_id, seat_number) backs this up.
func (s *service) IssueTicket(ctx context.Context, req IssueRequest) (*Ticket, error) {
	req.SeatNumber = strings.ToUpper(strings.TrimSpace(req.SeatNumber))
	if req.TicketType == "" {
		req.TicketType = TicketTypeAdult
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	pricing := s.pricing
	if req.Pricing != nil {
		pricing = req.Pricing
	}

	var ticket *Ticket
	err := s.repo.WithTx(ctx, func(repo Repository) error {
		booking, err := repo.LockBooking(ctx, req.BookingID)
		if err != nil {
			return apperr.FromStorage("lock booking", err, bookings.ErrBookingNotFound, nil)
		}
		if booking.Status.IsTerminal() {
			return ErrBookingNotPending.WithDetail("booking %d is %s", booking.ID, booking.Status)
		}

		showtime, err := repo.LockShowtime(ctx, req.ShowtimeID)
		if err != nil {
			return apperr.FromStorage("lock showtime", err, showtimes.ErrShowtimeNotFound, nil)
		}

		taken, err := repo.SeatTaken(ctx, showtime.ID, req.SeatNumber)
		if err != nil {
			return apperr.Dependency("check seat", err)
		}
		if taken {
			return ErrSeatTaken.WithDetail("showtime %d seat %s", showtime.ID, req.SeatNumber)
		}

		sold, err := repo.CountByShowtime(ctx, showtime.ID)
		if err != nil {
			return apperr.Dependency("count tickets", err)
		}
		if sold >= int64(showtime.TotalSeats) {
			return ErrShowtimeSoldOut.WithDetail("showtime %d has %d seats", showtime.ID, showtime.TotalSeats)
		}

		ticket = &Ticket{
			BookingID:  booking.ID,
			ShowtimeID: showtime.ID,
			SeatNumber: req.SeatNumber,
			TicketType: req.TicketType,
			Price:      pricing.Price(showtime, req.TicketType),
		}
		if err := repo.Create(ctx, ticket); err != nil {
			return apperr.FromStorage("create ticket", err, nil,
				ErrSeatTaken.WithDetail("showtime %d seat %s", showtime.ID, req.SeatNumber))
		}
		return nil
	})
	if err != nil {
		return nil, apperr.FromStorage("issue ticket", err, nil, nil)
	}

	s.InvalidateSeatMaps(ctx, ticket.ShowtimeID)
	s.log.InfoWithContext(ctx, "ticket issued", map[string]interface{}{
		"ticket_id":   ticket.ID,
		"booking_id":  ticket.BookingID,
		"showtime_id": ticket.ShowtimeID,
		"seat_number": ticket.SeatNumber,
		"price":       ticket.Price,
	})
	return ticket, nil
}

// DeleteTicket removes a ticket from a pending booking and frees its seat.
func (s *service) DeleteTicket(ctx context.Context, id uint) error {
	var showtimeID uint
	err := s.repo.WithTx(ctx, func(repo Repository) error {
		ticket, err := repo.GetByID(ctx, id)
		if err != nil {
			return apperr.FromStorage("get ticket", err, ErrTicketNotFound, nil)
		}

		booking, err := repo.LockBooking(ctx, ticket.BookingID)
		if err != nil {
			return apperr.FromStorage("lock booking", err, bookings.ErrBookingNotFound, nil)
		}
		if booking.Status.IsTerminal() {
			return ErrBookingNotPending.WithDetail("booking %d is %s", booking.ID, booking.Status)
		}

		showtimeID = ticket.ShowtimeID
		return apperr.FromStorage("delete ticket", repo.Delete(ctx, id), ErrTicketNotFound, nil)
	})
	if err != nil {
		return apperr.FromStorage("delete ticket", err, nil, nil)
	}

	s.InvalidateSeatMaps(ctx, showtimeID)
	return nil
}

func (s *service) GetTicket(ctx context.Context, id uint) (*Ticket, error) {
	ticket, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromStorage("get ticket", err, ErrTicketNotFound, nil)
	}
	return ticket, nil
}

func (s *service) ListTicketsForBooking(ctx context.Context, bookingID uint) ([]Ticket, error) {
	tickets, err := s.repo.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, apperr.Dependency("list booking tickets", err)
	}
	return tickets, nil
}

func (s *service) ListTicketsForCustomer(ctx context.Context, customerID uint) ([]Ticket, error) {
	if customerID == 0 {
		return nil, apperr.Validation("customer id is required")
	}
	tickets, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, apperr.Dependency("list customer tickets", err)
	}
	return tickets, nil
}

// GetSeatNumbersForShowtime returns the sorted seats held by pending or
// confirmed bookings. Results are cached briefly and dropped on every change.
func (s *service) GetSeatNumbersForShowtime(ctx context.Context, showtimeID uint) ([]string, error) {
	fetch := func() (interface{}, error) {
		seats, err := s.repo.SeatNumbers(ctx, showtimeID)
		if err != nil {
			return nil, apperr.Dependency("list seat numbers", err)
		}
		if seats == nil {
			seats = []string{}
		}
		sort.Strings(seats)
		return seats, nil
	}

	if s.cacheService == nil {
		data, err := fetch()
		if err != nil {
			return nil, err
		}
		return data.([]string), nil
	}

	var seats []string
	key := constants.BuildShowtimeSeatsKey(showtimeID)
	if err := s.cacheService.GetOrSet(ctx, key, s.seatMapTTL, fetch, &seats); err != nil {
		return nil, err
	}
	return seats, nil
}

func (s *service) GetSeatMap(ctx context.Context, showtimeID uint) (*SeatMap, error) {
	showtime, err := s.repo.GetShowtime(ctx, showtimeID)
	if err != nil {
		return nil, apperr.FromStorage("get showtime", err, showtimes.ErrShowtimeNotFound, nil)
	}

	seats, err := s.GetSeatNumbersForShowtime(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	available := showtime.TotalSeats - len(seats)
	if available < 0 {
		available = 0
	}
	return &SeatMap{
		ShowtimeID:     showtime.ID,
		TotalSeats:     showtime.TotalSeats,
		TakenSeats:     seats,
		AvailableCount: available,
	}, nil
}

// InvalidateSeatMaps drops cached seat maps. Failures are logged; the entries
// expire on their own.
func (s *service) InvalidateSeatMaps(ctx context.Context, showtimeIDs ...uint) {
	if s.cacheService == nil || len(showtimeIDs) == 0 {
		return
	}

	keys := make([]string, 0, len(showtimeIDs))
	for _, id := range showtimeIDs {
		keys = append(keys, constants.BuildShowtimeSeatsKey(id))
	}
	if err := s.cacheService.Delete(ctx, keys...); err != nil {
		s.log.WithError(err).Warn("failed to invalidate seat maps", "showtime_ids", showtimeIDs)
	}
}
