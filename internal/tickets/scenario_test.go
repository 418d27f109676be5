package tickets

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"cineplex/internal/bookings"
	"cineplex/internal/notifications"
	"cineplex/internal/showtimes"
	"cineplex/pkg/cache"
	"cineplex/pkg/logger"

	"gorm.io/gorm"
)

// bookingStore serves the booking service from the same maps the ticket fake
// uses, so both services see one consistent store
type bookingStore struct {
	f      *fakeRepository
	nextID uint
}

func (s *bookingStore) WithTx(ctx context.Context, fn func(repo bookings.Repository) error) error {
	tickets := append([]Ticket(nil), s.f.tickets...)
	saved := make(map[uint]bookings.Booking, len(s.f.bookings))
	for id, b := range s.f.bookings {
		saved[id] = *b
	}
	if err := fn(s); err != nil {
		s.f.tickets = tickets
		s.f.bookings = make(map[uint]*bookings.Booking, len(saved))
		for id, b := range saved {
			b := b
			s.f.bookings[id] = &b
		}
		return err
	}
	return nil
}

func (s *bookingStore) Create(ctx context.Context, booking *bookings.Booking) error {
	s.nextID++
	booking.ID = s.nextID
	cp := *booking
	s.f.bookings[booking.ID] = &cp
	return nil
}

func (s *bookingStore) GetByID(ctx context.Context, id uint) (*bookings.Booking, error) {
	b, ok := s.f.bookings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *bookingStore) LockByID(ctx context.Context, id uint) (*bookings.Booking, error) {
	return s.GetByID(ctx, id)
}

func (s *bookingStore) Delete(ctx context.Context, id uint) error {
	if _, ok := s.f.bookings[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.f.bookings, id)
	return nil
}

func (s *bookingStore) ListByCustomer(ctx context.Context, customerID uint) ([]bookings.Booking, error) {
	var out []bookings.Booking
	for _, b := range s.f.bookings {
		if b.CustomerID == customerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *bookingStore) transition(id uint, to bookings.Status, at time.Time) bool {
	b, ok := s.f.bookings[id]
	if !ok || b.Status != bookings.StatusPending {
		return false
	}
	b.Status = to
	b.UpdatedAt = at
	if to == bookings.StatusConfirmed {
		b.ConfirmedAt = &at
	} else {
		b.CancelledAt = &at
	}
	return true
}

func (s *bookingStore) MarkConfirmed(ctx context.Context, id uint, at time.Time) (bool, error) {
	return s.transition(id, bookings.StatusConfirmed, at), nil
}

func (s *bookingStore) MarkCancelled(ctx context.Context, id uint, at time.Time) (bool, error) {
	return s.transition(id, bookings.StatusCancelled, at), nil
}

func (s *bookingStore) ReleaseTickets(ctx context.Context, bookingID uint) ([]uint, int64, error) {
	seen := map[uint]bool{}
	var showtimeIDs []uint
	var released int64
	kept := s.f.tickets[:0]
	for _, t := range s.f.tickets {
		if t.BookingID != bookingID {
			kept = append(kept, t)
			continue
		}
		released++
		if !seen[t.ShowtimeID] {
			seen[t.ShowtimeID] = true
			showtimeIDs = append(showtimeIDs, t.ShowtimeID)
		}
	}
	s.f.tickets = kept
	return showtimeIDs, released, nil
}

func (s *bookingStore) TicketLines(ctx context.Context, bookingID uint) ([]bookings.TicketLine, error) {
	var lines []bookings.TicketLine
	for _, t := range s.f.tickets {
		if t.BookingID != bookingID {
			continue
		}
		st := s.f.showtimes[t.ShowtimeID]
		lines = append(lines, bookings.TicketLine{
			TicketID:   t.ID,
			ShowtimeID: t.ShowtimeID,
			MovieID:    st.MovieID,
			ShowDate:   st.ShowDate,
			StartTime:  st.StartTime,
			SeatNumber: t.SeatNumber,
			TicketType: string(t.TicketType),
			Price:      t.Price,
		})
	}
	return lines, nil
}

func (s *bookingStore) ListStalePendingIDs(ctx context.Context, cutoff time.Time, afterID uint, limit int) ([]uint, error) {
	var ids []uint
	for id, b := range s.f.bookings {
		if id > afterID && b.Status == bookings.StatusPending && !b.CreatedAt.After(cutoff) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

type customerBook map[uint]string

func (c customerBook) CustomerExists(ctx context.Context, id uint) (bool, error) {
	_, ok := c[id]
	return ok, nil
}

func (c customerBook) CustomerEmail(ctx context.Context, id uint) (string, error) {
	email, ok := c[id]
	if !ok {
		return "", errors.New("unknown customer")
	}
	return email, nil
}

type capturedConfirmation struct {
	email        string
	confirmation notifications.BookingConfirmation
}

type capturingNotifier struct {
	sent []capturedConfirmation
}

func (n *capturingNotifier) SendBookingConfirmation(ctx context.Context, email string, c notifications.BookingConfirmation) error {
	n.sent = append(n.sent, capturedConfirmation{email: email, confirmation: c})
	return nil
}

type scenario struct {
	repo     *fakeRepository
	tickets  Service
	bookings bookings.Service
	notifier *capturingNotifier
}

func newScenario() *scenario {
	repo := newFakeRepository()
	repo.showtimes[1] = &showtimes.Showtime{
		ID: 1, MovieID: 42, RoomID: 1, ShowDate: "2024-06-01", StartTime: "14:00",
		DurationMinutes: 120, TotalSeats: 50, Price: 12.5,
	}

	ticketService := newTestService(repo)
	ticketService.SetCacheService(cache.NewMemoryService(), time.Minute)

	directory := customerBook{7: "ana@example.com", 8: "ben@example.com"}
	bookingService := bookings.NewService(&bookingStore{f: repo}, directory, bookings.DefaultConfig(), logger.Discard())
	bookingService.SetSeatMapInvalidator(ticketService)

	notifier := &capturingNotifier{}
	bookingService.SetNotifier(notifier, nil)

	return &scenario{repo: repo, tickets: ticketService, bookings: bookingService, notifier: notifier}
}

func TestCustomerBookingScenario(t *testing.T) {
	s := newScenario()
	ctx := context.Background()

	booking, err := s.bookings.CreateBookingShell(ctx, 7)
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if booking.Status != bookings.StatusPending {
		t.Fatalf("status = %s, want pending", booking.Status)
	}

	if _, err := s.tickets.IssueTicket(ctx, issue(booking.ID, 1, "F12")); err != nil {
		t.Fatalf("issue F12: %v", err)
	}

	other, err := s.bookings.CreateBookingShell(ctx, 8)
	if err != nil {
		t.Fatalf("create second booking: %v", err)
	}
	if _, err := s.tickets.IssueTicket(ctx, issue(other.ID, 1, "F12")); !errors.Is(err, ErrSeatTaken) {
		t.Fatalf("err = %v, want ErrSeatTaken", err)
	}

	confirmed, err := s.bookings.ConfirmBooking(ctx, booking.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != bookings.StatusConfirmed {
		t.Errorf("status = %s, want confirmed", confirmed.Status)
	}

	if len(s.notifier.sent) != 1 {
		t.Fatalf("confirmations = %d, want 1", len(s.notifier.sent))
	}
	sent := s.notifier.sent[0]
	if sent.email != "ana@example.com" || sent.confirmation.Total != 12.5 {
		t.Errorf("confirmation = %+v", sent)
	}
	if len(sent.confirmation.Tickets) != 1 || sent.confirmation.Tickets[0].SeatNumber != "F12" {
		t.Errorf("tickets = %+v", sent.confirmation.Tickets)
	}
}

func TestCancelledBookingFreesSeatForNextCustomer(t *testing.T) {
	s := newScenario()
	ctx := context.Background()

	first, err := s.bookings.CreateBookingShell(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.tickets.IssueTicket(ctx, issue(first.ID, 1, "A1")); err != nil {
		t.Fatal(err)
	}

	// prime the seat map cache so the cancellation has to invalidate it
	seatMap, err := s.tickets.GetSeatMap(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if seatMap.AvailableCount != 49 {
		t.Fatalf("available = %d, want 49", seatMap.AvailableCount)
	}

	if _, err := s.bookings.CancelBooking(ctx, first.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	seatMap, err = s.tickets.GetSeatMap(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if seatMap.AvailableCount != 50 {
		t.Errorf("available after cancel = %d, want 50", seatMap.AvailableCount)
	}

	second, err := s.bookings.CreateBookingShell(ctx, 8)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.tickets.IssueTicket(ctx, issue(second.ID, 1, "A1")); err != nil {
		t.Fatalf("seat should be free again: %v", err)
	}
}
