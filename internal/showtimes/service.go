package showtimes

import (
	"context"
	"fmt"
	"sort"

	"cineplex/internal/shared/apperr"
	"cineplex/internal/shared/utils/validation"
	"cineplex/pkg/logger"
)

var (
	ErrShowtimeNotFound   = apperr.NotFound("showtime_not_found", "showtime not found")
	ErrInvalidRoom        = apperr.New(apperr.KindValidation, "invalid_room", "room does not exist or has no seats")
	ErrOverlap            = apperr.New(apperr.KindConflict, "showtime_overlap", "showtime overlaps an existing showtime in the room")
	ErrShowtimeHasTickets = apperr.New(apperr.KindState, "showtime_has_tickets", "showtime has sold tickets")
)

type Service interface {
	ScheduleShowtime(ctx context.Context, req ScheduleRequest) (*Showtime, error)
	ScheduleShowtimes(ctx context.Context, reqs []ScheduleRequest) ([]Showtime, error)

	GetShowtime(ctx context.Context, id uint) (*Showtime, error)
	ListShowtimesForMovie(ctx context.Context, movieID uint) ([]Showtime, error)
	ListShowtimesForRoom(ctx context.Context, roomID uint, date string) ([]Showtime, error)

	DeleteShowtime(ctx context.Context, id uint) error
}

type service struct {
	repo Repository
	log  *logger.Logger
}

func NewService(repo Repository, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{
		repo: repo,
		log:  log.WithComponent("showtimes"),
	}
}

// candidate is a validated request with its resolved interval
type candidate struct {
	req      ScheduleRequest
	interval Interval
}

func (s *service) ScheduleShowtime(ctx context.Context, req ScheduleRequest) (*Showtime, error) {
	created, err := s.ScheduleShowtimes(ctx, []ScheduleRequest{req})
	if err != nil {
		return nil, err
	}
	return &created[0], nil
}

// ScheduleShowtimes admits every request or none of them. Each candidate is
// checked against stored showtimes and against the candidates before it.
func (s *service) ScheduleShowtimes(ctx context.Context, reqs []ScheduleRequest) ([]Showtime, error) {
	candidates, err := prepare(reqs)
	if err != nil {
		return nil, err
	}

	created := make([]Showtime, 0, len(candidates))
	err = s.repo.WithTx(ctx, func(repo Repository) error {
		created = created[:0]

		seats, err := lockRooms(ctx, repo, candidates)
		if err != nil {
			return err
		}

		for i, c := range candidates {
			for j := 0; j < i; j++ {
				prev := candidates[j]
				if prev.req.RoomID == c.req.RoomID && prev.interval.Overlaps(c.interval) {
					return ErrOverlap.WithDetail("batch items %d and %d collide in room %d", j, i, c.req.RoomID)
				}
			}

			existing, err := repo.FindOverlapping(ctx, c.req.RoomID, c.interval.Start, c.interval.End)
			if err != nil {
				return apperr.Dependency("find overlapping showtimes", err)
			}
			if len(existing) > 0 {
				return ErrOverlap.WithDetail("room %d already has showtime %d from %s %s",
					c.req.RoomID, existing[0].ID, existing[0].ShowDate, existing[0].StartTime)
			}

			showtime := Showtime{
				MovieID:         c.req.MovieID,
				RoomID:          c.req.RoomID,
				ShowDate:        c.interval.Start.Format(DateLayout),
				StartTime:       c.interval.Start.Format(TimeLayout),
				DurationMinutes: c.req.DurationMinutes,
				TotalSeats:      seats[c.req.RoomID],
				Price:           c.req.Price,
				StartsAt:        c.interval.Start,
				EndsAt:          c.interval.End,
			}
			if err := repo.Create(ctx, &showtime); err != nil {
				return apperr.FromStorage("create showtime", err, nil, ErrOverlap)
			}
			created = append(created, showtime)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.FromStorage("schedule showtimes", err, nil, nil)
	}

	for _, st := range created {
		s.log.LogShowtimeScheduled(ctx, st.ID, st.RoomID, st.ShowDate, st.StartTime)
	}
	return created, nil
}

func prepare(reqs []ScheduleRequest) ([]candidate, error) {
	if len(reqs) == 0 {
		return nil, apperr.Validation("at least one showtime is required")
	}

	candidates := make([]candidate, 0, len(reqs))
	for i, req := range reqs {
		if err := validation.Struct(req); err != nil {
			return nil, fmt.Errorf("showtime %d: %w", i, err)
		}
		interval, err := ParseInterval(req.Date, req.StartTime, req.DurationMinutes)
		if err != nil {
			return nil, apperr.Validation(fmt.Sprintf("showtime %d: %v", i, err))
		}
		candidates = append(candidates, candidate{req: req, interval: interval})
	}
	return candidates, nil
}

// lockRooms takes a row lock on every room in the batch, lowest id first, and
// returns each room's seat count.
func lockRooms(ctx context.Context, repo Repository, candidates []candidate) (map[uint]int, error) {
	seats := make(map[uint]int)
	for _, c := range candidates {
		seats[c.req.RoomID] = 0
	}

	ids := make([]uint, 0, len(seats))
	for id := range seats {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		room, err := repo.LockRoom(ctx, id)
		if err != nil {
			return nil, apperr.FromStorage("lock room", err, ErrInvalidRoom.WithDetail("room %d not found", id), nil)
		}
		if !room.CanHostShowtimes() {
			return nil, ErrInvalidRoom.WithDetail("room %d has %d seats", id, room.SeatCount)
		}
		seats[id] = room.SeatCount
	}
	return seats, nil
}

func (s *service) GetShowtime(ctx context.Context, id uint) (*Showtime, error) {
	showtime, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromStorage("get showtime", err, ErrShowtimeNotFound, nil)
	}
	return showtime, nil
}

func (s *service) ListShowtimesForMovie(ctx context.Context, movieID uint) ([]Showtime, error) {
	if movieID == 0 {
		return nil, apperr.Validation("movie id is required")
	}
	showtimes, err := s.repo.ListByMovie(ctx, movieID)
	if err != nil {
		return nil, apperr.Dependency("list showtimes for movie", err)
	}
	return showtimes, nil
}

func (s *service) ListShowtimesForRoom(ctx context.Context, roomID uint, date string) ([]Showtime, error) {
	if roomID == 0 {
		return nil, apperr.Validation("room id is required")
	}
	if err := validation.Var(date, "required,datetime=2006-01-02"); err != nil {
		return nil, apperr.Validation("date must be YYYY-MM-DD")
	}
	showtimes, err := s.repo.ListByRoomAndDate(ctx, roomID, date)
	if err != nil {
		return nil, apperr.Dependency("list showtimes for room", err)
	}
	return showtimes, nil
}

// DeleteShowtime removes a showtime that has no tickets. The showtime row is
// locked so a concurrent ticket issue cannot slip in between count and delete.
func (s *service) DeleteShowtime(ctx context.Context, id uint) error {
	err := s.repo.WithTx(ctx, func(repo Repository) error {
		if _, err := repo.LockByID(ctx, id); err != nil {
			return apperr.FromStorage("lock showtime", err, ErrShowtimeNotFound, nil)
		}

		sold, err := repo.CountTickets(ctx, id)
		if err != nil {
			return apperr.Dependency("count showtime tickets", err)
		}
		if sold > 0 {
			return ErrShowtimeHasTickets.WithDetail("%d tickets sold", sold)
		}

		return apperr.FromStorage("delete showtime", repo.Delete(ctx, id), ErrShowtimeNotFound, nil)
	})
	if err != nil {
		return apperr.FromStorage("delete showtime", err, nil, nil)
	}

	s.log.InfoWithContext(ctx, "showtime deleted", map[string]interface{}{"showtime_id": id})
	return nil
}
