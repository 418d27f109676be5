package showtimes

import (
	"fmt"
	"time"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the two ranges share any instant. Ranges that only
// touch at an endpoint do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// ParseInterval resolves a calendar date, a wall clock start and a duration
// into absolute instants. Shows that run past midnight end on the next day.
func ParseInterval(date, startTime string, durationMinutes int) (Interval, error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return Interval{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	clock, err := time.Parse(TimeLayout, startTime)
	if err != nil {
		return Interval{}, fmt.Errorf("invalid start time %q: %w", startTime, err)
	}
	if durationMinutes <= 0 {
		return Interval{}, fmt.Errorf("duration must be positive, got %d", durationMinutes)
	}

	start := day.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute)
	return Interval{
		Start: start,
		End:   start.Add(time.Duration(durationMinutes) * time.Minute),
	}, nil
}
