package bookings

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// IsValid checks if the booking status is valid
func (s Status) IsValid() bool {
	for _, known := range allStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is possible
func (s Status) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusCancelled
}

// CanTransitionTo allows pending -> confirmed and pending -> cancelled only
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusPending && (next == StatusConfirmed || next == StatusCancelled)
}

// HoldsSeats reports whether tickets of a booking in this status occupy seats
func (s Status) HoldsSeats() bool {
	return s == StatusPending || s == StatusConfirmed
}

var allStatuses = []Status{StatusPending, StatusConfirmed, StatusCancelled}

// SeatHoldingStatuses lists the statuses for which HoldsSeats is true
func SeatHoldingStatuses() []Status {
	var held []Status
	for _, s := range allStatuses {
		if s.HoldsSeats() {
			held = append(held, s)
		}
	}
	return held
}
