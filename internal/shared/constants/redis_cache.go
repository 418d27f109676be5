package constants

import (
	"strconv"
	"time"
)

// Redis keys follow cineplex:{module}:{operation}:{identifier}

const (
	CACHE_PREFIX = "cineplex"
)

// Highly dynamic data
const (
	TTL_REALTIME_SHORT = 30 * time.Second
)

// Seat map of a showtime: seat numbers held by pending or confirmed bookings
const (
	CACHE_KEY_SHOWTIME_SEATS = CACHE_PREFIX + ":tickets:seats:showtime:" // + showtime-id
	TTL_SHOWTIME_SEATS       = TTL_REALTIME_SHORT
)

// Locks for singleton background jobs
const (
	LOCK_KEY_BOOKING_EXPIRY_SWEEP = CACHE_PREFIX + ":lock:bookings:expiry_sweep"
)

func BuildShowtimeSeatsKey(showtimeID uint) string {
	return CACHE_KEY_SHOWTIME_SEATS + strconv.FormatUint(uint64(showtimeID), 10)
}
