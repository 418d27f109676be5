package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	// Get log level from environment
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	// Create handler options
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Create handler based on environment
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		// Use text handler for development (more readable)
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		// Use JSON handler for production (structured)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	// Create logger
	logger := slog.New(handler)

	return &Logger{
		Logger: logger,
	}
}

// NewWithHandler builds a logger on top of an existing slog handler
func NewWithHandler(handler slog.Handler) *Logger {
	return &Logger{Logger: slog.New(handler)}
}

// Discard returns a logger that drops every record
func Discard() *Logger {
	return NewWithHandler(slog.NewTextHandler(io.Discard, nil))
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID adds request ID to logger context
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("request_id", requestID)),
	}
}

// WithCustomerID adds customer ID to logger context
func (l *Logger) WithCustomerID(customerID uint) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.Uint64("customer_id", uint64(customerID))),
	}
}

// WithComponent tags every record with the emitting component
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("component", name)),
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// HTTP logging methods

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.String("user_agent", c.Request.UserAgent()),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogHTTPError logs an HTTP error
func (l *Logger) LogHTTPError(c *gin.Context, err error, statusCode int) {
	l.Logger.ErrorContext(c.Request.Context(),
		"HTTP Error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", statusCode),
		slog.String("error", err.Error()),
		slog.String("ip", c.ClientIP()),
	)
}

// Business logic logging methods

// LogShowtimeScheduled logs an admitted showtime
func (l *Logger) LogShowtimeScheduled(ctx context.Context, showtimeID, roomID uint, date, startTime string) {
	l.Logger.InfoContext(ctx,
		"Showtime Scheduled",
		slog.Uint64("showtime_id", uint64(showtimeID)),
		slog.Uint64("room_id", uint64(roomID)),
		slog.String("date", date),
		slog.String("start_time", startTime),
	)
}

// LogBookingCreated logs when a booking shell is created
func (l *Logger) LogBookingCreated(ctx context.Context, bookingID, customerID uint) {
	l.Logger.InfoContext(ctx,
		"Booking Created",
		slog.Uint64("booking_id", uint64(bookingID)),
		slog.Uint64("customer_id", uint64(customerID)),
	)
}

func (l *Logger) LogBookingConfirmed(ctx context.Context, bookingID, customerID uint) {
	l.Logger.InfoContext(ctx,
		"Booking Confirmed",
		slog.Uint64("booking_id", uint64(bookingID)),
		slog.Uint64("customer_id", uint64(customerID)),
	)
}

// LogBookingCancelled logs when a booking is cancelled, by a caller or by expiry
func (l *Logger) LogBookingCancelled(ctx context.Context, bookingID uint, reason string, ticketsReleased int) {
	l.Logger.InfoContext(ctx,
		"Booking Cancelled",
		slog.Uint64("booking_id", uint64(bookingID)),
		slog.String("reason", reason),
		slog.Int("tickets_released", ticketsReleased),
	)
}

// LogBookingsExpired logs the outcome of a pending-booking sweep
func (l *Logger) LogBookingsExpired(ctx context.Context, count int, threshold, duration time.Duration) {
	l.Logger.InfoContext(ctx,
		"Pending Bookings Expired",
		slog.Int("count", count),
		slog.Duration("threshold", threshold),
		slog.Duration("duration", duration),
	)
}

func (l *Logger) LogPromotionSent(ctx context.Context, promotionID uint, recipients int) {
	l.Logger.InfoContext(ctx,
		"Promotion Sent",
		slog.Uint64("promotion_id", uint64(promotionID)),
		slog.Int("recipients", recipients),
	)
}

// LogNotificationFailed logs a notification that could not be delivered.
// Notification failures never propagate to the caller.
func (l *Logger) LogNotificationFailed(ctx context.Context, kind string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+4)
	args = append(args, slog.String("notification", kind), slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.WarnContext(ctx, "Notification Failed", args...)
}

// LogRateLimitExceeded logs rate limit exceeded
func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx,
		"Rate Limit Exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
	)
}

// LogSlowQuery logs slow database queries
func (l *Logger) LogSlowQuery(ctx context.Context, query string, duration time.Duration) {
	l.Logger.WarnContext(ctx,
		"Slow Database Query",
		slog.String("query", query),
		slog.Duration("duration", duration),
	)
}

// Helper methods for common patterns

// InfoWithContext logs an info message with context
func (l *Logger) InfoWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.InfoContext(ctx, msg, args...)
}

// ErrorWithContext logs an error message with context
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, msg, args...)
}

// DebugWithContext logs a debug message with context
func (l *Logger) DebugWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.DebugContext(ctx, msg, args...)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
