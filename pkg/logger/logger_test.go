package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return NewWithHandler(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLogBookingsExpiredFields(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	l.LogBookingsExpired(context.Background(), 3, 30*time.Minute, 2*time.Second)

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record["msg"] != "Pending Bookings Expired" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record["count"] != float64(3) {
		t.Errorf("count = %v", record["count"])
	}
}

func TestLogNotificationFailedIsWarning(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf).WithComponent("bookings")

	l.LogNotificationFailed(context.Background(), "booking_confirmation", errors.New("smtp down"), map[string]interface{}{"booking_id": 9})

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record["level"] != "WARN" || record["error"] != "smtp down" || record["component"] != "bookings" {
		t.Errorf("unexpected record: %s", buf.String())
	}
}

func TestGetLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := getLogLevel(in); got != want {
			t.Errorf("getLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
