package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BOOKING_PENDING_EXPIRY", "")
	t.Setenv("PRICING_STRATEGY", "")
	for _, key := range []string{"API_PREFIX", "API_VERSION", "REDIS_HOST", "REDIS_PORT"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Booking.PendingExpiry != 30*time.Minute {
		t.Errorf("PendingExpiry = %v, want 30m", cfg.Booking.PendingExpiry)
	}
	if cfg.Pricing.Strategy != "flat" {
		t.Errorf("Pricing.Strategy = %q, want flat", cfg.Pricing.Strategy)
	}
	if got := cfg.GetAPIBasePath(); got != "/api/v1" {
		t.Errorf("GetAPIBasePath() = %q", got)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Redis.Addr = %q", cfg.Redis.Addr)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BOOKING_PENDING_EXPIRY", "45m")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("PRICING_CHILD_MULTIPLIER", "0.5")
	t.Setenv("DB_HOST", "db")
	t.Setenv("BOOKING_SWEEP_BATCH_SIZE", "not-a-number")
	for _, key := range []string{"DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Booking.PendingExpiry != 45*time.Minute {
		t.Errorf("PendingExpiry = %v, want 45m", cfg.Booking.PendingExpiry)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Errorf("Kafka.Brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.Pricing.ChildMultiplier != 0.5 {
		t.Errorf("ChildMultiplier = %v", cfg.Pricing.ChildMultiplier)
	}
	if cfg.Booking.SweepBatchSize != 100 {
		t.Errorf("SweepBatchSize = %d, want fallback 100", cfg.Booking.SweepBatchSize)
	}
	want := "host=db port=5432 user=cineplex_user password=cineplex_password dbname=cineplex_db sslmode=disable"
	if cfg.Database.DSN != want {
		t.Errorf("DSN = %q", cfg.Database.DSN)
	}
}
