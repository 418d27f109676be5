package ratelimit

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestGetRateLimitType(t *testing.T) {
	tests := []struct {
		path string
		want RateLimitType
	}{
		{"/health", RateLimitTypeHealth},
		{"/api/v1/admin/showtimes", RateLimitTypeAdmin},
		{"/api/v1/admin/bookings/expire", RateLimitTypeAdmin},
		{"/api/v1/bookings/:id/confirm", RateLimitTypeBooking},
		{"/api/v1/tickets", RateLimitTypeBooking},
		{"/api/v1/showtimes/:id/seats", RateLimitTypePublic},
		{"/api/v1/promotions/validate/:code", RateLimitTypePublic},
		{"/swagger/*any", RateLimitTypeDefault},
	}

	for _, tt := range tests {
		if got := getRateLimitType(tt.path); got != tt.want {
			t.Errorf("getRateLimitType(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}
}

func TestGetClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	c.Request.RemoteAddr = "10.0.0.9:5555"
	c.Request.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	if got := getClientIP(c); got != "203.0.113.7" {
		t.Errorf("getClientIP() = %q", got)
	}

	c.Request.Header.Del("X-Forwarded-For")
	if got := getClientIP(c); got != "10.0.0.9" {
		t.Errorf("getClientIP() without headers = %q", got)
	}
}

func TestDisabledLimiterAllows(t *testing.T) {
	rl := NewRateLimiter(nil, &Config{Enabled: false, BookingRequests: 5})

	res, err := rl.IsAllowed(context.Background(), "1.2.3.4", RateLimitTypeBooking)
	if err != nil {
		t.Fatalf("IsAllowed: %v", err)
	}
	if !res.Allowed || res.Limit != 5 {
		t.Errorf("unexpected result %+v", res)
	}
}
