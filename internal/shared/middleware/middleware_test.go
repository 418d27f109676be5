package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cineplex/internal/shared/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newEngine(cfg *config.Config, handlers ...gin.HandlerFunc) (*gin.Engine, *uint) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	var seen uint
	handlers = append(handlers, func(c *gin.Context) {
		seen, _ = CustomerIDFromContext(c)
		c.Status(http.StatusOK)
	})
	engine.GET("/protected", handlers...)
	return engine, &seen
}

func authConfig(enabled bool) *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Enabled = enabled
	cfg.JWT.Secret = testSecret
	return cfg
}

func TestJWTAuth(t *testing.T) {
	cfg := authConfig(true)
	valid := signToken(t, jwt.MapClaims{
		"customer_id": 7,
		"role":        "USER",
		"type":        "access",
		"exp":         time.Now().Add(time.Hour).Unix(),
	})
	refresh := signToken(t, jwt.MapClaims{
		"customer_id": 7,
		"type":        "refresh",
		"exp":         time.Now().Add(time.Hour).Unix(),
	})
	expired := signToken(t, jwt.MapClaims{
		"customer_id": 7,
		"type":        "access",
		"exp":         time.Now().Add(-time.Hour).Unix(),
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantID     uint
	}{
		{"valid token", "Bearer " + valid, http.StatusOK, 7},
		{"missing header", "", http.StatusUnauthorized, 0},
		{"wrong scheme", "Token " + valid, http.StatusUnauthorized, 0},
		{"refresh token", "Bearer " + refresh, http.StatusUnauthorized, 0},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, seen := newEngine(cfg, JWTAuthWithConfig(cfg))
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if *seen != tt.wantID {
				t.Errorf("customer id = %d, want %d", *seen, tt.wantID)
			}
		})
	}
}

func TestJWTAuthDisabled(t *testing.T) {
	cfg := authConfig(false)
	engine, _ := newEngine(cfg, JWTAuthWithConfig(cfg), RequireAdminWithConfig(cfg))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 when auth is disabled", w.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	cfg := authConfig(true)

	for role, want := range map[string]int{"ADMIN": http.StatusOK, "USER": http.StatusForbidden} {
		token := signToken(t, jwt.MapClaims{
			"customer_id": "1",
			"role":        role,
			"type":        "access",
			"exp":         time.Now().Add(time.Hour).Unix(),
		})
		engine, _ := newEngine(cfg, JWTAuthWithConfig(cfg), RequireAdminWithConfig(cfg))
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		if w.Code != want {
			t.Errorf("role %s: status = %d, want %d", role, w.Code, want)
		}
	}
}

func TestCustomerIDClaim(t *testing.T) {
	tests := []struct {
		in   interface{}
		want uint
		ok   bool
	}{
		{float64(7), 7, true},
		{"12", 12, true},
		{float64(0), 0, false},
		{float64(1.5), 0, false},
		{"abc", 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := customerIDClaim(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("customerIDClaim(%v) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
