package bookings

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cineplex/internal/shared/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

func newTestRouter(f *fixture, authEnabled bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.JWT.Enabled = authEnabled
	cfg.JWT.Secret = "test-secret"

	engine := gin.New()
	SetupBookingRoutes(engine.Group("/api/v1"), NewController(f.svc), cfg)
	return engine
}

func perform(engine *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestCreateBookingUsesBodyWithoutToken(t *testing.T) {
	f := newFixture(100)
	engine := newTestRouter(f, false)

	w := perform(engine, http.MethodPost, "/api/v1/bookings", `{"customer_id":8}`, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data Booking `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.CustomerID != 8 || resp.Data.Status != StatusPending {
		t.Errorf("booking = %+v", resp.Data)
	}
}

func TestCreateBookingPrefersTokenCustomer(t *testing.T) {
	f := newFixture(100)
	engine := newTestRouter(f, true)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"customer_id": 7,
		"role":        "USER",
		"type":        "access",
		"exp":         time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}

	w := perform(engine, http.MethodPost, "/api/v1/bookings", `{"customer_id":8}`, signed)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	for _, b := range f.repo.bookings {
		if b.CustomerID != 7 {
			t.Errorf("booking for customer %d, want the token's customer 7", b.CustomerID)
		}
	}
}

func TestBookingRoutesMapErrors(t *testing.T) {
	f := newFixture(100)
	engine := newTestRouter(f, false)
	confirmed := f.repo.add(7, StatusConfirmed, baseTime)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown customer", http.MethodPost, "/api/v1/bookings", `{"customer_id":99}`, http.StatusNotFound},
		{"missing customer", http.MethodPost, "/api/v1/bookings", ``, http.StatusBadRequest},
		{"bad id", http.MethodGet, "/api/v1/bookings/abc", ``, http.StatusBadRequest},
		{"missing booking", http.MethodPut, "/api/v1/bookings/404/confirm", ``, http.StatusNotFound},
		{"confirm twice", http.MethodPut, "/api/v1/bookings/1/confirm", ``, http.StatusConflict},
		{"details", http.MethodGet, "/api/v1/bookings/1/details", ``, http.StatusOK},
		{"customer bookings", http.MethodGet, "/api/v1/customers/7/bookings", ``, http.StatusOK},
		{"expire sweep", http.MethodPost, "/api/v1/admin/bookings/expire", `{"threshold_minutes":15}`, http.StatusOK},
		{"bad threshold", http.MethodPost, "/api/v1/admin/bookings/expire", `{"threshold_minutes":-1}`, http.StatusBadRequest},
	}

	if confirmed.ID != 1 {
		t.Fatalf("fixture booking id = %d", confirmed.ID)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(engine, tt.method, tt.path, tt.body, "")
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d, body %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}
