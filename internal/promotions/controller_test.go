package promotions

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cineplex/internal/shared/config"

	"github.com/gin-gonic/gin"
)

func newTestRouter(f *fixture, authEnabled bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.JWT.Enabled = authEnabled
	cfg.JWT.Secret = "test-secret"

	engine := gin.New()
	SetupPromotionRoutes(engine.Group("/api/v1"), NewController(f.svc), cfg)
	return engine
}

func perform(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestPromotionLifecycleOverHTTP(t *testing.T) {
	f := newFixture()
	engine := newTestRouter(f, false)

	w := perform(engine, http.MethodPost, "/api/v1/admin/promotions",
		`{"code":"popcorn10","discount_percentage":10,"description":"Free popcorn upgrade"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	var created struct {
		Data Promotion `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	if w := perform(engine, http.MethodGet, "/api/v1/promotions/validate/POPCORN10", ""); w.Code != http.StatusNotFound {
		t.Errorf("validate before send = %d, want 404", w.Code)
	}

	if w := perform(engine, http.MethodPost, "/api/v1/admin/promotions/1/send", ""); w.Code != http.StatusAccepted {
		t.Fatalf("send status = %d, body %s", w.Code, w.Body.String())
	}
	if w := perform(engine, http.MethodPost, "/api/v1/admin/promotions/1/send", ""); w.Code != http.StatusConflict {
		t.Errorf("second send = %d, want 409", w.Code)
	}

	w = perform(engine, http.MethodGet, "/api/v1/promotions/validate/popcorn10", "")
	if w.Code != http.StatusOK {
		t.Fatalf("validate status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"discount_percentage":10`) {
		t.Errorf("body = %s", w.Body.String())
	}

	if w := perform(engine, http.MethodDelete, "/api/v1/admin/promotions/1", ""); w.Code != http.StatusOK {
		t.Errorf("delete status = %d", w.Code)
	}
}

func TestPromotionErrorsOverHTTP(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"bad discount", http.MethodPost, "/api/v1/admin/promotions", `{"discount_percentage":0,"description":"x"}`, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/api/v1/admin/promotions", `{`, http.StatusBadRequest},
		{"send missing", http.MethodPost, "/api/v1/admin/promotions/42/send", "", http.StatusNotFound},
		{"bad id", http.MethodDelete, "/api/v1/admin/promotions/abc", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestRouter(newFixture(), false)
			if w := perform(engine, tt.method, tt.path, tt.body); w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	engine := newTestRouter(newFixture(), true)

	if w := perform(engine, http.MethodGet, "/api/v1/admin/promotions", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if w := perform(engine, http.MethodGet, "/api/v1/promotions/validate/ANY12345", ""); w.Code != http.StatusNotFound {
		t.Errorf("validate stays public, status = %d", w.Code)
	}
}
