package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"cineplex/pkg/logger"

	"github.com/gin-gonic/gin"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newLoggedEngine(out *lockedBuffer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.NewWithHandler(slog.NewTextHandler(out, nil))

	engine := gin.New()
	engine.Use(RequestLogger(log))
	engine.GET("/ok", func(c *gin.Context) {
		c.Set(ContextCustomerID, uint(7))
		c.Status(http.StatusOK)
	})
	engine.GET("/fail", func(c *gin.Context) {
		_ = c.Error(errors.New("database is down"))
		c.Status(http.StatusServiceUnavailable)
	})
	return engine
}

func TestRequestLoggerAssignsRequestID(t *testing.T) {
	out := &lockedBuffer{}
	engine := newLoggedEngine(out)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	id := w.Header().Get(HeaderRequestID)
	if id == "" {
		t.Fatalf("response should carry a request id")
	}
	logged := out.String()
	if !strings.Contains(logged, "request_id="+id) || !strings.Contains(logged, "customer_id=7") {
		t.Errorf("log = %q", logged)
	}
}

func TestRequestLoggerKeepsCallerRequestID(t *testing.T) {
	out := &lockedBuffer{}
	engine := newLoggedEngine(out)

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if got := w.Header().Get(HeaderRequestID); got != "abc-123" {
		t.Errorf("request id = %q", got)
	}
}

func TestRequestLoggerLogsServerErrors(t *testing.T) {
	out := &lockedBuffer{}
	engine := newLoggedEngine(out)

	engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))

	logged := out.String()
	if !strings.Contains(logged, "HTTP Error") || !strings.Contains(logged, "database is down") {
		t.Errorf("log = %q", logged)
	}
}
