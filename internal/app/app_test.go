package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"samurai/internal/config"
)

func TestNewVerificationOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Server:       config.ServerConfig{Port: 0, AllowedOrigins: []string{"http://localhost:5173"}},
		Email:        config.EmailConfig{SMTPHost: "localhost", SMTPPort: 2525, MaxAttempts: 1, SendTimeout: time.Second},
		Verification: config.VerificationConfig{TTL: 5 * time.Minute, Store: "memory"},
		RateLimit:    config.RateLimitConfig{Requests: 5, Window: time.Minute},
	}

	a, err := New(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/swagger/doc.json", http.StatusOK},
		{http.MethodGet, "/me", http.StatusNotFound},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		a.router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
		if w.Code != tt.want {
			t.Errorf("%s %s: expected %d, got %d", tt.method, tt.path, tt.want, w.Code)
		}
	}
}
