package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap/zaptest"

	"samurai/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthMiddleware(t *testing.T) {
	auth := services.NewAuthService("secret", time.Minute, nil)
	valid, _, err := auth.IssueAccessToken(7)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	r := gin.New()
	r.GET("/me", AuthMiddleware(auth), func(c *gin.Context) {
		id, _ := c.Get("account_id")
		c.JSON(http.StatusOK, gin.H{"account_id": id})
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing_header", header: "", want: http.StatusUnauthorized},
		{name: "wrong_scheme", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "garbage_token", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "valid_token", header: "Bearer " + valid, want: http.StatusOK},
		{name: "lowercase_scheme", header: "bearer " + valid, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d (%s)", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.POST("/verify-code", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/verify-code", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("unexpected allow-origin %q", got)
	}

	req = httptest.NewRequest(http.MethodPost, "/verify-code", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("foreign origin must not be allowed, got %q", got)
	}
}

func TestRateLimiterWithoutRedisPassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zaptest.NewLogger(t)))
	r.POST("/x", RateLimiter(nil, "start", 1, time.Minute, zaptest.NewLogger(t)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}
}

func TestRateLimiterWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	const limit = 2
	r := gin.New()
	r.POST("/x", RateLimiter(client, "start", limit, time.Minute, zaptest.NewLogger(t)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.RemoteAddr = "192.0.2.1:4000"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	for i := 1; i <= limit; i++ {
		w := send()
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
		if got := w.Header().Get("X-RateLimit-Remaining"); got != strconv.Itoa(limit-i) {
			t.Errorf("request %d: unexpected remaining %q", i, got)
		}
	}

	w := send()
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after %d requests, got %d", limit, w.Code)
	}
	if w.Header().Get("X-RateLimit-Limit") != "2" || w.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("unexpected limit headers: %v", w.Header())
	}
	if w.Header().Get("X-RateLimit-Reset") == "" {
		t.Error("expected X-RateLimit-Reset on 429")
	}

	key := "rate_limit:start:192.0.2.1"
	if ttl := mr.TTL(key); ttl <= 0 || ttl > time.Minute {
		t.Errorf("counter key must carry the window TTL, got %s", ttl)
	}

	mr.FastForward(time.Minute)
	if w := send(); w.Code != http.StatusOK {
		t.Errorf("expected window to reset, got %d", w.Code)
	}
}
