package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRateLimiter(t *testing.T, maxReqs int, window time.Duration) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRateLimiter(client, "ratelimit:api:", maxReqs, window), mr
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func send(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/turns/prepare", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	rl, _ := setupRateLimiter(t, 5, time.Minute)
	handler := rl.Middleware(okHandler)

	for i := range 5 {
		rec := send(handler, "192.168.1.1:12345")
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	rl, mr := setupRateLimiter(t, 3, time.Minute)
	handler := rl.Middleware(okHandler)

	for range 3 {
		require.Equal(t, http.StatusOK, send(handler, "10.0.0.1:12345").Code)
	}

	rec := send(handler, "10.0.0.1:12345")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"too many requests"}`, rec.Body.String())
	assert.True(t, mr.Exists("ratelimit:api:10.0.0.1"))
}

func TestRateLimiter_DifferentIPsIndependent(t *testing.T) {
	rl, _ := setupRateLimiter(t, 2, time.Minute)
	handler := rl.Middleware(okHandler)

	for range 2 {
		send(handler, "1.1.1.1:1")
	}
	assert.Equal(t, http.StatusTooManyRequests, send(handler, "1.1.1.1:1").Code)
	assert.Equal(t, http.StatusOK, send(handler, "2.2.2.2:1").Code)
}

func TestRateLimiter_UsesFirstForwardedAddress(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.2")
	assert.Equal(t, "203.0.113.7", clientIP(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.4:5555"
	assert.Equal(t, "198.51.100.4", clientIP(req))
}

func TestRateLimiter_FailsOpenOnRedisError(t *testing.T) {
	rl, mr := setupRateLimiter(t, 1, time.Minute)
	mr.Close()

	handler := rl.Middleware(okHandler)
	assert.Equal(t, http.StatusOK, send(handler, "3.3.3.3:1").Code)
}
