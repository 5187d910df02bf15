package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterBurstThenRefill(t *testing.T) {
	now := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	rl := &RateLimiter{
		buckets: make(map[string]*ipBucket),
		rate:    1,
		burst:   2,
		now:     func() time.Time { return now },
	}

	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Fatalf("burst requests should pass")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatalf("third immediate request should be limited")
	}

	now = now.Add(1 * time.Second)
	if !rl.Allow("10.0.0.1") {
		t.Fatalf("request after refill should pass")
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	now := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	rl := &RateLimiter{
		buckets: make(map[string]*ipBucket),
		rate:    1,
		burst:   1,
		now:     func() time.Time { return now },
	}

	if !rl.Allow("10.0.0.1") {
		t.Fatalf("first client should pass")
	}
	if !rl.Allow("10.0.0.2") {
		t.Fatalf("second client has its own bucket")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatalf("first client exhausted its bucket")
	}
}

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	handler := RateLimit(0.001, 1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	req.Header.Set("X-Real-Ip", "203.0.113.9")

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, req)
	if first.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, req)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request should be limited, got %d", second.Code)
	}
}
