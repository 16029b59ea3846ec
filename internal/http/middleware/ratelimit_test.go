package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterPerIP(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	fixed := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return fixed }

	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Fatalf("expected burst of 2 to be allowed")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatalf("expected third request to be limited")
	}
	if !rl.Allow("10.0.0.2") {
		t.Fatalf("expected other IP to have its own bucket")
	}

	fixed = fixed.Add(time.Second)
	if !rl.Allow("10.0.0.1") {
		t.Fatalf("expected token to refill after one second")
	}
}

func TestRateLimiterPrune(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	fixed := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return fixed }
	rl.Allow("10.0.0.1")

	fixed = fixed.Add(11 * time.Minute)
	rl.Allow("10.0.0.2")

	if removed := rl.Prune(10 * time.Minute); removed != 1 {
		t.Fatalf("expected 1 bucket pruned, got %d", removed)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	handler := RateLimit(0.001, 1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/chat/messages", nil)
		req.RemoteAddr = "192.0.2.10:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send(); code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", code)
	}
	if code := send(); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
}
