package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < 5; i++ {
		if !rl.Allow("key1", 5, time.Minute) {
			t.Errorf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("key1", 5, time.Minute) {
		t.Error("6th request should be denied")
	}

	// Different key has its own window.
	if !rl.Allow("key2", 5, time.Minute) {
		t.Error("different key should be allowed")
	}
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	rl := NewRateLimiter()

	if !rl.Allow("key", 1, 10*time.Millisecond) {
		t.Error("first request should be allowed")
	}
	if rl.Allow("key", 1, 10*time.Millisecond) {
		t.Error("second request should be denied")
	}

	time.Sleep(20 * time.Millisecond)

	if !rl.Allow("key", 1, 10*time.Millisecond) {
		t.Error("request after window expiry should be allowed")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter()

	rl.Allow("stale", 5, 10*time.Millisecond)
	rl.Allow("fresh", 5, time.Minute)

	time.Sleep(20 * time.Millisecond)
	rl.Cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.entries["stale"]; ok {
		t.Error("expired entry should have been removed")
	}
	if _, ok := rl.entries["fresh"]; !ok {
		t.Error("live entry should have been kept")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewRateLimiter()
	handler := RateLimit(limiter, 2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("POST", "/api/push/subscribe", nil)
		r.RemoteAddr = "203.0.113.5:12345"
		handler.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want 200", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/push/subscribe", nil)
	r.RemoteAddr = "203.0.113.5:12345"
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}

	// A different client IP is not affected.
	w = httptest.NewRecorder()
	r = httptest.NewRequest("POST", "/api/push/subscribe", nil)
	r.RemoteAddr = "203.0.113.6:12345"
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for different client", w.Code)
	}
}

func TestRealIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.0.2.1:5000"
	if got := RealIP(r); got != "192.0.2.1" {
		t.Errorf("RealIP = %q, want 192.0.2.1", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := RealIP(r); got != "203.0.113.9" {
		t.Errorf("RealIP = %q, want first forwarded address", got)
	}
}
