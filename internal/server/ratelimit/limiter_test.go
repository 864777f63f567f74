package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLimiterExhaustion(t *testing.T) {
	l := NewLimiter(3)
	defer l.Stop()

	for i := range 3 {
		result := l.Allow("1.2.3.4")
		if !result.Allowed {
			t.Fatalf("request %d unexpectedly limited", i)
		}
	}

	result := l.Allow("1.2.3.4")
	if result.Allowed {
		t.Fatal("expected the 4th request to be limited")
	}
	if result.RetryAfter <= 0 {
		t.Errorf("expected a positive RetryAfter, got %v", result.RetryAfter)
	}

	// Another key gets its own bucket.
	if !l.Allow("5.6.7.8").Allowed {
		t.Error("different key should not be limited")
	}
}

func TestMiddleware(t *testing.T) {
	l := NewLimiter(1)
	defer l.Stop()

	handler := Middleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/api/auth/login", nil)
	req.RemoteAddr = "1.2.3.4:1111"

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("expected a Retry-After header on 429")
	}
}

func TestMiddlewareDisabled(t *testing.T) {
	handler := Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/api/auth/login", nil)
	for range 10 {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200 with limiting disabled, got %d", rr.Code)
		}
	}
}
