package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type fakeRateStore struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newFakeRateStore() *fakeRateStore {
	return &fakeRateStore{counts: map[string]int64{}}
}

func (f *fakeRateStore) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, 0, f.err
	}
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitBlocksPerIP(t *testing.T) {
	store := newFakeRateStore()
	handler := RateLimit(NewRateLimitPolicy("Quotes", time.Minute, 2), store, nil)(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", nil)
		req.RemoteAddr = "1.2.3.4:5678"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		switch {
		case i < 2 && rec.Code != http.StatusOK:
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		case i == 2 && rec.Code != http.StatusTooManyRequests:
			t.Fatalf("expected 429 after limit, got %d", rec.Code)
		case i == 2 && rec.Header().Get("Retry-After") != "60":
			t.Fatalf("expected Retry-After 60, got %q", rec.Header().Get("Retry-After"))
		}
	}

	other := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", nil)
	other.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Fatalf("other client should not be limited, got %d", rec.Code)
	}
	if _, ok := store.counts["quotes:ip:9.9.9.9"]; !ok {
		t.Fatalf("expected forwarded ip scope, got %v", store.counts)
	}
}

func TestRateLimitDisabledOrFailing(t *testing.T) {
	disabled := RateLimit(NewRateLimitPolicy("quotes", 0, 1), newFakeRateStore(), nil)(okHandler())
	rec := httptest.NewRecorder()
	disabled.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("disabled policy should pass, got %d", rec.Code)
	}

	store := newFakeRateStore()
	store.err = errors.New("redis down")
	failing := RateLimit(NewRateLimitPolicy("quotes", time.Minute, 1), store, nil)(okHandler())
	rec = httptest.NewRecorder()
	failing.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 on store failure, got %d", rec.Code)
	}
}
