package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type countingStore struct {
	counts map[string]int64
}

func (c *countingStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	if c.counts == nil {
		c.counts = map[string]int64{}
	}
	c.counts[key]++
	return c.counts[key], nil
}

func TestWriteRateLimitBlocksAfterLimit(t *testing.T) {
	store := &countingStore{}
	policy := NewWriteRateLimitPolicy("orders", time.Minute, 2)
	handler := WriteRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusCreated {
			t.Fatalf("request %d: expected 201 got %d", i+1, resp.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)
	req.RemoteAddr = "10.0.0.9:1234"
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", resp.Code)
	}
}

func TestWriteRateLimitSeparatesClients(t *testing.T) {
	store := &countingStore{}
	policy := NewWriteRateLimitPolicy("orders", time.Minute, 1)
	handler := WriteRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	first := httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)
	first.RemoteAddr = "10.0.0.1:1000"
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, first)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}

	second := httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)
	second.Header.Set("X-Forwarded-For", "203.0.113.7")
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, second)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected new client allowed, got %d", resp.Code)
	}
}

func TestWriteRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	handler := WriteRateLimit(WriteRateLimitPolicy{}, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
