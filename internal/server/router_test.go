package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fintrack/backend/internal/security"
)

type fakePinger struct{ err error }

func (p *fakePinger) PingContext(ctx context.Context) error { return p.err }

func newRouterForTest(pinger Pinger) http.Handler {
	return NewRouter(Deps{
		Tokens:       security.NewTokenProvider([]byte("test-secret"), "iss", "aud", time.Hour),
		HealthPinger: pinger,
	})
}

func TestHealth_OK(t *testing.T) {
	r := newRouterForTest(&fakePinger{})

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["db"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestHealth_DBDown(t *testing.T) {
	r := newRouterForTest(&fakePinger{err: errors.New("connection refused")})

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestHealth_NoPinger(t *testing.T) {
	r := newRouterForTest(nil)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	r := newRouterForTest(nil)

	for _, tc := range []struct{ method, path string }{
		{"GET", "/api/users/me"},
		{"PUT", "/api/users/me"},
		{"GET", "/api/transactions"},
		{"POST", "/api/transactions"},
		{"DELETE", "/api/transactions/tx-1"},
		{"POST", "/api/auth/change-password/request"},
		{"POST", "/api/auth/change-password/verify"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", tc.method, tc.path, w.Code)
		}
	}
}

func TestUnknownRoute(t *testing.T) {
	r := newRouterForTest(nil)

	req := httptest.NewRequest("GET", "/api/nope", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, "127.0.0.1:0", http.NewServeMux(), time.Second)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
