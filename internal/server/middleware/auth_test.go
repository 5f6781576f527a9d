package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"fintrack/backend/internal/account/domain"
	"fintrack/backend/internal/security"
)

type memAccountRepo struct {
	accounts map[string]*domain.Account
}

func (r *memAccountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.accounts[id], nil
}

func (r *memAccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	for _, a := range r.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, nil
}

func (r *memAccountRepo) Create(ctx context.Context, a *domain.Account) error {
	r.accounts[a.ID] = a
	return nil
}

func (r *memAccountRepo) SetVerified(ctx context.Context, id string) error { return nil }

func (r *memAccountRepo) UpdateUsername(ctx context.Context, id, username string) error { return nil }

func (r *memAccountRepo) UpdateCredential(ctx context.Context, id, credentialHash string) error {
	return nil
}

func newAuthedRouter(t *testing.T) (*mux.Router, *security.TokenProvider, *memAccountRepo) {
	t.Helper()
	tokens := security.NewTokenProvider([]byte("test-secret"), "iss", "aud", time.Hour)
	repo := &memAccountRepo{accounts: map[string]*domain.Account{
		"acct-1": {ID: "acct-1", Username: "alice", Email: "a@example.com", Verified: true},
	}}
	r := mux.NewRouter()
	r.Use(RequireAuth(tokens, repo))
	r.HandleFunc("/me", func(w http.ResponseWriter, req *http.Request) {
		acct, ok := GetAccount(req.Context())
		if !ok {
			t.Error("no account in context")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(acct.Username))
	}).Methods("GET")
	return r, tokens, repo
}

func TestRequireAuth_ValidToken(t *testing.T) {
	r, tokens, _ := newAuthedRouter(t)
	token, _, _, err := tokens.Issue("acct-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "alice" {
		t.Errorf("body = %q, want alice", w.Body.String())
	}
}

func TestRequireAuth_Rejections(t *testing.T) {
	r, tokens, repo := newAuthedRouter(t)
	orphan, _, _, err := tokens.Issue("acct-gone")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	otherProvider := security.NewTokenProvider([]byte("other-secret"), "iss", "aud", time.Hour)
	forged, _, _, err := otherProvider.Issue("acct-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	delete(repo.accounts, "acct-gone")

	cases := []struct {
		name, header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc123"},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong signing key", "Bearer " + forged},
		{"account deleted", "Bearer " + orphan},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
		})
	}
}

func TestExtractBearer(t *testing.T) {
	cases := []struct {
		header, want string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"BEARER  abc ", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"", ""},
	}
	for _, tc := range cases {
		req := httptest.NewRequest("GET", "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		if got := extractBearer(req); got != tc.want {
			t.Errorf("extractBearer(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestResolveClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	if got := resolveClientIP(req); got != "10.1.2.3" {
		t.Errorf("peer ip = %q, want 10.1.2.3", got)
	}

	req.Header.Set("X-Real-Ip", "172.16.0.9")
	if got := resolveClientIP(req); got != "172.16.0.9" {
		t.Errorf("x-real-ip = %q, want 172.16.0.9", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := resolveClientIP(req); got != "203.0.113.7" {
		t.Errorf("x-forwarded-for = %q, want 203.0.113.7", got)
	}
}

func TestClientIPContext(t *testing.T) {
	ctx := context.Background()
	if got := ClientIP(ctx); got != "unknown" {
		t.Errorf("empty context ip = %q, want unknown", got)
	}
	ctx = WithClientIP(ctx, "192.0.2.1")
	if got := ClientIP(ctx); got != "192.0.2.1" {
		t.Errorf("ip = %q, want 192.0.2.1", got)
	}
}
