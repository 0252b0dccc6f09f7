package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/taskboard/service-board-go-stdlib/internal/user/entity"
)

type stubResolver struct {
	users map[string]entity.User
}

func (s stubResolver) GetActive(ctx context.Context, username string) (entity.User, error) {
	u, ok := s.users[username]
	if !ok {
		return entity.User{}, context.Canceled // any error rejects the subject
	}
	return u, nil
}

func newTestMiddleware() (*Middleware, *TokenService) {
	tokens := NewTokenService(testSecret, time.Hour)
	resolver := stubResolver{users: map[string]entity.User{
		"alice": {Username: "alice"},
		"root":  {Username: "root", IsAdmin: true},
	}}
	return NewMiddleware(tokens, resolver, zap.NewNop().Sugar()), tokens
}

func TestAuthenticate(t *testing.T) {
	mw, tokens := newTestMiddleware()

	validToken, err := tokens.Issue("alice")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	unknownToken, err := tokens.Issue("nobody")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "valid token", header: "Bearer " + validToken, wantStatus: http.StatusOK},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "not a bearer scheme", header: "Basic abc123", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer garbage", wantStatus: http.StatusUnauthorized},
		{name: "unknown subject", header: "Bearer " + unknownToken, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sawUser bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, sawUser = UserFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			mw.Authenticate(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && !sawUser {
				t.Error("handler did not receive user in context")
			}
		})
	}
}

func TestAuthenticateExpiredToken(t *testing.T) {
	mw, _ := newTestMiddleware()
	expired := NewTokenService(testSecret, -time.Second)

	token, err := expired.Issue("alice")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run for expired token")
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAdmin(t *testing.T) {
	mw, tokens := newTestMiddleware()

	adminToken, err := tokens.Issue("root")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	userToken, err := tokens.Issue("alice")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{name: "admin passes", token: adminToken, wantStatus: http.StatusOK},
		{name: "non-admin forbidden", token: userToken, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rec := httptest.NewRecorder()
			mw.Authenticate(mw.RequireAdmin(next)).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
