package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/taskboard/service-board-go-stdlib/internal/user/entity"
)

// UserResolver resolves a verified token subject to an active account.
// It must fail for unknown and disabled usernames.
type UserResolver interface {
	GetActive(ctx context.Context, username string) (entity.User, error)
}

type contextKey struct{}

// UserFromContext returns the authenticated user stashed by Authenticate.
func UserFromContext(ctx context.Context) (entity.User, bool) {
	u, ok := ctx.Value(contextKey{}).(entity.User)
	return u, ok
}

// Middleware guards HTTP routes with bearer-token authentication and an
// optional admin gate.
type Middleware struct {
	tokens *TokenService
	users  UserResolver
	logger *zap.SugaredLogger
}

func NewMiddleware(tokens *TokenService, users UserResolver, logger *zap.SugaredLogger) *Middleware {
	return &Middleware{tokens: tokens, users: users, logger: logger}
}

// Authenticate extracts the bearer token, verifies it and resolves its
// subject to a user. Requests with a missing, malformed, expired token
// or an unknown subject are rejected with 401.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			unauthorized(w)
			return
		}
		username, err := m.tokens.Verify(raw)
		if err != nil {
			m.logger.Debugw("token rejected", "err", err)
			unauthorized(w)
			return
		}
		u, err := m.users.GetActive(r.Context(), username)
		if err != nil {
			m.logger.Debugw("token subject rejected", "username", username, "err", err)
			unauthorized(w)
			return
		}
		ctx := context.WithValue(r.Context(), contextKey{}, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects authenticated non-admin users with 403. It must
// run after Authenticate.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		if !ok {
			unauthorized(w)
			return
		}
		if !u.IsAdmin {
			writeError(w, http.StatusForbidden, "admin privileges required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" || !strings.HasPrefix(strings.ToLower(h), "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[len("bearer "):])
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, "not authenticated")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
