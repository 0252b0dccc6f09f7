package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/taskboard/service-board-go-stdlib/internal/auth"
)

// Handler exposes HTTP endpoints for authentication and user management.
type Handler struct {
	svc    *Service
	tokens *auth.TokenService
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, tokens *auth.TokenService, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, tokens: tokens, logger: logger}
}

// TokenResponse is the login response body.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login authenticates a form-encoded username/password pair and returns
// a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")

	u, err := h.svc.Verify(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			h.logger.Debugw("login rejected", "username", username)
			w.Header().Set("WWW-Authenticate", "Bearer")
			h.writeError(w, http.StatusUnauthorized, "incorrect username or password")
			return
		}
		h.logger.Errorw("login failed", "err", err)
		h.writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	token, err := h.tokens.Issue(u.Username)
	if err != nil {
		h.logger.Errorw("token issue failed", "err", err)
		h.writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	h.writeJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Me reports the authenticated identity.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"username": u.Username,
		"is_admin": u.IsAdmin,
	})
}

// RegisterRequest is the admin-only user creation payload.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if _, err := h.svc.Create(r.Context(), req.Username, req.Password, req.IsAdmin); err != nil {
		switch {
		case errors.Is(err, ErrDuplicateUser):
			h.writeError(w, http.StatusBadRequest, "username already registered")
		case errors.Is(err, ErrWeakPassword):
			h.writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		case errors.Is(err, ErrInvalidUsername):
			h.writeError(w, http.StatusBadRequest, "username must be 3-50 characters")
		default:
			h.logger.Errorw("register failed", "err", err)
			h.writeError(w, http.StatusInternalServerError, "register failed")
		}
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"message": "User " + req.Username + " created successfully",
	})
}

// UserView is the projection of an account exposed to admins.
type UserView struct {
	Username string `json:"username"`
	Disabled bool   `json:"disabled"`
	IsAdmin  bool   `json:"is_admin"`
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		h.logger.Errorw("list users failed", "err", err)
		h.writeError(w, http.StatusInternalServerError, "list users failed")
		return
	}
	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, UserView{Username: u.Username, Disabled: u.Disabled, IsAdmin: u.IsAdmin})
	}
	h.writeJSON(w, http.StatusOK, map[string][]UserView{"users": views})
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	requester, _ := auth.UserFromContext(r.Context())
	username := r.PathValue("username")

	if err := h.svc.Delete(r.Context(), requester.Username, username); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			h.writeError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, ErrProtectedAccount):
			h.writeError(w, http.StatusBadRequest, "Cannot delete admin user")
		case errors.Is(err, ErrSelfDeletion):
			h.writeError(w, http.StatusBadRequest, "Cannot delete yourself")
		default:
			h.logger.Errorw("delete user failed", "username", username, "err", err)
			h.writeError(w, http.StatusInternalServerError, "delete user failed")
		}
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"message": "User " + username + " deleted successfully",
	})
}

// PasswordChangeRequest is the self-service password change payload.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	var req PasswordChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.svc.ChangePassword(r.Context(), u.Username, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			h.writeError(w, http.StatusBadRequest, "current password is incorrect")
		case errors.Is(err, ErrWeakPassword):
			h.writeError(w, http.StatusUnprocessableEntity, "password must be at least 8 characters")
		default:
			h.logger.Errorw("change password failed", "err", err)
			h.writeError(w, http.StatusInternalServerError, "change password failed")
		}
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
