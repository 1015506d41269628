package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/hobbybyrox/hobbyshop/internal/auth"
	"github.com/hobbybyrox/hobbyshop/internal/model"
	"github.com/hobbybyrox/hobbyshop/internal/store"
)

// AuthHandler handles the login, logout and password endpoints.
type AuthHandler struct {
	DB   *sql.DB
	Auth *auth.Authenticator
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	OK    bool   `json:"ok"`
	Token string `json:"token"`
}

type changePasswordRequest struct {
	Username        string `json:"username"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Username == "" || req.Password == "" {
		jsonError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	user, err := store.GetUserByUsername(r.Context(), h.DB, req.Username)
	if err != nil {
		slog.Error("looking up user", "error", err)
		jsonError(w, http.StatusInternalServerError, "Internal error.")
		return
	}
	if !user.Active() {
		jsonError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		slog.Warn("login failed", "username", req.Username, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.Auth.Issue(user)
	if err != nil {
		slog.Error("issuing token", "error", err)
		jsonError(w, http.StatusInternalServerError, "Failed to issue token.")
		return
	}

	slog.Info("admin logged in", "user", user.Username, "mode", h.Auth.Mode())
	jsonResponse(w, http.StatusOK, loginResponse{OK: true, Token: token})
}

// Logout handles POST /api/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	s := GetSession(r.Context())
	if err := h.Auth.Revoke(r.Context(), s); err != nil {
		slog.Error("revoking token", "error", err)
		jsonError(w, http.StatusInternalServerError, "Failed to log out.")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]bool{"ok": true})
}

// ChangePassword handles PUT /api/password. In JWT mode the account is
// the token's; with a shared secret the body names it.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	s := GetSession(r.Context())

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if s != nil && s.Username != "" {
		req.Username = s.Username
	}
	if req.Username == "" || req.CurrentPassword == "" || req.NewPassword == "" {
		jsonError(w, http.StatusBadRequest, "Username, current and new password required.")
		return
	}
	if err := model.ValidatePassword(req.NewPassword); err != nil {
		jsonFailure(w, http.StatusBadRequest, "Password rejected.", err)
		return
	}

	user, err := store.GetUserByUsername(r.Context(), h.DB, req.Username)
	if err != nil {
		slog.Error("looking up user", "error", err)
		jsonError(w, http.StatusInternalServerError, "Internal error.")
		return
	}
	if !user.Active() {
		jsonError(w, http.StatusUnauthorized, "Current password is incorrect.")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		jsonError(w, http.StatusUnauthorized, "Current password is incorrect.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Failed to hash password.")
		return
	}
	if err := store.UpdateUserPassword(r.Context(), h.DB, user.ID, string(hash)); err != nil {
		slog.Error("updating password", "error", err)
		jsonError(w, http.StatusInternalServerError, "Failed to update password.")
		return
	}

	slog.Info("admin changed password", "user", user.Username)
	jsonResponse(w, http.StatusOK, map[string]any{"ok": true, "message": "Password updated."})
}
