package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/erazemk/najdeno/internal/apperr"
	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// AuthHandler handles registration, login and account endpoints.
type AuthHandler struct {
	DB        *sql.DB
	JWTSecret string
	TokenTTL  time.Duration
}

type registerRequest struct {
	Identifier  string `json:"identifier"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	School      string `json:"school"`
	Password    string `json:"password"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type tokenResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Identifier = strings.TrimSpace(req.Identifier)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	req.Email = strings.TrimSpace(req.Email)
	req.School = strings.TrimSpace(req.School)

	fields := make(map[string]string)
	if req.Identifier == "" {
		fields["identifier"] = "required"
	}
	if req.DisplayName == "" {
		fields["display_name"] = "required"
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		fields["email"] = "valid email required"
	}
	if req.School == "" {
		fields["school"] = "required"
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		fields["password"] = err.Error()
	}
	if len(fields) > 0 {
		writeError(w, r, apperr.Validation(fields))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := store.CreateUser(r.Context(), h.DB, store.NewUser{
		Identifier:   req.Identifier,
		DisplayName:  req.DisplayName,
		Email:        req.Email,
		School:       req.School,
		PasswordHash: hash,
		Role:         model.RoleUser,
	})
	if db.IsConstraint(err) {
		jsonError(w, http.StatusConflict, "identifier already registered")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user.ID, user.Identifier, user.Role, h.TokenTTL)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("user registered", "user", user.Identifier)
	jsonResponse(w, http.StatusCreated, tokenResponse{Token: token, User: user})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Identifier == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "identifier and password required")
		return
	}

	user, err := store.GetUserByIdentifier(r.Context(), h.DB, req.Identifier)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		slog.Warn("login failed", "identifier", req.Identifier, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if user.IsDeleted() {
		jsonError(w, http.StatusForbidden, "account has been deactivated")
		return
	}

	now := time.Now()
	if err := store.TouchLastLogin(r.Context(), h.DB, user.ID, now); err != nil {
		writeError(w, r, err)
		return
	}
	user.LastLogin = &now

	token, err := auth.GenerateToken(h.JWTSecret, user.ID, user.Identifier, user.Role, h.TokenTTL)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("user logged in", "user", user.Identifier, "role", user.Role)
	jsonResponse(w, http.StatusOK, tokenResponse{Token: token, User: user})
}

// Logout handles POST /api/auth/logout by revoking the presented token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	id := GetIdentity(r.Context())

	expires := time.Now().Add(auth.DefaultTokenTTL)
	if id.Claims.ExpiresAt != nil {
		expires = id.Claims.ExpiresAt.Time
	}
	if err := store.RevokeToken(r.Context(), h.DB, id.TokenID, expires, time.Now()); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("user logged out", "user", id.Identifier)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id := GetIdentity(r.Context())
	user, err := store.GetUser(r.Context(), h.DB, id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// ChangePassword handles PUT /api/auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id := GetIdentity(r.Context())

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		jsonError(w, http.StatusBadRequest, "current and new password required")
		return
	}
	if err := model.ValidatePassword(req.NewPassword); err != nil {
		writeError(w, r, apperr.Validation(map[string]string{"new_password": err.Error()}))
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, id.UserID)
	if err != nil || user == nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		jsonError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := store.UpdateUserPassword(r.Context(), h.DB, id.UserID, hash); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("user changed own password", "user", id.Identifier)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
}
