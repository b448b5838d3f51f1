package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soluo/mental-load/internal/apperr"
	"github.com/soluo/mental-load/internal/auth"
	"github.com/soluo/mental-load/internal/middleware"
	"github.com/soluo/mental-load/internal/store"
)

type AuthHandler struct {
	users      *store.UserStore
	sessions   *store.SessionStore
	jwtManager *auth.JWTManager
	sessionTTL time.Duration
	logger     *slog.Logger
}

func NewAuthHandler(users *store.UserStore, sessions *store.SessionStore, jwtManager *auth.JWTManager, sessionTTL time.Duration, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:      users,
		sessions:   sessions,
		jwtManager: jwtManager,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Register handles POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, h.logger, apperr.Validation("a valid email is required"))
		return
	}
	if req.Name == "" {
		writeError(w, h.logger, apperr.Validation("name is required"))
		return
	}
	if len(req.Password) < 8 {
		writeError(w, h.logger, apperr.Validation("password must be at least 8 characters"))
		return
	}

	existing, err := h.users.GetByEmail(req.Email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if existing != nil {
		writeError(w, h.logger, apperr.Validation("email already registered"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	user, err := h.users.Create(req.Email, req.Name, hash)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	token, err := h.startSession(w, user.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	bearer, err := h.jwtManager.Generate(user)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"user":          user,
		"token":         bearer,
		"session_token": token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.users.GetByEmail(strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeError(w, h.logger, apperr.New(apperr.KindNotAuthenticated, "invalid email or password"))
		return
	}

	token, err := h.startSession(w, user.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	bearer, err := h.jwtManager.Generate(user)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":          user,
		"token":         bearer,
		"session_token": token,
	})
}

// Logout handles POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.Delete(cookie.Value); err != nil {
			h.logger.Warn("delete session", "error", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, userID int64) (string, error) {
	token := uuid.NewString()
	expires := time.Now().Add(h.sessionTTL)
	if _, err := h.sessions.Create(userID, token, expires); err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}
