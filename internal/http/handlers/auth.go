package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"lightbnb/internal/db"
	"lightbnb/internal/models"
	"lightbnb/internal/security"
)

const (
	msgInvalidCredentials = "invalid email or password"
	msgNoUser             = "no user with that id"
	msgNotLoggedIn        = "not logged in"
)

type UserStore interface {
	GetUserWithEmail(ctx context.Context, email string) (*models.User, error)
	GetUserWithID(ctx context.Context, id int64) (*models.User, error)
	AddUser(ctx context.Context, user *models.User) (*models.User, error)
}

type AuthHandler struct {
	users    UserStore
	sessions *security.SessionStore
	log      *zap.Logger
}

func NewAuthHandler(users UserStore, sessions *security.SessionStore, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		log:      log.Named("auth"),
	}
}

type userResponse struct {
	User models.PublicUser `json:"user"`
}

// Register creates a user and logs them in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		serverError(w, h.log, "hash password", err)
		return
	}

	user, err := h.users.AddUser(r.Context(), &models.User{Name: req.Name, Email: req.Email, Password: hash})
	if errors.Is(err, db.ErrDuplicate) {
		writeError(w, "email already registered")
		return
	}
	if err != nil {
		serverError(w, h.log, "add user", err)
		return
	}

	if err := h.sessions.Login(w, r, user.ID); err != nil {
		serverError(w, h.log, "save session", err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "registered"})
}

// Login answers an unknown email and a wrong password with the same payload.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	user, err := h.users.GetUserWithEmail(r.Context(), req.Email)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, msgInvalidCredentials)
		return
	}
	if err != nil {
		serverError(w, h.log, "get user", err)
		return
	}

	if !security.ComparePasswords(user.Password, req.Password) {
		writeError(w, msgInvalidCredentials)
		return
	}

	if err := h.sessions.Login(w, r, user.ID); err != nil {
		serverError(w, h.log, "save session", err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{User: user.Public()})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(w, r); err != nil {
		serverError(w, h.log, "clear session", err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

// Me returns the user behind the session cookie.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.sessions.UserID(r)
	if !ok {
		writeJSON(w, http.StatusOK, messageResponse{Message: msgNotLoggedIn})
		return
	}

	user, err := h.users.GetUserWithID(r.Context(), userID)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, msgNoUser)
		return
	}
	if err != nil {
		serverError(w, h.log, "get user", err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{User: user.Public()})
}
