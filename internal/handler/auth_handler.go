package handler

import (
	"net/http"

	json "github.com/goccy/go-json"

	"go-blog-api/internal/middleware"
	"go-blog-api/internal/model"
	"go-blog-api/internal/service"
	"go-blog-api/pkg/problem"
)

type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(service *service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Login authenticates a JSON credential body and establishes a session.
// A malformed body or missing fields is an authentication failure, not a
// parse error: every failure path returns the same 401.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, model.ErrInvalidCredentials)
		return
	}

	principal, err := h.service.Login(r.Context(), payload.Username, payload.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Rotate on every successful login, re-authentication included. The
	// identifier the caller presented (cookie, fixed or not) dies here.
	priorID := ""
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		priorID = cookie.Value
	}
	sess := h.service.EstablishSession(priorID, principal)

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, model.UserProfile{ID: principal.UserID, Username: principal.Username})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		problem.Unauthorized(r, "login required").Write(w)
		return
	}

	h.service.Logout(sessionID)

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	w.WriteHeader(http.StatusNoContent)
}
