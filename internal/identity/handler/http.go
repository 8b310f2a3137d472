// Package handler exposes the auth endpoints: register, login, refresh,
// logout.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"orghub/backend/internal/identity/service"
	"orghub/backend/internal/server/httputil"
)

// Handler serves the /auth routes.
type Handler struct {
	auth *service.AuthService
}

func NewHandler(auth *service.AuthService) *Handler {
	return &Handler{auth: auth}
}

// RegisterRoutes mounts the auth routes on router. protect wraps logout,
// which needs an authenticated context when no refresh token is supplied.
func (h *Handler) RegisterRoutes(router *mux.Router, public, authenticated func(http.Handler) http.Handler) {
	router.Handle("/auth/register", public(http.HandlerFunc(h.register))).Methods(http.MethodPost)
	router.Handle("/auth/login", public(http.HandlerFunc(h.login))).Methods(http.MethodPost)
	router.Handle("/auth/refresh", public(http.HandlerFunc(h.refresh))).Methods(http.MethodPost)
	router.Handle("/auth/logout", authenticated(http.HandlerFunc(h.logout))).Methods(http.MethodPost)
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.auth.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyRegistered) {
			httputil.RespondError(w, http.StatusConflict, err.Error())
			return
		}
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, map[string]string{"user_id": res.UserID})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	UserID       string    `json:"user_id"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondAuthError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresAt:    res.ExpiresAt,
		UserID:       res.UserID,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.respondAuthError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresAt:    res.ExpiresAt,
		UserID:       res.UserID,
	})
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	// Body is optional: logout can also run off the access token in context.
	_ = httputil.Decode(r, &req)
	if err := h.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "logout failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidRefreshToken),
		errors.Is(err, service.ErrRefreshTokenReuse):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrClaimCapExceeded):
		// No credential at all is issued past the cap; a partial one would
		// read as sudden membership loss.
		httputil.RespondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
