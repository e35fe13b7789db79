// Copyright (c) 2026 Hellomouse. All rights reserved.

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hellomouse/hellomouse-apps-api/internal/platform/constants"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/middleware"
	requestutil "github.com/hellomouse/hellomouse-apps-api/internal/platform/request"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/respond"
)

// Handler implements the HTTP layer for login/logout.
type Handler struct {
	service   *Service
	cookieTTL time.Duration
	secure    bool
}

// NewHandler constructs a new auth [Handler].
func NewHandler(service *Service, cookieTTL time.Duration, secureCookie bool) *Handler {
	return &Handler{service: service, cookieTTL: cookieTTL, secure: secureCookie}
}

// RegisterRoutes adds the login/logout endpoints directly onto r. Login
// and logout live at the bare `/v1/login` and `/v1/logout` paths
// alongside every other domain's routes, so this registers onto the
// shared parent router rather than mounting its own sub-router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	ip := middleware.RealIP(r)
	token, _, err := h.service.Login(r.Context(), input.Username, input.Password, ip)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     constants.SessionCookiePath,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.cookieTTL.Seconds()),
	})
	respond.Msg(w, "You logged in")
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     constants.SessionCookiePath,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	respond.Msg(w, "You logged out")
}
