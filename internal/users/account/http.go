// Copyright (c) 2026 Hellomouse. All rights reserved.

package account

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/hellomouse/hellomouse-apps-api/internal/platform/request"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/respond"
	"github.com/hellomouse/hellomouse-apps-api/pkg/query"
)

// Handler implements the HTTP layer for user settings and directory
// lookups.
type Handler struct {
	service *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes adds the `/v1/user_settings` and `/v1/users*` endpoints
// directly onto r, alongside [github.com/hellomouse/hellomouse-apps-api/internal/users/auth.Handler.RegisterRoutes]'s
// `/v1/login`/`/v1/logout`.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/user_settings", h.getSettings)
	r.Put("/user_settings", h.updateSettings)

	r.Get("/users", h.getUser)
	r.Get("/users/batch", h.getUsersBatch)
	r.Get("/users/search", h.searchUsers)
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	settings, err := h.service.GetSettings(r.Context(), callerID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, settings)
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var settings json.RawMessage
	if err := requestutil.DecodeJSON(r, &settings); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.service.UpdateSettings(r.Context(), callerID, settings); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Msg(w, "Settings updated")
}

// GET /v1/users?id=... returns a single user's public profile. The
// caller need not be authenticated — boards/pins/playlists may grant the
// `public` user read access, so profile lookups mirror that openness.
func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, user)
}

type usersBatchResponse struct {
	Users []PublicProfile `json:"users"`
}

func (h *Handler) getUsersBatch(w http.ResponseWriter, r *http.Request) {
	ids := query.StringSlice(r.URL.Query().Get("ids"))

	users, err := h.service.GetUsersBatch(r.Context(), ids)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, usersBatchResponse{Users: users})
}

func (h *Handler) searchUsers(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")

	users, err := h.service.SearchUsers(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, usersBatchResponse{Users: users})
}
