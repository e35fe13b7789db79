// Copyright (c) 2026 Hellomouse. All rights reserved.

package link

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hellomouse/hellomouse-apps-api/internal/platform/apperr"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/middleware"
	requestutil "github.com/hellomouse/hellomouse-apps-api/internal/platform/request"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/respond"
)

// Handler implements the HTTP interface for saved links.
type Handler struct {
	service *Service
}

// NewHandler constructs a link [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the link endpoints. Listing
// is reachable anonymously (it takes the target user id as a query param);
// add/delete require authentication.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.addLink)
	r.Delete("/", h.deleteLink)
	r.Get("/", h.listLinks)

	return r
}

type addLinkRequest struct {
	URL string `json:"url"`
}

type idResponse struct {
	ID int `json:"id"`
}

func (h *Handler) addLink(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var input addLinkRequest
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	id, err := h.service.AddLink(r.Context(), callerID, input.URL)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Created(w, idResponse{ID: id})
}

type removeLinkRequest struct {
	ID int `json:"id"`
}

func (h *Handler) deleteLink(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var input removeLinkRequest
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.service.DeleteLink(r.Context(), callerID, input.ID); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Msg(w, "Link removed")
}

type linkListResponse struct {
	Links       []*Link `json:"links"`
	CreatorName string  `json:"creator_name"`
}

func (h *Handler) listLinks(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = middleware.CallerID(r.Context())
	}
	if userID == "" {
		respond.Error(w, r, apperr.ValidationError("user_id is required"))
		return
	}

	links, name, err := h.service.ListLinks(r.Context(), userID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, linkListResponse{Links: links, CreatorName: name})
}
