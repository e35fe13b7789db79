// Copyright (c) 2026 Hellomouse. All rights reserved.

// Package jobqueue provides the HTTP interface for submitting site-level
// download jobs and reading back the caller's own job status log. Both
// routes require authentication; there is no "public" job visibility.
package jobqueue

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/hellomouse/hellomouse-apps-api/internal/platform/request"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/respond"
	"github.com/hellomouse/hellomouse-apps-api/pkg/pagination"
)

// Handler implements the HTTP layer for the site job queue.
type Handler struct {
	service *Service
}

// NewHandler constructs a new jobqueue [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the site job endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/download", h.queueSiteDownload)
	r.Get("/status", h.getStatusQueue)

	return r
}

type queueDownloadRequest struct {
	URL      string `json:"url"`
	Strategy string `json:"strategy"`
}

type jobIDResponse struct {
	UUID string `json:"uuid"`
}

func (h *Handler) queueSiteDownload(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var input queueDownloadRequest
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	id, err := h.service.QueueSiteDownload(r.Context(), callerID, input.URL, input.Strategy)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Created(w, jobIDResponse{UUID: id})
}

type statusListResponse struct {
	Jobs []*Job `json:"jobs"`
}

func (h *Handler) getStatusQueue(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	offsetLimit := pagination.OffsetLimitFromRequest(r, 20, MaxStatusListLimit)

	jobs, err := h.service.GetStatusQueue(r.Context(), callerID, offsetLimit.Offset, offsetLimit.Limit)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, statusListResponse{Jobs: jobs})
}
