// Copyright (c) 2026 Hellomouse. All rights reserved.

/*
Package files provides the HTTP interface for uploads: multipart ingest,
the profile-picture variant, single-file download, and deletion.

# Routing Strategy

Single-file download is reachable anonymously — identity is the URL's
unguessable file id, not an ownership check. Every other
route requires authentication.
*/
package files

import (
	"net/http"

	"github.com/hellomouse/hellomouse-apps-api/internal/platform/apperr"
	requestutil "github.com/hellomouse/hellomouse-apps-api/internal/platform/request"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/respond"
	"github.com/hellomouse/hellomouse-apps-api/pkg/pagination"

	"github.com/go-chi/chi/v5"
)

// Handler implements the HTTP layer for file uploads.
type Handler struct {
	service *Service
}

// NewHandler constructs a new files [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the file endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.ingestFiles)
	r.Get("/", h.listFiles)
	r.Get("/single", h.downloadFile)
	r.Delete("/", h.deleteFile)
	r.Post("/pfp", h.uploadProfilePicture)

	return r
}

func (h *Handler) ingestFiles(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	mr, err := r.MultipartReader()
	if err != nil {
		respond.Error(w, r, apperr.ValidationError("Expected a multipart request"))
		return
	}

	result, err := h.service.IngestFiles(r.Context(), callerID, mr)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, result)
}

func (h *Handler) uploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	mr, err := r.MultipartReader()
	if err != nil {
		respond.Error(w, r, apperr.ValidationError("Expected a multipart request"))
		return
	}

	part, err := mr.NextPart()
	if err != nil {
		respond.Error(w, r, apperr.ValidationError("Expected one file part"))
		return
	}
	defer part.Close()

	if err := h.service.UploadProfilePicture(r.Context(), callerID, part); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Msg(w, "Profile picture updated")
}

type fileListResponse struct {
	Files []*UserFile `json:"files"`
}

func (h *Handler) listFiles(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	offsetLimit := pagination.OffsetLimitFromRequest(r, 100, 100)
	list, err := h.service.ListFiles(r.Context(), callerID, offsetLimit.Offset, offsetLimit.Limit)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, fileListResponse{Files: list})
}

func (h *Handler) downloadFile(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	path, err := h.service.FilePath(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	http.ServeFile(w, r, path)
}

type fileIDRequest struct {
	ID string `json:"id"`
}

func (h *Handler) deleteFile(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var input fileIDRequest
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.service.DeleteFile(r.Context(), callerID, input.ID); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Msg(w, "Deleted")
}
