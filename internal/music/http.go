// Copyright (c) 2026 Hellomouse. All rights reserved.

/*
Package music provides the HTTP interface for playlists, playlist
permissions, shelf membership, and song listings.

# Routing Strategy

Single-playlist lookup and song metadata lookup are reachable anonymously
(the public user still needs an explicit permission row to see a
playlist); every mutating route requires authentication, with the
finer-grained permission check applied in [Service].
*/
package music

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hellomouse/hellomouse-apps-api/internal/board/perm"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/middleware"
	requestutil "github.com/hellomouse/hellomouse-apps-api/internal/platform/request"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/respond"
)

// Handler implements the HTTP layer for playlists.
type Handler struct {
	service *Service
}

// NewHandler constructs a new music [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the playlist endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/playlist", h.createPlaylist)
	r.Put("/playlist", h.renamePlaylist)
	r.Delete("/playlist", h.deletePlaylist)
	r.Get("/playlist", h.listPlaylists)
	r.Get("/playlist/single", h.getPlaylist)
	r.Put("/playlist/perms", h.setPlaylistPerms)

	r.Post("/user_playlist", h.addToUserlist)
	r.Delete("/user_playlist", h.removeFromUserlist)

	r.Post("/playlist/song/url", h.addSongsByURL)
	r.Get("/playlist/song", h.getSongs)
	r.Get("/song", h.getSong)

	return r
}

type idResponse struct {
	ID string `json:"id"`
}

type playlistListResponse struct {
	Playlists []*Playlist `json:"playlists"`
}

type songListResponse struct {
	Songs []*Song `json:"songs"`
}

type createPlaylistRequest struct {
	Name string `json:"name"`
}

func (h *Handler) createPlaylist(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var input createPlaylistRequest
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	created, err := h.service.CreatePlaylist(r.Context(), callerID, input.Name)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Created(w, idResponse{ID: created.ID})
}

type renamePlaylistRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (h *Handler) renamePlaylist(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var input renamePlaylistRequest
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	updated, err := h.service.RenamePlaylist(r.Context(), callerID, input.ID, input.Name)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, idResponse{ID: updated.ID})
}

type playlistIDRequest struct {
	ID string `json:"id"`
}

func (h *Handler) deletePlaylist(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var input playlistIDRequest
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.service.DeletePlaylist(r.Context(), callerID, input.ID); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Msg(w, "Deleted")
}

func (h *Handler) listPlaylists(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	playlists, err := h.service.ListPlaylists(r.Context(), callerID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, playlistListResponse{Playlists: playlists})
}

func (h *Handler) getPlaylist(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.CallerID(r.Context())
	id := r.URL.Query().Get("id")

	p, err := h.service.GetPlaylist(r.Context(), callerID, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, map[string]any{"playlist": p})
}

type setPlaylistPermsRequest struct {
	ID    string                `json:"id"`
	Perms map[string]perm.Level `json:"perms"`
}

func (h *Handler) setPlaylistPerms(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var input setPlaylistPermsRequest
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.service.SetPlaylistPerms(r.Context(), callerID, input.ID, input.Perms); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Msg(w, "Updated playlist permissions")
}

func (h *Handler) addToUserlist(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var input playlistIDRequest
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.service.AddToUserlist(r.Context(), callerID, input.ID); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Msg(w, "Added to shelf")
}

func (h *Handler) removeFromUserlist(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var input playlistIDRequest
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.service.RemoveFromUserlist(r.Context(), callerID, input.ID); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Msg(w, "Removed from shelf")
}

type addSongsByURLRequest struct {
	PlaylistID string   `json:"playlist_id"`
	URLs       []string `json:"urls"`
}

func (h *Handler) addSongsByURL(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var input addSongsByURLRequest
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.service.AddSongsByURL(r.Context(), callerID, input.PlaylistID, input.URLs); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Msg(w, "Queued song download")
}

func (h *Handler) getSongs(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.CallerID(r.Context())
	playlistID := r.URL.Query().Get("id")

	songs, err := h.service.GetSongs(r.Context(), callerID, playlistID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, songListResponse{Songs: songs})
}

func (h *Handler) getSong(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")

	song, err := h.service.GetSong(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, song)
}
