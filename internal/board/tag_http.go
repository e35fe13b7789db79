// Copyright (c) 2026 Hellomouse. All rights reserved.

package board

import (
	"net/http"
	"strconv"

	"github.com/hellomouse/hellomouse-apps-api/internal/platform/apperr"
	requestutil "github.com/hellomouse/hellomouse-apps-api/internal/platform/request"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/respond"
)

type tagListResponse struct {
	Tags []*Tag `json:"tags"`
}

func (h *Handler) listTags(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	tags, err := h.service.ListTags(r.Context(), callerID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, tagListResponse{Tags: tags})
}

func (h *Handler) getTag(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		respond.Error(w, r, apperr.ValidationError("id must be an integer"))
		return
	}

	t, err := h.service.GetTag(r.Context(), callerID, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, t)
}

type createTagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (h *Handler) createTag(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var input createTagRequest
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	created, err := h.service.CreateTag(r.Context(), callerID, &Tag{Name: input.Name, Color: input.Color})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Created(w, tagIDResponse{ID: created.ID})
}

type tagIDResponse struct {
	ID int64 `json:"id"`
}

type updateTagRequest struct {
	ID    int64   `json:"id"`
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

func (h *Handler) updateTag(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var input updateTagRequest
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	updated, err := h.service.ModifyTag(r.Context(), callerID, input.ID, TagUpdate{Name: input.Name, Color: input.Color})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, tagIDResponse{ID: updated.ID})
}

type bulkTagIDsRequest struct {
	TagIDs []int64 `json:"tag_ids"`
}

func (h *Handler) deleteTags(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var input bulkTagIDsRequest
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.service.DeleteTags(r.Context(), callerID, input.TagIDs); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Msg(w, "Deleted tags")
}

type setTagBoardsRequest struct {
	TagID    int64    `json:"tag_id"`
	BoardIDs []string `json:"board_ids"`
}

func (h *Handler) setTagBoards(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var input setTagBoardsRequest
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.service.SetTagBoards(r.Context(), callerID, input.TagID, input.BoardIDs); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Msg(w, "Updated tag boards")
}

func (h *Handler) bulkEditTagColors(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var input struct {
		TagIDs []int64 `json:"tag_ids"`
		Color  string  `json:"color"`
	}
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.service.BulkEditTagColors(r.Context(), callerID, input.TagIDs, input.Color); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Msg(w, "Updated tag colors")
}

type moveBoardTagRequest struct {
	BoardID string `json:"board_id"`
	TagID   int64  `json:"tag_id"`
}

func (h *Handler) moveBoardTag(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var input moveBoardTagRequest
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.service.MoveBoardTag(r.Context(), callerID, input.BoardID, input.TagID); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Msg(w, "Moved tag")
}
