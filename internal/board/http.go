// Copyright (c) 2026 Hellomouse. All rights reserved.

/*
Package board provides the HTTP interface for boards, pins, pin history,
and favorites.

# Routing Strategy

Board and pin listing/single-lookup are reachable anonymously (the public
user still needs an explicit permission row to see anything); every
mutating route requires authentication, with the finer-grained permission
check (View/Interact/SelfEdit/Edit/Owner) applied in [Service].
*/
package board

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hellomouse/hellomouse-apps-api/internal/board/perm"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/apperr"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/middleware"
	requestutil "github.com/hellomouse/hellomouse-apps-api/internal/platform/request"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/respond"
	"github.com/hellomouse/hellomouse-apps-api/pkg/pagination"
)

// PreviewQueuer enqueues a link-preview fetch job for a pin. Satisfied by
// the job queue service; kept as a narrow interface here so this package
// never needs to import it.
type PreviewQueuer interface {
	QueuePinPreview(ctx context.Context, requestorID, pinID, url string) error
}

// Handler implements the HTTP layer for boards, pins, history, and
// favorites.
type Handler struct {
	service *Service
	preview PreviewQueuer
}

// NewHandler constructs a new board [Handler]. preview may be nil, in which
// case POST /v1/board/pins/preview reports 503.
func NewHandler(service *Service, preview PreviewQueuer) *Handler {
	return &Handler{service: service, preview: preview}
}

// Routes returns a [chi.Router] configured with the board/pin endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/boards", h.listBoards)
	r.Get("/boards/single", h.getBoard)
	r.Post("/boards", h.createBoard)
	r.Put("/boards", h.updateBoard)
	r.Delete("/boards", h.deleteBoard)
	r.Put("/boards/bulk_colors", h.bulkEditBoardColors)
	r.Post("/boards/perms/bulk", h.queryBulkPerms)
	r.Put("/boards/perms/bulk", h.bulkChangeBoardPerms)

	r.Get("/pins", h.listPins)
	r.Get("/pins/single", h.getPin)
	r.Post("/pins", h.createPin)
	r.Put("/pins", h.modifyPin)
	r.Delete("/pins", h.deletePin)
	r.Put("/pins/bulk_flags", h.bulkEditPinFlags)
	r.Put("/pins/bulk_colors", h.bulkEditPinColors)
	r.Delete("/pins/bulk_delete", h.bulkDeletePins)
	r.Get("/pins/history", h.listPinHistory)
	r.Get("/pins/history/preview", h.getPinHistoryPreview)
	r.Post("/pins/preview", h.queuePinPreview)

	r.Put("/pins/favorites", h.addFavorites)
	r.Delete("/pins/favorites", h.removeFavorites)
	r.Get("/pins/favorites", h.listFavorites)
	r.Post("/pins/favorites/check", h.checkFavorites)

	r.Get("/tags", h.listTags)
	r.Get("/tags/single", h.getTag)
	r.Post("/tags", h.createTag)
	r.Put("/tags", h.updateTag)
	r.Delete("/tags", h.deleteTags)
	r.Put("/tags/boards", h.setTagBoards)
	r.Put("/tags/bulk_colors", h.bulkEditTagColors)
	r.Post("/tags/move", h.moveBoardTag)

	return r
}

// # Response Shapes

type idResponse struct {
	ID string `json:"id"`
}

type boardListResponse struct {
	Boards []*Board `json:"boards"`
}

type pinListResponse struct {
	Pins []*Pin `json:"pins"`
}

type pinIDListResponse struct {
	Pins []string `json:"pins"`
}

type historyListResponse struct {
	History []*PinHistory `json:"history"`
}

// # Boards

type createBoardRequest struct {
	Name  string                `json:"name"`
	Desc  string                `json:"desc"`
	Color string                `json:"color"`
	Perms map[string]perm.Level `json:"perms"`
}

func (h *Handler) createBoard(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var input createBoardRequest
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	b := &Board{Name: input.Name, Description: input.Desc, Color: input.Color}
	created, err := h.service.CreateBoard(r.Context(), callerID, b, input.Perms)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Created(w, idResponse{ID: created.ID})
}

type updateBoardRequest struct {
	ID    string                `json:"id"`
	Name  *string               `json:"name"`
	Desc  *string               `json:"desc"`
	Color *string               `json:"color"`
	Perms map[string]perm.Level `json:"perms"`
}

func (h *Handler) updateBoard(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var input updateBoardRequest
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	update := BoardUpdate{Name: input.Name, Description: input.Desc, Color: input.Color}
	if input.Perms != nil {
		update.Perms = input.Perms
	}

	updated, err := h.service.ModifyBoard(r.Context(), callerID, input.ID, update)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, idResponse{ID: updated.ID})
}

type boardIDRequest struct {
	ID string `json:"id"`
}

func (h *Handler) deleteBoard(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var input boardIDRequest
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.service.DeleteBoard(r.Context(), callerID, input.ID); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Msg(w, "Deleted")
}

func (h *Handler) listBoards(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.CallerID(r.Context())
	q := r.URL.Query()
	offsetLimit := pagination.OffsetLimitFromRequest(r, 100, 100)

	filter := BoardListFilter{
		Search:   q.Get("query"),
		OwnerID:  q.Get("owner_search"),
		NotSelf:  q.Get("not_self") == "true",
		SortBy:   BoardSort(q.Get("sort_by")),
		SortDown: q.Get("sort_down") == "true",
		Offset:   offsetLimit.Offset,
		Limit:    offsetLimit.Limit,
	}

	boards, err := h.service.ListBoards(r.Context(), callerID, filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, boardListResponse{Boards: boards})
}

func (h *Handler) getBoard(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.CallerID(r.Context())
	id := r.URL.Query().Get("id")

	b, err := h.service.GetBoard(r.Context(), callerID, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, b)
}

type bulkColorRequest struct {
	IDs   []string `json:"pin_ids"`
	Color string   `json:"color"`
}

type bulkBoardColorRequest struct {
	IDs   []string `json:"board_ids"`
	Color string   `json:"color"`
}

func (h *Handler) bulkEditBoardColors(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var input bulkBoardColorRequest
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.service.MassEditBoardColors(r.Context(), callerID, input.IDs, input.Color); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Msg(w, "Updated board colors")
}

type bulkBoardPermRequest struct {
	BoardIDs []string              `json:"board_ids"`
	ToAdd    map[string]perm.Level `json:"to_add"`
	ToRemove []string              `json:"to_remove"`
}

func (h *Handler) bulkChangeBoardPerms(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var input bulkBoardPermRequest
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.service.BulkChangeBoardPerms(r.Context(), callerID, input.BoardIDs, input.ToAdd, input.ToRemove); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Msg(w, "Updated board permissions")
}

type bulkPermsQueryRequest struct {
	BoardIDs []string `json:"board_ids"`
}

type bulkPermsQueryResponse struct {
	Perms map[string]perm.Level `json:"perms"`
}

// queryBulkPerms answers "which users hold the same permission level
// across every board in this list", taking the
// board id list as a POST body since it may exceed a comfortable query
// string length.
func (h *Handler) queryBulkPerms(w http.ResponseWriter, r *http.Request) {
	if _, err := requestutil.RequiredUserID(r); err != nil {
		respond.Error(w, r, err)
		return
	}

	var input bulkPermsQueryRequest
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	perms, err := h.service.QueryBulkPerms(r.Context(), input.BoardIDs)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, bulkPermsQueryResponse{Perms: perms})
}

// # Pins

type createPinRequest struct {
	PinType         PinType         `json:"pin_type"`
	BoardID         string          `json:"board_id"`
	Content         string          `json:"content"`
	AttachmentPaths []string        `json:"attachment_paths"`
	Flags           int             `json:"flags"`
	Metadata        json.RawMessage `json:"metadata"`
}

func (h *Handler) createPin(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var input createPinRequest
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	p := &Pin{
		Type:            input.PinType,
		BoardID:         input.BoardID,
		Content:         input.Content,
		AttachmentPaths: input.AttachmentPaths,
		Flags:           input.Flags,
		Metadata:        input.Metadata,
	}

	created, err := h.service.CreatePin(r.Context(), callerID, p)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Created(w, idResponse{ID: created.ID})
}

type modifyPinRequest struct {
	ID              string          `json:"id"`
	PinType         *PinType        `json:"pin_type"`
	BoardID         *string         `json:"board_id"`
	Content         *string         `json:"content"`
	AttachmentPaths []string        `json:"attachment_paths"`
	Flags           *int            `json:"flags"`
	Metadata        json.RawMessage `json:"metadata"`
}

func (h *Handler) modifyPin(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var input modifyPinRequest
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	update := PinUpdate{
		Type:            input.PinType,
		BoardID:         input.BoardID,
		Content:         input.Content,
		AttachmentPaths: input.AttachmentPaths,
		Flags:           input.Flags,
		Metadata:        input.Metadata,
	}

	updated, err := h.service.ModifyPin(r.Context(), callerID, input.ID, update)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, idResponse{ID: updated.ID})
}

type pinIDRequest struct {
	ID string `json:"id"`
}

func (h *Handler) deletePin(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var input pinIDRequest
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.service.DeletePin(r.Context(), callerID, input.ID); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Msg(w, "Deleted")
}

type bulkPinIDsRequest struct {
	PinIDs []string `json:"pin_ids"`
}

func (h *Handler) bulkDeletePins(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var input bulkPinIDsRequest
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.service.BulkDeletePins(r.Context(), callerID, input.PinIDs); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Msg(w, "Deleted pins")
}

type bulkPinFlagsRequest struct {
	PinIDs   []string `json:"pin_ids"`
	NewFlags int      `json:"new_flags"`
	AddFlags bool     `json:"add_flags"`
}

func (h *Handler) bulkEditPinFlags(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var input bulkPinFlagsRequest
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.service.BulkEditPinFlags(r.Context(), callerID, input.PinIDs, input.NewFlags, input.AddFlags); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Msg(w, "Updated pin flags")
}

func (h *Handler) bulkEditPinColors(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var input bulkColorRequest
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.service.BulkEditPinColors(r.Context(), callerID, input.IDs, input.Color); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Msg(w, "Updated pin colors")
}

func (h *Handler) listPins(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.CallerID(r.Context())
	q := r.URL.Query()
	offsetLimit := pagination.OffsetLimitFromRequest(r, 100, 100)

	filter := PinListFilter{
		BoardID:   q.Get("board_id"),
		Search:    q.Get("query"),
		CreatorID: q.Get("creator"),
		SortBy:    PinSort(q.Get("sort_by")),
		SortDown:  q.Get("sort_down") != "false",
		Offset:    offsetLimit.Offset,
		Limit:     offsetLimit.Limit,
	}

	pins, err := h.service.ListPins(r.Context(), callerID, filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, pinListResponse{Pins: pins})
}

func (h *Handler) getPin(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.CallerID(r.Context())
	id := r.URL.Query().Get("id")

	p, err := h.service.GetPin(r.Context(), callerID, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, p)
}

func (h *Handler) listPinHistory(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	q := r.URL.Query()
	pinID := q.Get("pin_id")
	offsetLimit := pagination.OffsetLimitFromRequest(r, MaxPinHistoryRows, MaxPinHistoryRows)

	history, err := h.service.ListPinHistory(r.Context(), callerID, pinID, offsetLimit.Offset, offsetLimit.Limit)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, historyListResponse{History: history})
}

func (h *Handler) getPinHistoryPreview(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	historyID, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		respond.Error(w, r, apperr.ValidationError("id must be an integer"))
		return
	}

	entry, err := h.service.GetPinHistoryPreview(r.Context(), callerID, historyID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, entry)
}

// queuePinPreview requires View on the pin's board (it looks the pin up
// through GetPin), then enqueues a pin_preview job.
func (h *Handler) queuePinPreview(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var input struct {
		PinID string `json:"pin_id"`
		URL   string `json:"url"`
	}
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	if _, err := h.service.GetPin(r.Context(), callerID, input.PinID); err != nil {
		respond.Error(w, r, err)
		return
	}

	if h.preview == nil {
		respond.Error(w, r, apperr.ServiceUnavailable("Preview queue is not configured"))
		return
	}

	if err := h.preview.QueuePinPreview(r.Context(), callerID, input.PinID, input.URL); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Msg(w, "Queued preview")
}

// # Favorites

func (h *Handler) addFavorites(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var input bulkPinIDsRequest
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.service.AddFavorites(r.Context(), callerID, input.PinIDs); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Msg(w, "Added favorites")
}

func (h *Handler) removeFavorites(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var input bulkPinIDsRequest
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.service.RemoveFavorites(r.Context(), callerID, input.PinIDs); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Msg(w, "Deleted favorites")
}

func (h *Handler) listFavorites(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	q := r.URL.Query()
	offsetLimit := pagination.OffsetLimitFromRequest(r, 100, 100)
	filter := PinListFilter{
		SortBy:   PinSort(q.Get("sort_by")),
		SortDown: q.Get("sort_down") != "false",
		Offset:   offsetLimit.Offset,
		Limit:    offsetLimit.Limit,
	}

	pins, err := h.service.ListFavorites(r.Context(), callerID, filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, pinListResponse{Pins: pins})
}

func (h *Handler) checkFavorites(w http.ResponseWriter, r *http.Request) {
	callerID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var input bulkPinIDsRequest
	if err := requestutil.DecodeJSON(r, &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	favorited, err := h.service.CheckFavorites(r.Context(), callerID, input.PinIDs)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, pinIDListResponse{Pins: favorited})
}
