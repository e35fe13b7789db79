// Copyright (c) 2026 Hellomouse. All rights reserved.

package board

import (
	"context"
	"log/slog"

	"github.com/hellomouse/hellomouse-apps-api/internal/board/perm"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/apperr"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/sanitize"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/validate"
	"github.com/hellomouse/hellomouse-apps-api/pkg/pointer"
)

// # Service Layer

// Service orchestrates board/pin business logic: permission checks,
// content sanitization, and id-list capping, on top of the [Store].
type Service struct {
	store  Store
	policy *sanitize.Policy
	logger *slog.Logger
}

// NewService constructs a new [Service].
func NewService(store Store, policy *sanitize.Policy, logger *slog.Logger) *Service {
	return &Service{store: store, policy: policy, logger: logger}
}

// # Board Lookups

// GetBoard returns a board annotated with the caller's own permission
// level. Returns apperr.NotFound if the board doesn't exist, and
// apperr.Forbidden if the caller holds no permission row on it.
func (s *Service) GetBoard(ctx context.Context, callerID, boardID string) (*Board, error) {
	b, err := s.store.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, apperr.NotFound("Board")
	}

	level, ok, err := s.store.GetCallerBoardPerm(ctx, boardID, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Forbidden("You do not have access to this board")
	}

	b.CallerPerm = level
	return b, nil
}

// ListBoards returns boards the caller has any permission row on.
func (s *Service) ListBoards(ctx context.Context, callerID string, filter BoardListFilter) ([]*Board, error) {
	if filter.Search != "" && len(filter.Search) < MinSearchLength {
		return nil, apperr.Forbidden("Search filter must be at least 2 characters long")
	}
	if filter.OwnerID != "" && filter.NotSelf {
		return nil, apperr.ValidationError("owner_search and not_self are mutually exclusive")
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.store.ListBoards(ctx, callerID, filter)
}

// # Board Management

// CreateBoard validates and persists a new board, forcing the caller to
// Owner regardless of whatever they submitted in perms.
func (s *Service) CreateBoard(ctx context.Context, callerID string, b *Board, perms map[string]perm.Level) (*Board, error) {
	v := &validate.Validator{}
	v.Required(FieldName, b.Name).MaxLen(FieldName, b.Name, MaxBoardNameLength)
	if err := v.Err(); err != nil {
		return nil, err
	}
	if b.Color != "" {
		if err := ValidateColor(b.Color); err != nil {
			return nil, err
		}
	}

	if len(perms) > 0 {
		userIDs := make([]string, 0, len(perms))
		for id := range perms {
			userIDs = append(userIDs, id)
		}
		existingUsers, err := s.store.UsersExist(ctx, userIDs)
		if err != nil {
			return nil, err
		}
		filtered := make(map[string]perm.Level, len(perms))
		for id, level := range perms {
			if existingUsers[id] && level.IsValid() {
				filtered[id] = level
			}
		}
		perms = filtered
	}

	b.CreatorID = callerID
	created, err := s.store.CreateBoard(ctx, b, perms)
	if err != nil {
		return nil, err
	}

	s.logger.Info("board_created", slog.String("board_id", created.ID), slog.String("creator_id", callerID))
	return created, nil
}

// ModifyBoard applies a selective update after checking the caller may
// edit the board's parent fields (Edit or Owner), and, when a permission
// list is submitted, running it through [perm.ApplyEditorRestrictions].
func (s *Service) ModifyBoard(ctx context.Context, callerID, boardID string, update BoardUpdate) (*Board, error) {
	b, err := s.store.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, apperr.Forbidden("Board ID does not exist")
	}

	callerLevel, ok, err := s.store.GetCallerBoardPerm(ctx, boardID, callerID)
	if err != nil {
		return nil, err
	}
	if !ok || !callerLevel.CanEditParent() {
		return nil, apperr.Forbidden("You do not have permission to edit this board")
	}

	if update.Name != nil {
		if err := (&validate.Validator{}).Required(FieldName, *update.Name).MaxLen(FieldName, *update.Name, MaxBoardNameLength).Err(); err != nil {
			return nil, err
		}
	}
	if update.Color != nil {
		if err := ValidateColor(*update.Color); err != nil {
			return nil, err
		}
	}

	if update.Perms != nil {
		existing, err := s.store.GetBoardPerms(ctx, boardID)
		if err != nil {
			return nil, err
		}

		userIDs := make([]string, 0, len(update.Perms))
		for id := range update.Perms {
			userIDs = append(userIDs, id)
		}
		existingUsers, err := s.store.UsersExist(ctx, userIDs)
		if err != nil {
			return nil, err
		}

		update.Perms = perm.ApplyEditorRestrictions(callerLevel, callerID, update.Perms, existing, b.CreatorID, existingUsers)
	}

	updated, err := s.store.ModifyBoard(ctx, boardID, update)
	if err != nil {
		return nil, err
	}

	s.logger.Info("board_modified", slog.String("board_id", boardID), slog.String("editor_id", callerID))
	return updated, nil
}

// DeleteBoard requires Owner on the board.
func (s *Service) DeleteBoard(ctx context.Context, callerID, boardID string) error {
	level, ok, err := s.store.GetCallerBoardPerm(ctx, boardID, callerID)
	if err != nil {
		return err
	}
	if !ok || !level.CanDeleteParent() {
		return apperr.Forbidden("Only the board owner may delete it")
	}

	if err := s.store.DeleteBoard(ctx, boardID); err != nil {
		return err
	}
	s.logger.Warn("board_deleted", slog.String("board_id", boardID), slog.String("deleter_id", callerID))
	return nil
}

// MassEditBoardColors caps the id list then delegates; the store itself
// restricts the update to boards the caller may edit.
func (s *Service) MassEditBoardColors(ctx context.Context, callerID string, boardIDs []string, color string) error {
	if len(boardIDs) > MaxBulkBoardIDs {
		boardIDs = boardIDs[:MaxBulkBoardIDs]
	}
	if err := ValidateColor(color); err != nil {
		return err
	}
	return s.store.MassEditBoardColors(ctx, callerID, boardIDs, color)
}

// BulkChangeBoardPerms caps the id list and filters toAdd to known users
// before delegating to the store's two-channel apply.
func (s *Service) BulkChangeBoardPerms(ctx context.Context, callerID string, boardIDs []string, toAdd map[string]perm.Level, toRemove []string) error {
	if len(boardIDs) > MaxBulkBoardIDs {
		boardIDs = boardIDs[:MaxBulkBoardIDs]
	}

	if len(toAdd) > 0 {
		userIDs := make([]string, 0, len(toAdd))
		for id := range toAdd {
			userIDs = append(userIDs, id)
		}
		existingUsers, err := s.store.UsersExist(ctx, userIDs)
		if err != nil {
			return err
		}
		filtered := make(map[string]perm.Level, len(toAdd))
		for id, level := range toAdd {
			if existingUsers[id] && level.IsValid() {
				filtered[id] = level
			}
		}
		toAdd = filtered
	}

	return s.store.BulkChangeBoardPerms(ctx, callerID, boardIDs, toAdd, toRemove)
}

// QueryBulkPerms returns the shared-level user set across boardIDs.
func (s *Service) QueryBulkPerms(ctx context.Context, boardIDs []string) (map[string]perm.Level, error) {
	if len(boardIDs) > MaxBulkBoardIDs {
		boardIDs = boardIDs[:MaxBulkBoardIDs]
	}
	return s.store.QueryBulkPerms(ctx, boardIDs)
}

// # Pin Lookups

// GetPin requires View on the pin's parent board.
func (s *Service) GetPin(ctx context.Context, callerID, pinID string) (*Pin, error) {
	p, err := s.store.GetPin(ctx, pinID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("Pin")
	}

	level, ok, err := s.store.GetCallerBoardPerm(ctx, p.BoardID, callerID)
	if err != nil {
		return nil, err
	}
	if !ok || !level.CanView() {
		return nil, apperr.Forbidden("You do not have access to this pin")
	}
	return p, nil
}

// ListPins requires View on filter.BoardID (listing is always board-scoped).
func (s *Service) ListPins(ctx context.Context, callerID string, filter PinListFilter) ([]*Pin, error) {
	if filter.BoardID == "" {
		return nil, validate.RequiredError("board_id", "This field is required")
	}
	if filter.Search != "" && len(filter.Search) < MinSearchLength {
		return nil, apperr.Forbidden("Search filter must be at least 2 characters long")
	}

	level, ok, err := s.store.GetCallerBoardPerm(ctx, filter.BoardID, callerID)
	if err != nil {
		return nil, err
	}
	if !ok || !level.CanView() {
		return nil, apperr.Forbidden("You do not have access to this board")
	}

	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.store.ListPins(ctx, callerID, filter)
}

// # Pin Management

// CreatePin requires the caller to hold at least SelfEdit on the parent
// board (i.e. the ability to create a child).
func (s *Service) CreatePin(ctx context.Context, callerID string, p *Pin) (*Pin, error) {
	level, ok, err := s.store.GetCallerBoardPerm(ctx, p.BoardID, callerID)
	if err != nil {
		return nil, err
	}
	if !ok || !level.CanCreateChild() {
		return nil, apperr.Forbidden("You do not have permission to create pins on this board")
	}

	if !p.Type.IsValid() {
		return nil, validate.RequiredError("pin_type", "Must be one of: markdown, image_gallery, link, review")
	}

	p.Content = s.policy.Clean(p.Content)
	p.CreatorID = callerID

	created, err := s.store.CreatePin(ctx, p)
	if err != nil {
		return nil, err
	}
	s.logger.Info("pin_created", slog.String("pin_id", created.ID), slog.String("board_id", created.BoardID))
	return created, nil
}

// ModifyPin enforces [perm.CanEditChild]: Owner/Edit on the board may edit
// any pin, SelfEdit only their own.
func (s *Service) ModifyPin(ctx context.Context, callerID, pinID string, update PinUpdate) (*Pin, error) {
	p, err := s.store.GetPin(ctx, pinID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.Forbidden("Pin ID does not exist")
	}

	level, ok, err := s.store.GetCallerBoardPerm(ctx, p.BoardID, callerID)
	if err != nil {
		return nil, err
	}
	if !ok || !perm.CanEditChild(level, callerID, p.CreatorID) {
		return nil, apperr.Forbidden("You do not have permission to edit this pin")
	}

	if update.Type != nil && !update.Type.IsValid() {
		return nil, validate.RequiredError("pin_type", "Must be one of: markdown, image_gallery, link, review")
	}

	// Moving a pin to a new board requires create-child rights there too.
	if update.BoardID != nil && *update.BoardID != p.BoardID {
		destLevel, ok, err := s.store.GetCallerBoardPerm(ctx, *update.BoardID, callerID)
		if err != nil {
			return nil, err
		}
		if !ok || !destLevel.CanCreateChild() {
			return nil, apperr.Forbidden("You do not have permission to move pins onto the destination board")
		}
	}

	if update.Content != nil {
		update.Content = pointer.To(s.policy.Clean(*update.Content))
	}

	updated, err := s.store.ModifyPin(ctx, pinID, update, callerID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("pin_modified", slog.String("pin_id", pinID), slog.String("editor_id", callerID))
	return updated, nil
}

// DeletePin enforces the same CanEditChild predicate as ModifyPin.
func (s *Service) DeletePin(ctx context.Context, callerID, pinID string) error {
	p, err := s.store.GetPin(ctx, pinID)
	if err != nil {
		return err
	}
	if p == nil {
		return apperr.Forbidden("Pin ID does not exist")
	}

	level, ok, err := s.store.GetCallerBoardPerm(ctx, p.BoardID, callerID)
	if err != nil {
		return err
	}
	if !ok || !perm.CanEditChild(level, callerID, p.CreatorID) {
		return apperr.Forbidden("You do not have permission to delete this pin")
	}

	if err := s.store.DeletePin(ctx, pinID); err != nil {
		return err
	}
	s.logger.Warn("pin_deleted", slog.String("pin_id", pinID), slog.String("deleter_id", callerID))
	return nil
}

// pinAuthCheck resolves every pin's parent board and filters the list down
// to those the caller may edit, per [perm.CanEditChild].
func (s *Service) pinAuthCheck(ctx context.Context, callerID string, pinIDs []string) ([]string, error) {
	allowed := make([]string, 0, len(pinIDs))
	for _, id := range pinIDs {
		p, err := s.store.GetPin(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}
		level, ok, err := s.store.GetCallerBoardPerm(ctx, p.BoardID, callerID)
		if err != nil {
			return nil, err
		}
		if ok && perm.CanEditChild(level, callerID, p.CreatorID) {
			allowed = append(allowed, id)
		}
	}
	return allowed, nil
}

// BulkDeletePins caps the id list then restricts it to pins the caller may
// edit before delegating.
func (s *Service) BulkDeletePins(ctx context.Context, callerID string, pinIDs []string) error {
	if len(pinIDs) > MaxBulkPinIDs {
		pinIDs = pinIDs[:MaxBulkPinIDs]
	}
	allowed, err := s.pinAuthCheck(ctx, callerID, pinIDs)
	if err != nil {
		return err
	}
	if len(allowed) == 0 {
		return nil
	}
	return s.store.BulkDeletePins(ctx, allowed)
}

// BulkEditPinFlags caps the id list, restricts to editable pins, then
// applies the flag mask.
func (s *Service) BulkEditPinFlags(ctx context.Context, callerID string, pinIDs []string, mask int, addFlags bool) error {
	if len(pinIDs) > MaxBulkPinIDs {
		pinIDs = pinIDs[:MaxBulkPinIDs]
	}
	allowed, err := s.pinAuthCheck(ctx, callerID, pinIDs)
	if err != nil {
		return err
	}
	if len(allowed) == 0 {
		return nil
	}
	return s.store.BulkEditPinFlags(ctx, allowed, mask, addFlags)
}

// BulkEditPinColors caps the id list, restricts to editable pins, then
// writes the metadata color.
func (s *Service) BulkEditPinColors(ctx context.Context, callerID string, pinIDs []string, color string) error {
	if len(pinIDs) > MaxBulkPinIDs {
		pinIDs = pinIDs[:MaxBulkPinIDs]
	}
	if err := ValidateColor(color); err != nil {
		return err
	}
	allowed, err := s.pinAuthCheck(ctx, callerID, pinIDs)
	if err != nil {
		return err
	}
	if len(allowed) == 0 {
		return nil
	}
	return s.store.BulkEditPinColors(ctx, allowed, color)
}

// ListPinHistory requires CanEditAnyChild (Edit/Owner) on the pin's board —
// history is an editorial audit trail, not a public-read surface.
func (s *Service) ListPinHistory(ctx context.Context, callerID, pinID string, offset, limit int) ([]*PinHistory, error) {
	p, err := s.store.GetPin(ctx, pinID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("Pin")
	}

	level, ok, err := s.store.GetCallerBoardPerm(ctx, p.BoardID, callerID)
	if err != nil {
		return nil, err
	}
	if !ok || !level.CanEditAnyChild() {
		return nil, apperr.Forbidden("You do not have permission to view this pin's history")
	}

	if limit <= 0 || limit > MaxPinHistoryRows {
		limit = MaxPinHistoryRows
	}
	return s.store.ListPinHistory(ctx, pinID, offset, limit)
}

// GetPinHistoryPreview returns a single retained revision. Unlike the
// full history listing, previewing one revision only needs View on the
// pin's board.
func (s *Service) GetPinHistoryPreview(ctx context.Context, callerID string, historyID int64) (*PinHistory, error) {
	h, err := s.store.GetPinHistoryEntry(ctx, historyID)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, apperr.NotFound("History entry")
	}

	p, err := s.store.GetPin(ctx, h.PinID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("Pin")
	}

	level, ok, err := s.store.GetCallerBoardPerm(ctx, p.BoardID, callerID)
	if err != nil {
		return nil, err
	}
	if !ok || !level.CanView() {
		return nil, apperr.Forbidden("You do not have access to this pin")
	}
	return h, nil
}

// # Favorites

// AddFavorites requires View on each pin's board; pins the caller cannot
// view are silently skipped rather than failing the whole batch.
func (s *Service) AddFavorites(ctx context.Context, callerID string, pinIDs []string) error {
	if len(pinIDs) > MaxBulkPinIDs {
		pinIDs = pinIDs[:MaxBulkPinIDs]
	}
	viewable, err := s.viewablePins(ctx, callerID, pinIDs)
	if err != nil {
		return err
	}
	if len(viewable) == 0 {
		return nil
	}
	return s.store.AddFavorites(ctx, callerID, viewable)
}

// RemoveFavorites is always permitted on the caller's own favorites list.
func (s *Service) RemoveFavorites(ctx context.Context, callerID string, pinIDs []string) error {
	if len(pinIDs) > MaxBulkPinIDs {
		pinIDs = pinIDs[:MaxBulkPinIDs]
	}
	return s.store.RemoveFavorites(ctx, callerID, pinIDs)
}

// ListFavorites returns the caller's own favorited pins.
func (s *Service) ListFavorites(ctx context.Context, callerID string, filter PinListFilter) ([]*Pin, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.store.ListFavorites(ctx, callerID, filter)
}

// CheckFavorites reports which of pinIDs the caller has favorited.
func (s *Service) CheckFavorites(ctx context.Context, callerID string, pinIDs []string) ([]string, error) {
	if len(pinIDs) > MaxBulkPinIDs {
		pinIDs = pinIDs[:MaxBulkPinIDs]
	}
	return s.store.CheckFavorites(ctx, callerID, pinIDs)
}

// viewablePins filters pinIDs down to those whose parent board the caller
// may view.
func (s *Service) viewablePins(ctx context.Context, callerID string, pinIDs []string) ([]string, error) {
	viewable := make([]string, 0, len(pinIDs))
	for _, id := range pinIDs {
		p, err := s.store.GetPin(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}
		level, ok, err := s.store.GetCallerBoardPerm(ctx, p.BoardID, callerID)
		if err != nil {
			return nil, err
		}
		if ok && level.CanView() {
			viewable = append(viewable, id)
		}
	}
	return viewable, nil
}
