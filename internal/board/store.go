// Copyright (c) 2026 Hellomouse. All rights reserved.

package board

import (
	"context"

	"github.com/hellomouse/hellomouse-apps-api/internal/board/perm"
)

// Store is the data access contract for boards, board permissions, pins,
// pin history, and favorites. A single interface spans all four because
// their writes are transactionally entangled (a board delete cascades
// through pins, history, and favorites; a pin edit may append history).
type Store interface {
	// CreateBoard inserts a board, the creator's Owner row, and every
	// submitted permission (skipping the creator), all in one transaction.
	CreateBoard(ctx context.Context, b *Board, perms map[string]perm.Level) (*Board, error)

	// GetBoard returns the board row, or nil if it does not exist.
	GetBoard(ctx context.Context, boardID string) (*Board, error)

	// BoardExists reports whether a board with this id exists, without
	// fetching the full row.
	BoardExists(ctx context.Context, boardID string) (bool, error)

	// GetBoardPerms returns the full permission map for a board.
	GetBoardPerms(ctx context.Context, boardID string) (map[string]perm.Level, error)

	// GetCallerBoardPerm returns the caller's own level on a board, and
	// whether a row exists at all.
	GetCallerBoardPerm(ctx context.Context, boardID, userID string) (perm.Level, bool, error)

	// ModifyBoard selectively updates name/description/color, and, if
	// update.Perms is non-nil, replaces the permission list (caller must
	// have already applied [perm.ApplyEditorRestrictions]).
	ModifyBoard(ctx context.Context, boardID string, update BoardUpdate) (*Board, error)

	// DeleteBoard cascades favorites, pin history, tag memberships, pins,
	// board perms, then the board itself, in one transaction.
	DeleteBoard(ctx context.Context, boardID string) error

	// ListBoards returns boards the caller has any permission row on,
	// filtered and sorted per filter, each annotated with only the
	// caller's own perm level.
	ListBoards(ctx context.Context, callerID string, filter BoardListFilter) ([]*Board, error)

	// MassEditBoardColors updates color on every board id the caller may
	// edit (Owner or Edit), after caller-side id-list capping.
	MassEditBoardColors(ctx context.Context, callerID string, boardIDs []string, color string) error

	// BulkChangeBoardPerms implements the two-channel mass permission
	// change: toAdd is upserted (demoted to Edit on
	// boards where the caller only holds Edit, and in that case only for
	// users currently below Edit), toRemove is deleted on boards where the
	// caller holds Owner and, on boards where the caller only holds Edit,
	// only for users currently below Edit; the board creator is never
	// removed. The creator-is-Owner invariant is re-asserted afterward on
	// every touched board.
	BulkChangeBoardPerms(ctx context.Context, callerID string, boardIDs []string, toAdd map[string]perm.Level, toRemove []string) error

	// QueryBulkPerms returns, for the given boards (all owned or edited by
	// the caller), the set of users holding the *same* level across every
	// board in the list.
	QueryBulkPerms(ctx context.Context, boardIDs []string) (map[string]perm.Level, error)

	// UsersExist returns the subset of ids that correspond to real users.
	UsersExist(ctx context.Context, userIDs []string) (map[string]bool, error)

	// CreatePin inserts a pin and increments the parent board's pin_count,
	// in one transaction.
	CreatePin(ctx context.Context, p *Pin) (*Pin, error)

	// GetPin returns the pin row, or nil if it does not exist.
	GetPin(ctx context.Context, pinID string) (*Pin, error)

	// ModifyPin selectively updates a pin's fields and, if content, flags,
	// attachments, or metadata actually changed, appends a coalesced
	// history row. One transaction.
	ModifyPin(ctx context.Context, pinID string, update PinUpdate, editorID string) (*Pin, error)

	// DeletePin deletes a pin's favorites and history, then the pin row,
	// then decrements the parent board's pin_count. One transaction.
	DeletePin(ctx context.Context, pinID string) error

	// BulkDeletePins does the same for every given pin id, all in one
	// transaction.
	BulkDeletePins(ctx context.Context, pinIDs []string) error

	// BulkEditPinFlags adds or clears mask on every given pin id.
	BulkEditPinFlags(ctx context.Context, pinIDs []string, mask int, addFlags bool) error

	// BulkEditPinColors writes color into metadata->color for every given
	// pin id.
	BulkEditPinColors(ctx context.Context, pinIDs []string, color string) error

	// ListPins returns pins the caller may view, filtered and two-level
	// ordered: flag bucket first, then the chosen time column.
	ListPins(ctx context.Context, callerID string, filter PinListFilter) ([]*Pin, error)

	// ListPinHistory returns up to limit history rows for a pin, newest
	// first.
	ListPinHistory(ctx context.Context, pinID string, offset, limit int) ([]*PinHistory, error)

	// GetPinHistoryEntry returns a single history row, or nil if it does
	// not exist.
	GetPinHistoryEntry(ctx context.Context, historyID int64) (*PinHistory, error)

	// AddFavorites idempotently adds (userID, pinID) rows.
	AddFavorites(ctx context.Context, userID string, pinIDs []string) error

	// RemoveFavorites idempotently removes (userID, pinID) rows.
	RemoveFavorites(ctx context.Context, userID string, pinIDs []string) error

	// ListFavorites returns the caller's favorited pins, sharing the pin
	// listing's join and two-level ordering.
	ListFavorites(ctx context.Context, callerID string, filter PinListFilter) ([]*Pin, error)

	// CheckFavorites returns the subset of pinIDs the user has favorited.
	CheckFavorites(ctx context.Context, userID string, pinIDs []string) ([]string, error)

	// CreateTag inserts a tag owned by creatorID.
	CreateTag(ctx context.Context, t *Tag) (*Tag, error)

	// GetTag returns a tag with its board id list, or nil if it does not
	// exist.
	GetTag(ctx context.Context, tagID int64) (*Tag, error)

	// ModifyTag selectively updates name/color on a tag the caller created.
	ModifyTag(ctx context.Context, tagID int64, update TagUpdate) (*Tag, error)

	// DeleteTags reduces tagIDs to ones creatorID actually created, then
	// removes their memberships and rows. One transaction.
	DeleteTags(ctx context.Context, creatorID string, tagIDs []int64) error

	// ListTags returns up to [MaxTagsReturned] of creatorID's tags, sorted
	// by lowercased name, each with its attached board id list.
	ListTags(ctx context.Context, creatorID string) ([]*Tag, error)

	// SetTagBoards replaces the board membership list for a tag the caller
	// created.
	SetTagBoards(ctx context.Context, tagID int64, boardIDs []string) error

	// MoveBoardTag removes boardID from every tag creatorID owns, then adds
	// it to exactly targetTagID (single-membership move).
	MoveBoardTag(ctx context.Context, creatorID, boardID string, targetTagID int64) error

	// BulkEditTagColors writes color on every tag id creatorID created.
	BulkEditTagColors(ctx context.Context, creatorID string, tagIDs []int64, color string) error
}
