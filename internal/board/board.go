// Copyright (c) 2026 Hellomouse. All rights reserved.

// Package board implements the board/pin store: boards, board permissions,
// pins, pin flags, favorites, pin history, and the per-user tag
// folksonomy over boards.
package board

import (
	"regexp"
	"time"

	"github.com/hellomouse/hellomouse-apps-api/internal/board/perm"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/validate"
)

// Field name constants used by validate.Validator for board input checks.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldColor       = "color"
)

const (
	// MaxBoardNameLength is the maximum length of a board's name.
	MaxBoardNameLength = 4095

	// MaxColorLength bounds a "#RRGGBB"-ish color string.
	MaxColorLength = 7

	// MaxBulkBoardIDs bounds mass board operations (color edit, perm
	// change bulk channel).
	MaxBulkBoardIDs = 200

	// MinSearchLength is the minimum length of a listing search filter.
	MinSearchLength = 2
)

var colorPattern = regexp.MustCompile(`^[#a-zA-Z0-9]*$`)

// ValidateColor checks the color constraint shared by board, pin, and tag
// color writes: at most [MaxColorLength] characters, drawn only from '#',
// letters, and digits.
func ValidateColor(color string) error {
	return (&validate.Validator{}).
		MaxLen(FieldColor, color, MaxColorLength).
		Custom(FieldColor, !colorPattern.MatchString(color), "Must contain only '#', letters, and digits").
		Err()
}

// Board is a container of pins with its own permission list.
type Board struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatorID   string    `json:"creator"`
	Color       string    `json:"color"`
	Created     time.Time `json:"created"`
	Edited      time.Time `json:"edited"`
	PinCount    int       `json:"pin_count"`

	// CallerPerm is the caller's own permission row, attached by list/get
	// operations; never another user's.
	CallerPerm perm.Level `json:"perm"`
}

// BoardSort enumerates the columns boards may be sorted by.
type BoardSort string

const (
	SortBoardName    BoardSort = "name"
	SortBoardCreated BoardSort = "created"
	SortBoardEdited  BoardSort = "edited"
)

// BoardListFilter captures the optional filters and pagination for
// ListBoards.
type BoardListFilter struct {
	Search     string
	OwnerID    string
	NotSelf    bool
	SortBy     BoardSort
	SortDown   bool
	Offset     int
	Limit      int
}

// BoardUpdate carries the selectively-set fields for ModifyBoard; unset
// pointers leave the corresponding column untouched.
type BoardUpdate struct {
	Name        *string
	Description *string
	Color       *string
	Perms       map[string]perm.Level
}
