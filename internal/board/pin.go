// Copyright (c) 2026 Hellomouse. All rights reserved.

package board

import (
	"encoding/json"
	"time"
)

// PinType enumerates the kinds of content a pin may hold.
type PinType string

const (
	PinMarkdown     PinType = "markdown"
	PinImageGallery PinType = "image_gallery"
	PinLink         PinType = "link"
	PinReview       PinType = "review"
)

// IsValid reports whether t is one of the four defined pin kinds.
func (t PinType) IsValid() bool {
	switch t {
	case PinMarkdown, PinImageGallery, PinLink, PinReview:
		return true
	default:
		return false
	}
}

// Pin flag bitmask values.
const (
	FlagLocked   = 1
	FlagArchived = 2
	FlagPinned   = 4
)

const (
	// MaxBulkPinIDs bounds mass pin operations (flag edit, color edit,
	// delete).
	MaxBulkPinIDs = 100

	// MaxPinHistoryRows is the per-pin retention cap on PinHistory.
	MaxPinHistoryRows = 100

	// HistoryCoalesceWindow is the window within which consecutive edits
	// by the same editor overwrite the same history row instead of
	// appending a new one.
	HistoryCoalesceWindow = 5 * time.Minute
)

// Pin is a content item living on exactly one board.
type Pin struct {
	ID              string          `json:"pin_id"`
	BoardID         string          `json:"board_id"`
	Type            PinType         `json:"pin_type"`
	Content         string          `json:"content"`
	CreatorID       string          `json:"creator"`
	Created         time.Time       `json:"created"`
	Edited          time.Time       `json:"edited"`
	Flags           int             `json:"flags"`
	AttachmentPaths []string        `json:"attachment_paths"`
	Metadata        json.RawMessage `json:"metadata"`
}

// HasFlag reports whether mask is set in the pin's flags.
func (p *Pin) HasFlag(mask int) bool {
	return p.Flags&mask == mask
}

// FlagBucket computes the derived ordering key: pinned sorts to
// one extreme, archived to the other, everything else in between.
func FlagBucket(flags int) int {
	switch {
	case flags&FlagPinned == FlagPinned:
		return 2
	case flags&FlagArchived == FlagArchived:
		return 0
	default:
		return 1
	}
}

// PinHistory is a retained prior revision of a pin, coalesced across
// rapid edits by the same editor (see HistoryCoalesceWindow).
type PinHistory struct {
	ID              int64           `json:"id"`
	PinID           string          `json:"pin_id"`
	EditorID        string          `json:"editor"`
	Time            time.Time       `json:"time"`
	Content         string          `json:"content"`
	Flags           int             `json:"flags"`
	AttachmentPaths []string        `json:"attachment_paths"`
	Metadata        json.RawMessage `json:"metadata"`
}

// Favorite is a user's personal bookmark on a pin.
type Favorite struct {
	UserID string `json:"user_id"`
	PinID  string `json:"pin_id"`
}

// PinSort enumerates the secondary sort columns for pin listings.
type PinSort string

const (
	SortPinCreated PinSort = "created"
	SortPinEdited  PinSort = "edited"
)

// PinListFilter captures the optional filters and pagination for pin
// listing (and, by embedding, favorites listing which shares the same
// join and two-level ordering).
type PinListFilter struct {
	BoardID   string
	Search    string
	CreatorID string
	SortBy    PinSort
	SortDown  bool
	Offset    int
	Limit     int
}

// PinUpdate carries the selectively-set fields for ModifyPin.
type PinUpdate struct {
	Type            *PinType
	BoardID         *string
	Content         *string
	AttachmentPaths []string
	Flags           *int
	Metadata        json.RawMessage
}
