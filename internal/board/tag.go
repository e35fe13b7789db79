// Copyright (c) 2026 Hellomouse. All rights reserved.

package board

// MaxTagNameLength bounds a tag's name.
const MaxTagNameLength = 59

// MaxTagsReturned bounds the number of tags get_tags returns in one call.
const MaxTagsReturned = 200

// Tag is a private label a user may attach boards to. name_lower is a
// generated column in Postgres (not carried on this struct) used only for
// the case-insensitive sort in ListTags.
type Tag struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Color     string   `json:"color"`
	CreatorID string   `json:"creator"`
	BoardIDs  []string `json:"board_ids"`
}

// TagUpdate carries the selectively-set fields for ModifyTag.
type TagUpdate struct {
	Name  *string
	Color *string
}
