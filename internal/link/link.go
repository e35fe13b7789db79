// Copyright (c) 2026 Hellomouse. All rights reserved.

/*
Package link implements a per-user saved URL list: add, remove, and list
the links a user has bookmarked, each annotated with the owner's display
name.
*/
package link

// MaxURLLength bounds a saved link's URL.
const MaxURLLength = 4095

// MaxLinksReturned caps how many links ListLinks returns in one call.
const MaxLinksReturned = 500

// FieldURL names the url field for validation errors.
const FieldURL = "url"

// Link is a single saved URL, owned by the user who added it.
type Link struct {
	ID        int    `json:"id"`
	URL       string `json:"url"`
	CreatorID string `json:"-"`
}
