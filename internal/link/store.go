// Copyright (c) 2026 Hellomouse. All rights reserved.

package link

import "context"

// Store is the data access contract for saved links.
type Store interface {
	// AddLink inserts a link for creatorID, or reports -1 if the
	// (creator, url) pair already exists.
	AddLink(ctx context.Context, creatorID, url string) (int, error)

	// DeleteLink removes a link, scoped to its creator so a caller can
	// never delete another user's link by id alone.
	DeleteLink(ctx context.Context, creatorID string, id int) error

	// ListLinks returns up to [MaxLinksReturned] of a user's links,
	// ordered by url descending.
	ListLinks(ctx context.Context, userID string) ([]*Link, error)
}
