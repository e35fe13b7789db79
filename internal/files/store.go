// Copyright (c) 2026 Hellomouse. All rights reserved.

package files

import "context"

// Store is the data access contract for uploaded files.
type Store interface {
	// FileExists reports whether a file with this id exists.
	FileExists(ctx context.Context, id string) (bool, error)

	// CreateFile inserts a file row, or silently no-ops on an id
	// collision (ON CONFLICT DO NOTHING).
	CreateFile(ctx context.Context, f *UserFile) error

	// GetFile returns a file row, or nil if it does not exist.
	GetFile(ctx context.Context, id string) (*UserFile, error)

	// ListFiles returns userID's files, newest first.
	ListFiles(ctx context.Context, userID string, offset, limit int) ([]*UserFile, error)

	// DeleteFile removes a file row, scoped to its owner so a caller can
	// never delete another user's file by id alone. Reports whether a
	// row was actually deleted.
	DeleteFile(ctx context.Context, userID, id string) (bool, error)
}
