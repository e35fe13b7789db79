// Copyright (c) 2026 Hellomouse. All rights reserved.

package jobqueue

import "context"

// Store is the data access contract for the work queue.
type Store interface {
	// Enqueue inserts a queue row and a status row (status=queued), then
	// emits a database NOTIFY on the fixed channel, all in one
	// transaction. Returns the minted job id.
	Enqueue(ctx context.Context, name, data, requestor string, priority int) (string, error)

	// ListStatus returns requestor's own job log, newest first.
	ListStatus(ctx context.Context, requestor string, offset, limit int) ([]*Job, error)
}
