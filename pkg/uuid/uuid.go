// Copyright (c) 2026 Hellomouse. All rights reserved.

/*
Package uuid generates random identifiers for every row this service mints
its own primary key for (boards, pins, playlists, files, jobs).

It generates UUIDv4 and, for stores that need collision-safety against an
existing table, retries on collision rather than trusting birthday-bound
luck alone.
*/
package uuid

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// maxAttempts bounds the retry loop so a persistently broken exists check
// fails loudly instead of spinning forever.
const maxAttempts = 10

// New generates a new UUIDv4 string.
func New() string {
	return uuid.NewString()
}

// ExistsFunc reports whether id is already present in some store.
type ExistsFunc func(ctx context.Context, id string) (bool, error)

// NewV4WithRetry generates a UUIDv4, retrying on collision against exists.
// Collisions are astronomically unlikely but the source explicitly loops,
// so this does too.
func NewV4WithRetry(ctx context.Context, exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate := New()

		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("uuid: exhausted %d attempts generating a unique id", maxAttempts)
}
