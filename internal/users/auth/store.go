// Copyright (c) 2026 Hellomouse. All rights reserved.

package auth

import (
	"context"
	"encoding/json"
)

// Store is the data access contract for user accounts and the login
// attempt log.
type Store interface {
	// GetUser returns a user's full record, or nil if it does not exist.
	GetUser(ctx context.Context, id string) (*User, error)

	// GetPasswordHash returns id's stored hash, or "" if the user is
	// unknown. It never returns [apperr.NotFound] — callers that need to
	// compare against an unknown user still run a hash comparison against
	// the empty string to keep timing uniform.
	GetPasswordHash(ctx context.Context, id string) (string, error)

	// CreateUser inserts a new account row.
	CreateUser(ctx context.Context, user *User) error

	// UpdateSettings replaces a user's settings blob.
	UpdateSettings(ctx context.Context, id string, settings json.RawMessage) error

	// ChangePassword replaces a user's stored password hash.
	ChangePassword(ctx context.Context, id, newHash string) error

	// DeleteUser removes an account row.
	DeleteUser(ctx context.Context, id string) error

	// RecordLoginAttempt appends a row to the login attempt log, then
	// prunes the table down to the most recent [LoginAttemptLogCap] rows.
	RecordLoginAttempt(ctx context.Context, attempt *LoginAttempt) error

	// GetUsersBatch returns every existing user among ids, in no
	// particular order. Unknown ids are silently omitted.
	GetUsersBatch(ctx context.Context, ids []string) ([]*User, error)

	// SearchUsers returns users whose id or display name contains filter
	// (case-insensitive).
	SearchUsers(ctx context.Context, filter string) ([]*User, error)
}
