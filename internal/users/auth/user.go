// Copyright (c) 2026 Hellomouse. All rights reserved.

/*
Package auth implements user identity: the account record, password
verification, and the login rate-limit flow. Account creation and
password changes are unauthenticated store-level primitives — the calling
surface that decides who may invoke them (an admin CLI) is out of scope.
*/
package auth

import (
	"encoding/json"
	"regexp"
	"time"
)

// Field identifiers used in validation error details.
const (
	FieldID          = "id"
	FieldDisplayName = "display_name"
	FieldPassword    = "password"
	FieldSettings    = "settings"
	FieldUsername    = "username"
)

const (
	// MaxIDLength bounds a user id.
	MaxIDLength = 24

	// MaxDisplayNameLength bounds a user's display name.
	MaxDisplayNameLength = 44

	// MaxSettingsBytes bounds the serialized size of a user's settings blob.
	MaxSettingsBytes = 1 << 20

	// MinSearchFilterLength is the minimum length of a directory search filter.
	MinSearchFilterLength = 2
)

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidID reports whether id matches the reserved identifier charset and
// length: ASCII letters of either case, digits, and underscores, 1 to
// [MaxIDLength] characters long. [Service.CreateAccount] lowercases the id
// before checking it.
func ValidID(id string) bool {
	return len(id) > 0 && len(id) <= MaxIDLength && idPattern.MatchString(id)
}

// User is a registered account. The public user is a reserved row that
// cannot log in; it exists so that board/playlist permission rows can
// grant anonymous reads to it.
type User struct {
	ID                string          `json:"id"`
	DisplayName       string          `json:"display_name"`
	ProfilePictureURL string          `json:"profile_picture_url,omitempty"`
	Settings          json.RawMessage `json:"settings,omitempty"`
	PasswordHash      string          `json:"-"`
	Created           time.Time       `json:"created"`
}

// LoginAttempt is one row of the append-only login_attempts log.
type LoginAttempt struct {
	Username  string
	IP        string
	Success   bool
	Timestamp time.Time
}
