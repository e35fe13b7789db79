// Copyright (c) 2026 Hellomouse. All rights reserved.

/*
Package account implements the directory-facing surface over user
accounts: settings storage and the public user lookups (`/v1/users*`,
`/v1/user_settings`). The account record itself, login, and credential
primitives live in [github.com/hellomouse/hellomouse-apps-api/internal/users/auth];
this package is a thin HTTP layer over that domain's [auth.Service].
*/
package account

import "github.com/hellomouse/hellomouse-apps-api/internal/users/auth"

// PublicProfile is the directory-safe projection of a [auth.User] returned
// by the `/v1/users*` lookup routes — no settings, no password hash.
type PublicProfile struct {
	ID                string `json:"id"`
	DisplayName       string `json:"display_name"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
}

func toPublicProfile(u *auth.User) PublicProfile {
	return PublicProfile{
		ID:                u.ID,
		DisplayName:       u.DisplayName,
		ProfilePictureURL: u.ProfilePictureURL,
	}
}
