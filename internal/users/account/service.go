// Copyright (c) 2026 Hellomouse. All rights reserved.

package account

import (
	"context"
	"encoding/json"

	"github.com/hellomouse/hellomouse-apps-api/internal/users/auth"
	"github.com/hellomouse/hellomouse-apps-api/pkg/slice"
)

// Service is a thin facade over [auth.Service] exposing only the
// directory/settings operations the HTTP layer needs, without pulling the
// login/credential surface into this package's import graph.
type Service struct {
	auth *auth.Service
}

// NewService constructs a new [Service].
func NewService(authService *auth.Service) *Service {
	return &Service{auth: authService}
}

// GetSettings returns the caller's own settings blob.
func (s *Service) GetSettings(ctx context.Context, callerID string) (json.RawMessage, error) {
	user, err := s.auth.GetUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return user.Settings, nil
}

// UpdateSettings replaces the caller's settings blob.
func (s *Service) UpdateSettings(ctx context.Context, callerID string, settings json.RawMessage) error {
	return s.auth.UpdateSettings(ctx, callerID, settings)
}

// GetUser returns a single user's public profile.
func (s *Service) GetUser(ctx context.Context, id string) (PublicProfile, error) {
	user, err := s.auth.GetUser(ctx, id)
	if err != nil {
		return PublicProfile{}, err
	}
	return toPublicProfile(user), nil
}

// GetUsersBatch returns the public profiles of every existing user among
// ids; unknown ids are silently omitted.
func (s *Service) GetUsersBatch(ctx context.Context, ids []string) ([]PublicProfile, error) {
	users, err := s.auth.GetUsersBatch(ctx, ids)
	if err != nil {
		return nil, err
	}
	return slice.Map(users, toPublicProfile), nil
}

// SearchUsers returns the public profiles of users whose id or display
// name contains filter.
func (s *Service) SearchUsers(ctx context.Context, filter string) ([]PublicProfile, error) {
	users, err := s.auth.SearchUsers(ctx, filter)
	if err != nil {
		return nil, err
	}
	return slice.Map(users, toPublicProfile), nil
}

// DisplayName resolves a user id to a display name, satisfying
// [github.com/hellomouse/hellomouse-apps-api/internal/link.UserNameLookup].
func (s *Service) DisplayName(ctx context.Context, userID string) (string, error) {
	user, err := s.auth.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.DisplayName, nil
}
