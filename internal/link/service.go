// Copyright (c) 2026 Hellomouse. All rights reserved.

package link

import (
	"context"
	"log/slog"

	"github.com/hellomouse/hellomouse-apps-api/internal/platform/validate"
)

// UserNameLookup resolves a user id to a display name. Satisfied by the
// account service; kept narrow here so this package never needs to import
// it. Lookup failures are swallowed by [Service.ListLinks] rather than
// failing the request; listings degrade to an empty creator name.
type UserNameLookup interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}

// Service implements link business logic: validation and authorization on
// top of [Store].
type Service struct {
	store  Store
	names  UserNameLookup
	logger *slog.Logger
}

// NewService constructs a link [Service]. names may be nil, in which case
// ListLinks always reports an empty creator name.
func NewService(store Store, names UserNameLookup, logger *slog.Logger) *Service {
	return &Service{store: store, names: names, logger: logger}
}

// AddLink validates and saves a new link for callerID. It returns -1 if the
// caller has already saved this exact URL.
func (s *Service) AddLink(ctx context.Context, callerID, url string) (int, error) {
	if err := (&validate.Validator{}).Required(FieldURL, url).MaxLen(FieldURL, url, MaxURLLength).Err(); err != nil {
		return 0, err
	}

	id, err := s.store.AddLink(ctx, callerID, url)
	if err != nil {
		return 0, err
	}
	s.logger.Info("link_added", slog.String("creator_id", callerID), slog.Int("link_id", id))
	return id, nil
}

// DeleteLink removes a link, scoped to callerID so a user may only delete
// their own links.
func (s *Service) DeleteLink(ctx context.Context, callerID string, id int) error {
	return s.store.DeleteLink(ctx, callerID, id)
}

// ListLinks returns userID's saved links along with userID's display name,
// resolved through the configured [UserNameLookup].
func (s *Service) ListLinks(ctx context.Context, userID string) ([]*Link, string, error) {
	links, err := s.store.ListLinks(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	if s.names == nil {
		return links, "", nil
	}
	name, err := s.names.DisplayName(ctx, userID)
	if err != nil {
		s.logger.Warn("link_creator_name_lookup_failed", slog.String("user_id", userID), slog.Any("error", err))
		return links, "", nil
	}
	return links, name, nil
}
