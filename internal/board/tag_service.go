// Copyright (c) 2026 Hellomouse. All rights reserved.

package board

import (
	"context"
	"log/slog"

	"github.com/hellomouse/hellomouse-apps-api/internal/platform/apperr"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/validate"
)

// CreateTag validates and persists a new tag owned by callerID.
func (s *Service) CreateTag(ctx context.Context, callerID string, t *Tag) (*Tag, error) {
	v := &validate.Validator{}
	v.Required("name", t.Name).MaxLen("name", t.Name, MaxTagNameLength)
	if err := v.Err(); err != nil {
		return nil, err
	}
	if t.Color != "" {
		if err := ValidateColor(t.Color); err != nil {
			return nil, err
		}
	}

	t.CreatorID = callerID
	created, err := s.store.CreateTag(ctx, t)
	if err != nil {
		return nil, err
	}
	s.logger.Info("tag_created", slog.Int64("tag_id", created.ID), slog.String("creator_id", callerID))
	return created, nil
}

// GetTag requires ownership — tags carry no separate viewer permission,
// they're private labels scoped to their creator.
func (s *Service) GetTag(ctx context.Context, callerID string, tagID int64) (*Tag, error) {
	t, err := s.store.GetTag(ctx, tagID)
	if err != nil {
		return nil, err
	}
	if t == nil || t.CreatorID != callerID {
		return nil, apperr.NotFound("Tag")
	}
	return t, nil
}

// ListTags returns the caller's own tags.
func (s *Service) ListTags(ctx context.Context, callerID string) ([]*Tag, error) {
	return s.store.ListTags(ctx, callerID)
}

// ModifyTag requires creator_id == caller, the sole tag authorization rule.
func (s *Service) ModifyTag(ctx context.Context, callerID string, tagID int64, update TagUpdate) (*Tag, error) {
	existing, err := s.store.GetTag(ctx, tagID)
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.CreatorID != callerID {
		return nil, apperr.NotFound("Tag")
	}

	if update.Name != nil {
		if err := (&validate.Validator{}).Required("name", *update.Name).MaxLen("name", *update.Name, MaxTagNameLength).Err(); err != nil {
			return nil, err
		}
	}
	if update.Color != nil {
		if err := ValidateColor(*update.Color); err != nil {
			return nil, err
		}
	}

	return s.store.ModifyTag(ctx, tagID, update)
}

// DeleteTags reduces the input to tags callerID actually created before
// removing them; ids the caller doesn't own are silently dropped rather
// than failing the batch.
func (s *Service) DeleteTags(ctx context.Context, callerID string, tagIDs []int64) error {
	return s.store.DeleteTags(ctx, callerID, tagIDs)
}

// SetTagBoards requires ownership of the tag; it does not separately check
// that the caller can see each board, since tagging a board is itself
// treated as sufficient evidence of visibility.
func (s *Service) SetTagBoards(ctx context.Context, callerID string, tagID int64, boardIDs []string) error {
	existing, err := s.store.GetTag(ctx, tagID)
	if err != nil {
		return err
	}
	if existing == nil || existing.CreatorID != callerID {
		return apperr.NotFound("Tag")
	}
	return s.store.SetTagBoards(ctx, tagID, boardIDs)
}

// MoveBoardTag requires ownership of the target tag (a zero targetTagID
// just clears the board's tag membership entirely).
func (s *Service) MoveBoardTag(ctx context.Context, callerID, boardID string, targetTagID int64) error {
	if targetTagID != 0 {
		target, err := s.store.GetTag(ctx, targetTagID)
		if err != nil {
			return err
		}
		if target == nil || target.CreatorID != callerID {
			return apperr.NotFound("Tag")
		}
	}
	return s.store.MoveBoardTag(ctx, callerID, boardID, targetTagID)
}

// BulkEditTagColors restricts the update to tags the caller owns.
func (s *Service) BulkEditTagColors(ctx context.Context, callerID string, tagIDs []int64, color string) error {
	if err := ValidateColor(color); err != nil {
		return err
	}
	return s.store.BulkEditTagColors(ctx, callerID, tagIDs, color)
}
