// Copyright (c) 2026 Hellomouse. All rights reserved.

package jobqueue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hellomouse/hellomouse-apps-api/internal/platform/apperr"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/validate"
)

// Service orchestrates job enqueueing and status listing on top of
// [Store]. It satisfies board.PreviewQueuer and music.SongDownloadQueuer
// as narrow interfaces so those packages never need to import jobqueue.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService constructs a new [Service].
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// QueuePinPreview enqueues a link-preview fetch for a pin. Satisfies
// board.PreviewQueuer.
func (s *Service) QueuePinPreview(ctx context.Context, requestorID, pinID, url string) error {
	if err := (&validate.Validator{}).Required("url", url).Err(); err != nil {
		return err
	}

	data := fmt.Sprintf("%s|%s", pinID, url)
	id, err := s.store.Enqueue(ctx, JobPinPreview, data, requestorID, PriorityPinPreview)
	if err != nil {
		return err
	}
	s.logger.Info("job_queued", slog.String("job_id", id), slog.String("name", JobPinPreview), slog.String("requestor_id", requestorID))
	return nil
}

// QueueSongDownload enqueues a single job carrying the playlist id and
// every submitted URL. Satisfies music.SongDownloadQueuer.
func (s *Service) QueueSongDownload(ctx context.Context, requestorID, playlistID string, urls []string) error {
	data := playlistID + "," + strings.Join(urls, ",")
	id, err := s.store.Enqueue(ctx, JobMusicDownload, data, requestorID, PriorityMusicDownload)
	if err != nil {
		return err
	}
	s.logger.Info("job_queued", slog.String("job_id", id), slog.String("name", JobMusicDownload), slog.String("requestor_id", requestorID))
	return nil
}

// QueueSiteDownload validates strategy against [ValidDownloadStrategies]
// and enqueues a download job for url, returning the minted job id.
func (s *Service) QueueSiteDownload(ctx context.Context, requestorID, url, strategy string) (string, error) {
	if !ValidDownloadStrategies[strategy] {
		return "", validate.RequiredError("strategy", "Must be one of: pdf, html, media")
	}
	if err := (&validate.Validator{}).Required("url", url).Err(); err != nil {
		return "", err
	}

	id, err := s.store.Enqueue(ctx, strategy, url, requestorID, PriorityDownload)
	if err != nil {
		return "", err
	}
	s.logger.Info("job_queued", slog.String("job_id", id), slog.String("name", strategy), slog.String("requestor_id", requestorID))
	return id, nil
}

// GetStatusQueue returns requestorID's own job log, clamping limit into
// (0, MaxStatusListLimit].
func (s *Service) GetStatusQueue(ctx context.Context, requestorID string, offset, limit int) ([]*Job, error) {
	if limit <= 0 || limit > MaxStatusListLimit {
		limit = MaxStatusListLimit
	}
	if offset < 0 {
		return nil, apperr.ValidationError("offset must not be negative")
	}
	return s.store.ListStatus(ctx, requestorID, offset, limit)
}
