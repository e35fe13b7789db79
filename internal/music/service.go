// Copyright (c) 2026 Hellomouse. All rights reserved.

package music

import (
	"context"
	"log/slog"

	"github.com/hellomouse/hellomouse-apps-api/internal/board/perm"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/apperr"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/validate"
)

// SongDownloadQueuer enqueues a bulk song-URL ingestion job for a
// playlist. Satisfied by the job queue service; kept narrow here so this
// package never needs to import it.
type SongDownloadQueuer interface {
	QueueSongDownload(ctx context.Context, requestorID, playlistID string, urls []string) error
}

// Service orchestrates playlist business logic: permission checks and
// admission control, on top of [Store]. The editor-restriction algebra is
// shared verbatim with boards via [perm.ApplyEditorRestrictions].
type Service struct {
	store          Store
	queuer         SongDownloadQueuer
	maxSongsQueued int
	logger         *slog.Logger
}

// NewService constructs a new playlist [Service]. queuer may be nil, in
// which case AddSongsByURL always reports 503. maxSongsQueued is the
// configured ceiling on queued music_download jobs a user may have
// in-flight plus the size of a new request.
func NewService(store Store, queuer SongDownloadQueuer, maxSongsQueued int, logger *slog.Logger) *Service {
	return &Service{store: store, queuer: queuer, maxSongsQueued: maxSongsQueued, logger: logger}
}

// CreatePlaylist validates and persists a new playlist, forcing the
// caller to Owner and shelving it for them.
func (s *Service) CreatePlaylist(ctx context.Context, callerID, name string) (*Playlist, error) {
	if err := (&validate.Validator{}).Required(FieldName, name).
		MinLen(FieldName, name, MinPlaylistNameLength).
		MaxLen(FieldName, name, MaxPlaylistNameLength).Err(); err != nil {
		return nil, err
	}

	p := &Playlist{Name: name, CreatorID: callerID}
	created, err := s.store.CreatePlaylist(ctx, p)
	if err != nil {
		return nil, err
	}

	s.logger.Info("playlist_created", slog.String("playlist_id", created.ID), slog.String("creator_id", callerID))
	return created, nil
}

// RenamePlaylist requires Owner on the playlist.
func (s *Service) RenamePlaylist(ctx context.Context, callerID, playlistID, name string) (*Playlist, error) {
	level, ok, err := s.store.GetCallerPlaylistPerm(ctx, playlistID, callerID)
	if err != nil {
		return nil, err
	}
	if !ok || level != perm.Owner {
		return nil, apperr.Forbidden("Only the playlist owner may rename it")
	}

	if err := (&validate.Validator{}).Required(FieldName, name).
		MinLen(FieldName, name, MinPlaylistNameLength).
		MaxLen(FieldName, name, MaxPlaylistNameLength).Err(); err != nil {
		return nil, err
	}

	updated, err := s.store.RenamePlaylist(ctx, playlistID, name)
	if err != nil {
		return nil, err
	}
	s.logger.Info("playlist_renamed", slog.String("playlist_id", playlistID), slog.String("editor_id", callerID))
	return updated, nil
}

// SetPlaylistPerms requires at least Edit on the playlist and runs the
// submission through [perm.ApplyEditorRestrictions].
func (s *Service) SetPlaylistPerms(ctx context.Context, callerID, playlistID string, submitted map[string]perm.Level) error {
	p, err := s.store.GetPlaylist(ctx, playlistID)
	if err != nil {
		return err
	}
	if p == nil {
		return apperr.Forbidden("Playlist ID does not exist")
	}

	callerLevel, ok, err := s.store.GetCallerPlaylistPerm(ctx, playlistID, callerID)
	if err != nil {
		return err
	}
	if !ok || !callerLevel.CanEditParent() {
		return apperr.Forbidden("You do not have permission to edit this playlist's permissions")
	}

	existing, err := s.store.GetPlaylistPerms(ctx, playlistID)
	if err != nil {
		return err
	}

	userIDs := make([]string, 0, len(submitted))
	for id := range submitted {
		userIDs = append(userIDs, id)
	}
	existingUsers, err := s.store.UsersExist(ctx, userIDs)
	if err != nil {
		return err
	}

	effective := perm.ApplyEditorRestrictions(callerLevel, callerID, submitted, existing, p.CreatorID, existingUsers)
	if err := s.store.SetPlaylistPerms(ctx, playlistID, effective); err != nil {
		return err
	}
	s.logger.Info("playlist_perms_changed", slog.String("playlist_id", playlistID), slog.String("editor_id", callerID))
	return nil
}

// DeletePlaylist requires Owner on the playlist.
func (s *Service) DeletePlaylist(ctx context.Context, callerID, playlistID string) error {
	level, ok, err := s.store.GetCallerPlaylistPerm(ctx, playlistID, callerID)
	if err != nil {
		return err
	}
	if !ok || level != perm.Owner {
		return apperr.Forbidden("Only the playlist owner may delete it")
	}

	if err := s.store.DeletePlaylist(ctx, playlistID); err != nil {
		return err
	}
	s.logger.Warn("playlist_deleted", slog.String("playlist_id", playlistID), slog.String("deleter_id", callerID))
	return nil
}

// GetPlaylist requires View on the playlist, and attaches the full perm
// map, the caller's own level, and shelf membership.
func (s *Service) GetPlaylist(ctx context.Context, callerID, playlistID string) (*PlaylistDetails, error) {
	p, err := s.store.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("Playlist")
	}

	level, ok, err := s.store.GetCallerPlaylistPerm(ctx, playlistID, callerID)
	if err != nil {
		return nil, err
	}
	if !ok || !level.CanView() {
		return nil, apperr.Forbidden("You do not have access to this playlist")
	}

	perms, err := s.store.GetPlaylistPerms(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	inUserlist, err := s.store.IsInUserlist(ctx, callerID, playlistID)
	if err != nil {
		return nil, err
	}

	return &PlaylistDetails{
		Playlist:     *p,
		CallerPerm:   level,
		Perms:        perms,
		IsInUserlist: inUserlist,
	}, nil
}

// ListPlaylists returns the caller's own shelved playlists.
func (s *Service) ListPlaylists(ctx context.Context, callerID string) ([]*Playlist, error) {
	return s.store.ListPlaylists(ctx, callerID)
}

// AddToUserlist requires View on the playlist before shelving it.
func (s *Service) AddToUserlist(ctx context.Context, callerID, playlistID string) error {
	level, ok, err := s.store.GetCallerPlaylistPerm(ctx, playlistID, callerID)
	if err != nil {
		return err
	}
	if !ok || !level.CanView() {
		return apperr.Forbidden("You do not have access to this playlist")
	}
	return s.store.AddToUserlist(ctx, callerID, playlistID)
}

// RemoveFromUserlist is always permitted on the caller's own shelf.
func (s *Service) RemoveFromUserlist(ctx context.Context, callerID, playlistID string) error {
	return s.store.RemoveFromUserlist(ctx, callerID, playlistID)
}

// AddSongsByURL enforces the per-user admission rule: the
// caller's currently-queued music_download jobs plus this request's URL
// count must not exceed the configured maximum. Requires at least
// SelfEdit on the playlist (the ability to create a child).
func (s *Service) AddSongsByURL(ctx context.Context, callerID, playlistID string, urls []string) error {
	if len(urls) == 0 {
		return validate.RequiredError("urls", "At least one URL is required")
	}

	level, ok, err := s.store.GetCallerPlaylistPerm(ctx, playlistID, callerID)
	if err != nil {
		return err
	}
	if !ok || !level.CanCreateChild() {
		return apperr.Forbidden("You do not have permission to add songs to this playlist")
	}

	queued, err := s.store.CountQueuedSongJobs(ctx, callerID)
	if err != nil {
		return err
	}
	if queued+len(urls) > s.maxSongsQueued {
		return apperr.RateLimited(0)
	}

	if s.queuer == nil {
		return apperr.ServiceUnavailable("Song download queue is not configured")
	}
	if err := s.queuer.QueueSongDownload(ctx, callerID, playlistID, urls); err != nil {
		return err
	}
	s.logger.Info("songs_by_url_queued", slog.String("playlist_id", playlistID), slog.String("requestor_id", callerID), slog.Int("count", len(urls)))
	return nil
}

// GetSongs requires View on the playlist, and hydrates every song id from
// the external metadata view, filling in an Untitled placeholder for ids
// with no matching row.
func (s *Service) GetSongs(ctx context.Context, callerID, playlistID string) ([]*Song, error) {
	level, ok, err := s.store.GetCallerPlaylistPerm(ctx, playlistID, callerID)
	if err != nil {
		return nil, err
	}
	if !ok || !level.CanView() {
		return nil, apperr.Forbidden("You do not have access to this playlist")
	}

	refs, err := s.store.ListSongIDs(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return []*Song{}, nil
	}

	ids := make([]string, len(refs))
	for i, ref := range refs {
		ids[i] = ref.SongID
	}
	meta, err := s.store.HydrateSongs(ctx, ids)
	if err != nil {
		return nil, err
	}

	songs := make([]*Song, len(refs))
	for i, ref := range refs {
		if song, ok := meta[ref.SongID]; ok {
			songs[i] = song
		} else {
			songs[i] = UntitledSong(ref.SongID, ref.AdderID, ref.Added)
		}
	}
	return songs, nil
}

// GetSong is the public single-song metadata lookup; it requires no
// permission check since the id alone confers no playlist context.
func (s *Service) GetSong(ctx context.Context, songID string) (*Song, error) {
	meta, err := s.store.HydrateSongs(ctx, []string{songID})
	if err != nil {
		return nil, err
	}
	song, ok := meta[songID]
	if !ok {
		return nil, apperr.NotFound("Song")
	}
	return song, nil
}
