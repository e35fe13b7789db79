// Copyright (c) 2026 Hellomouse. All rights reserved.

package music

import (
	"context"
	"time"

	"github.com/hellomouse/hellomouse-apps-api/internal/board/perm"
)

// Store is the data access contract for playlists, playlist permissions,
// shelf membership, and song listings.
type Store interface {
	// PlaylistExists reports whether a playlist with this id exists.
	PlaylistExists(ctx context.Context, playlistID string) (bool, error)

	// CreatePlaylist inserts a playlist with song_count=0, the creator's
	// Owner perm row, and a shelf row for the creator, all in one
	// transaction.
	CreatePlaylist(ctx context.Context, p *Playlist) (*Playlist, error)

	// GetPlaylist returns the bare playlist row, or nil if it does not
	// exist.
	GetPlaylist(ctx context.Context, playlistID string) (*Playlist, error)

	// RenamePlaylist updates a playlist's name.
	RenamePlaylist(ctx context.Context, playlistID, name string) (*Playlist, error)

	// DeletePlaylist cascades shelf rows, perms, and songs, then the
	// playlist itself, in one transaction.
	DeletePlaylist(ctx context.Context, playlistID string) error

	// GetPlaylistPerms returns the full permission map for a playlist.
	GetPlaylistPerms(ctx context.Context, playlistID string) (map[string]perm.Level, error)

	// GetCallerPlaylistPerm returns the caller's own level on a playlist,
	// and whether a row exists at all.
	GetCallerPlaylistPerm(ctx context.Context, playlistID, userID string) (perm.Level, bool, error)

	// SetPlaylistPerms replaces the permission list for a playlist (caller
	// must have already applied [perm.ApplyEditorRestrictions]).
	SetPlaylistPerms(ctx context.Context, playlistID string, perms map[string]perm.Level) error

	// UsersExist returns the subset of ids that correspond to real users.
	UsersExist(ctx context.Context, userIDs []string) (map[string]bool, error)

	// ListPlaylists returns up to [MaxSongsReturned] of the caller's own
	// shelved playlists, ordered by name ascending.
	ListPlaylists(ctx context.Context, callerID string) ([]*Playlist, error)

	// IsInUserlist reports whether userID has playlistID on their shelf.
	IsInUserlist(ctx context.Context, userID, playlistID string) (bool, error)

	// AddToUserlist idempotently adds a shelf row.
	AddToUserlist(ctx context.Context, userID, playlistID string) error

	// RemoveFromUserlist idempotently removes a shelf row.
	RemoveFromUserlist(ctx context.Context, userID, playlistID string) error

	// CountQueuedSongJobs returns how many queued music_download jobs
	// userID currently owns, for admission control on add_songs_by_url.
	CountQueuedSongJobs(ctx context.Context, userID string) (int, error)

	// AddSongs inserts (playlist, song, adder, now) rows, skipping
	// duplicates, and bumps the playlist's song_count by the number of
	// rows actually inserted. One transaction.
	AddSongs(ctx context.Context, playlistID, adderID string, songIDs []string) error

	// ListSongIDs returns a playlist's song ids with adder and add time,
	// ordered by add time ascending.
	ListSongIDs(ctx context.Context, playlistID string) ([]*PlaylistSongRef, error)

	// HydrateSongs looks up video_meta rows for songIDs, keyed by id.
	HydrateSongs(ctx context.Context, songIDs []string) (map[string]*Song, error)
}

// PlaylistSongRef is a raw playlist_songs row: the song id plus who added
// it and when, before metadata hydration.
type PlaylistSongRef struct {
	SongID  string
	AdderID string
	Added   time.Time
}
