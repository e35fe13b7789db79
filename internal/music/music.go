// Copyright (c) 2026 Hellomouse. All rights reserved.

// Package music implements the playlist store: playlists, playlist
// permissions, per-user shelf membership, and playlist song listings
// hydrated from an externally populated metadata view.
package music

import (
	"time"

	"github.com/hellomouse/hellomouse-apps-api/internal/board/perm"
)

// Field name constants used by validate.Validator for playlist input
// checks.
const (
	FieldName = "name"
)

const (
	// MinPlaylistNameLength is the minimum length of a playlist's name.
	MinPlaylistNameLength = 1

	// MaxPlaylistNameLength is the maximum length of a playlist's name.
	MaxPlaylistNameLength = 127

	// MaxSongsReturned bounds a single playlist's song listing.
	MaxSongsReturned = 500
)

// Playlist is an ordered collection of songs with its own permission list.
type Playlist struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatorID string `json:"creator_id"`
	SongCount int    `json:"song_count"`
}

// PlaylistDetails is the hydrated view returned by GetPlaylist: the
// playlist itself, the caller's own permission level, the full permission
// map, and whether the caller has added it to their shelf.
type PlaylistDetails struct {
	Playlist
	CallerPerm   perm.Level            `json:"perm"`
	Perms        map[string]perm.Level `json:"perms"`
	IsInUserlist bool                  `json:"is_in_userlist"`
}

// Song is a hydrated entry in a playlist's song listing. Entries whose id
// has no corresponding row in the external video_meta view are filled in
// with the Untitled placeholder so listings stay total.
type Song struct {
	ID             string    `json:"id"`
	Uploader       string    `json:"uploader"`
	UploaderURL    string    `json:"uploader_url"`
	UploadDate     string    `json:"upload_date"`
	Title          string    `json:"title"`
	DurationString string    `json:"duration_string"`
	Description    string    `json:"description"`
	ThumbnailFile  string    `json:"thumbnail_file"`
	VideoFile      string    `json:"video_file"`
	SubtitleFiles  []string  `json:"subtitle_files"`
	AdderID        string    `json:"adder_id"`
	Added          time.Time `json:"added"`
}

// UntitledSong is the placeholder returned for a playlist song id with no
// matching video_meta row.
func UntitledSong(id, adderID string, added time.Time) *Song {
	return &Song{
		ID:             id,
		Title:          "Untitled",
		DurationString: "0:00",
		AdderID:        adderID,
		Added:          added,
	}
}
