// Copyright (c) 2026 Hellomouse. All rights reserved.

package music

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hellomouse/hellomouse-apps-api/internal/board/perm"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/dberr"
	"github.com/hellomouse/hellomouse-apps-api/pkg/uuid"
)

// repository implements [Store] using pgx.
type repository struct {
	pool *pgxpool.Pool
}

// NewStore constructs a PostgreSQL-backed playlist store.
func NewStore(pool *pgxpool.Pool) Store {
	return &repository{pool: pool}
}

func (r *repository) PlaylistExists(ctx context.Context, playlistID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM music.playlists WHERE id = $1)`, playlistID).Scan(&exists)
	if err != nil {
		return false, dberr.Wrap(err, "playlist exists")
	}
	return exists, nil
}

func (r *repository) CreatePlaylist(ctx context.Context, p *Playlist) (*Playlist, error) {
	id, err := uuid.NewV4WithRetry(ctx, r.PlaylistExists)
	if err != nil {
		return nil, err
	}
	p.ID = id

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, dberr.Wrap(err, "begin create playlist")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO music.playlists (id, name, creator_id, song_count) VALUES ($1, $2, $3, 0)`,
		p.ID, p.Name, p.CreatorID,
	); err != nil {
		return nil, dberr.Wrap(err, "create playlist")
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO music.playlist_perms (playlist_id, user_id, perm_id) VALUES ($1, $2, $3)`,
		p.ID, p.CreatorID, perm.Owner,
	); err != nil {
		return nil, dberr.Wrap(err, "create playlist owner perm")
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO music.user_playlists (playlist_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		p.ID, p.CreatorID,
	); err != nil {
		return nil, dberr.Wrap(err, "shelf creator playlist")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, dberr.Wrap(err, "commit create playlist")
	}
	return r.GetPlaylist(ctx, p.ID)
}

func (r *repository) GetPlaylist(ctx context.Context, playlistID string) (*Playlist, error) {
	p := &Playlist{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, creator_id, song_count FROM music.playlists WHERE id = $1`, playlistID,
	).Scan(&p.ID, &p.Name, &p.CreatorID, &p.SongCount)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "get playlist")
	}
	return p, nil
}

func (r *repository) RenamePlaylist(ctx context.Context, playlistID, name string) (*Playlist, error) {
	_, err := r.pool.Exec(ctx, `UPDATE music.playlists SET name = $1 WHERE id = $2`, name, playlistID)
	if err != nil {
		return nil, dberr.Wrap(err, "rename playlist")
	}
	return r.GetPlaylist(ctx, playlistID)
}

func (r *repository) DeletePlaylist(ctx context.Context, playlistID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "begin delete playlist")
	}
	defer tx.Rollback(ctx)

	statements := []string{
		`DELETE FROM music.user_playlists WHERE playlist_id = $1`,
		`DELETE FROM music.playlist_perms WHERE playlist_id = $1`,
		`DELETE FROM music.playlist_songs WHERE playlist_id = $1`,
		`DELETE FROM music.playlists WHERE id = $1`,
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt, playlistID); err != nil {
			return dberr.Wrap(err, "delete playlist cascade")
		}
	}

	return dberr.Wrap(tx.Commit(ctx), "commit delete playlist")
}

func (r *repository) GetPlaylistPerms(ctx context.Context, playlistID string) (map[string]perm.Level, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id, perm_id FROM music.playlist_perms WHERE playlist_id = $1`, playlistID)
	if err != nil {
		return nil, dberr.Wrap(err, "get playlist perms")
	}
	defer rows.Close()

	perms := make(map[string]perm.Level)
	for rows.Next() {
		var userID string
		var level int
		if err := rows.Scan(&userID, &level); err != nil {
			return nil, dberr.Wrap(err, "scan playlist perm")
		}
		perms[userID] = perm.Level(level)
	}
	return perms, rows.Err()
}

func (r *repository) GetCallerPlaylistPerm(ctx context.Context, playlistID, userID string) (perm.Level, bool, error) {
	var level int
	err := r.pool.QueryRow(ctx,
		`SELECT perm_id FROM music.playlist_perms WHERE playlist_id = $1 AND user_id = $2`,
		playlistID, userID,
	).Scan(&level)

	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, dberr.Wrap(err, "get caller playlist perm")
	}
	return perm.Level(level), true, nil
}

func (r *repository) SetPlaylistPerms(ctx context.Context, playlistID string, perms map[string]perm.Level) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "begin set playlist perms")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM music.playlist_perms WHERE playlist_id = $1`, playlistID); err != nil {
		return dberr.Wrap(err, "clear playlist perms")
	}
	for userID, level := range perms {
		if _, err := tx.Exec(ctx,
			`INSERT INTO music.playlist_perms (playlist_id, user_id, perm_id) VALUES ($1, $2, $3)`,
			playlistID, userID, level,
		); err != nil {
			return dberr.Wrap(err, "insert playlist perm")
		}
	}

	return dberr.Wrap(tx.Commit(ctx), "commit set playlist perms")
}

func (r *repository) UsersExist(ctx context.Context, userIDs []string) (map[string]bool, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM users WHERE id = ANY($1)`, userIDs)
	if err != nil {
		return nil, dberr.Wrap(err, "users exist")
	}
	defer rows.Close()

	existing := make(map[string]bool, len(userIDs))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, dberr.Wrap(err, "scan user id")
		}
		existing[id] = true
	}
	return existing, rows.Err()
}

func (r *repository) ListPlaylists(ctx context.Context, callerID string) ([]*Playlist, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.name, p.creator_id, p.song_count
		FROM music.playlists p
		INNER JOIN music.user_playlists up ON up.playlist_id = p.id AND up.user_id = $1
		ORDER BY LOWER(p.name) ASC
		LIMIT $2`,
		callerID, MaxSongsReturned,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "list playlists")
	}
	defer rows.Close()

	var playlists []*Playlist
	for rows.Next() {
		p := &Playlist{}
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatorID, &p.SongCount); err != nil {
			return nil, dberr.Wrap(err, "scan playlist")
		}
		playlists = append(playlists, p)
	}
	return playlists, rows.Err()
}

func (r *repository) IsInUserlist(ctx context.Context, userID, playlistID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM music.user_playlists WHERE user_id = $1 AND playlist_id = $2)`,
		userID, playlistID,
	).Scan(&exists)
	if err != nil {
		return false, dberr.Wrap(err, "is in userlist")
	}
	return exists, nil
}

func (r *repository) AddToUserlist(ctx context.Context, userID, playlistID string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO music.user_playlists (playlist_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		playlistID, userID,
	)
	return dberr.Wrap(err, "add to userlist")
}

func (r *repository) RemoveFromUserlist(ctx context.Context, userID, playlistID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM music.user_playlists WHERE playlist_id = $1 AND user_id = $2`,
		playlistID, userID,
	)
	return dberr.Wrap(err, "remove from userlist")
}

func (r *repository) CountQueuedSongJobs(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM site.status
		WHERE requestor = $1 AND name = 'music_download' AND status = 'queued'`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, dberr.Wrap(err, "count queued song jobs")
	}
	return count, nil
}

func (r *repository) AddSongs(ctx context.Context, playlistID, adderID string, songIDs []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "begin add songs")
	}
	defer tx.Rollback(ctx)

	var inserted int
	for _, songID := range songIDs {
		ct, err := tx.Exec(ctx, `
			INSERT INTO music.playlist_songs (playlist_id, song_id, adder_id, created)
			VALUES ($1, $2, $3, NOW() AT TIME ZONE 'utc')
			ON CONFLICT (playlist_id, song_id) DO NOTHING`,
			playlistID, songID, adderID,
		)
		if err != nil {
			return dberr.Wrap(err, "insert playlist song")
		}
		inserted += int(ct.RowsAffected())
	}

	if inserted > 0 {
		if _, err := tx.Exec(ctx,
			`UPDATE music.playlists SET song_count = song_count + $1 WHERE id = $2`,
			inserted, playlistID,
		); err != nil {
			return dberr.Wrap(err, "bump song count")
		}
	}

	return dberr.Wrap(tx.Commit(ctx), "commit add songs")
}

func (r *repository) ListSongIDs(ctx context.Context, playlistID string) ([]*PlaylistSongRef, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT song_id, adder_id, created FROM music.playlist_songs
		WHERE playlist_id = $1
		ORDER BY created ASC
		LIMIT $2`,
		playlistID, MaxSongsReturned,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "list song ids")
	}
	defer rows.Close()

	var refs []*PlaylistSongRef
	for rows.Next() {
		ref := &PlaylistSongRef{}
		if err := rows.Scan(&ref.SongID, &ref.AdderID, &ref.Added); err != nil {
			return nil, dberr.Wrap(err, "scan song ref")
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (r *repository) HydrateSongs(ctx context.Context, songIDs []string) (map[string]*Song, error) {
	if len(songIDs) == 0 {
		return map[string]*Song{}, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, uploader, uploader_url, upload_date, title, duration_string,
			description, thumbnail_file, video_file, subtitle_files
		FROM video_meta WHERE id = ANY($1)`,
		songIDs,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "hydrate songs")
	}
	defer rows.Close()

	songs := make(map[string]*Song, len(songIDs))
	for rows.Next() {
		s := &Song{}
		if err := rows.Scan(
			&s.ID, &s.Uploader, &s.UploaderURL, &s.UploadDate, &s.Title, &s.DurationString,
			&s.Description, &s.ThumbnailFile, &s.VideoFile, &s.SubtitleFiles,
		); err != nil {
			return nil, dberr.Wrap(err, "scan video meta")
		}
		songs[s.ID] = s
	}
	return songs, rows.Err()
}
