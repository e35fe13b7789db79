// Copyright (c) 2026 Hellomouse. All rights reserved.

package music

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hellomouse/hellomouse-apps-api/internal/board/perm"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/apperr"
)

// fakeStore is an in-memory Store used to exercise Service without a
// database.
type fakeStore struct {
	playlists map[string]*Playlist
	perms     map[string]map[string]perm.Level
	shelf     map[string]map[string]bool
	users     map[string]bool
	queued    map[string]int
	songs     map[string][]*PlaylistSongRef
	meta      map[string]*Song
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		playlists: map[string]*Playlist{},
		perms:     map[string]map[string]perm.Level{},
		shelf:     map[string]map[string]bool{},
		users:     map[string]bool{},
		queued:    map[string]int{},
		songs:     map[string][]*PlaylistSongRef{},
		meta:      map[string]*Song{},
	}
}

func (f *fakeStore) PlaylistExists(ctx context.Context, id string) (bool, error) {
	_, ok := f.playlists[id]
	return ok, nil
}

func (f *fakeStore) CreatePlaylist(ctx context.Context, p *Playlist) (*Playlist, error) {
	p.ID = "playlist-" + p.Name
	f.playlists[p.ID] = p
	f.perms[p.ID] = map[string]perm.Level{p.CreatorID: perm.Owner}
	f.shelf[p.ID] = map[string]bool{p.CreatorID: true}
	return p, nil
}

func (f *fakeStore) GetPlaylist(ctx context.Context, id string) (*Playlist, error) {
	return f.playlists[id], nil
}

func (f *fakeStore) RenamePlaylist(ctx context.Context, id, name string) (*Playlist, error) {
	f.playlists[id].Name = name
	return f.playlists[id], nil
}

func (f *fakeStore) DeletePlaylist(ctx context.Context, id string) error {
	delete(f.playlists, id)
	return nil
}

func (f *fakeStore) GetPlaylistPerms(ctx context.Context, id string) (map[string]perm.Level, error) {
	return f.perms[id], nil
}

func (f *fakeStore) GetCallerPlaylistPerm(ctx context.Context, id, userID string) (perm.Level, bool, error) {
	level, ok := f.perms[id][userID]
	return level, ok, nil
}

func (f *fakeStore) SetPlaylistPerms(ctx context.Context, id string, perms map[string]perm.Level) error {
	f.perms[id] = perms
	return nil
}

func (f *fakeStore) UsersExist(ctx context.Context, ids []string) (map[string]bool, error) {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = f.users[id]
	}
	return out, nil
}

func (f *fakeStore) ListPlaylists(ctx context.Context, callerID string) ([]*Playlist, error) {
	var out []*Playlist
	for id, shelved := range f.shelf {
		if shelved[callerID] {
			out = append(out, f.playlists[id])
		}
	}
	return out, nil
}

func (f *fakeStore) IsInUserlist(ctx context.Context, userID, id string) (bool, error) {
	return f.shelf[id][userID], nil
}

func (f *fakeStore) AddToUserlist(ctx context.Context, userID, id string) error {
	if f.shelf[id] == nil {
		f.shelf[id] = map[string]bool{}
	}
	f.shelf[id][userID] = true
	return nil
}

func (f *fakeStore) RemoveFromUserlist(ctx context.Context, userID, id string) error {
	delete(f.shelf[id], userID)
	return nil
}

func (f *fakeStore) CountQueuedSongJobs(ctx context.Context, userID string) (int, error) {
	return f.queued[userID], nil
}

func (f *fakeStore) AddSongs(ctx context.Context, playlistID, adderID string, songIDs []string) error {
	for _, id := range songIDs {
		f.songs[playlistID] = append(f.songs[playlistID], &PlaylistSongRef{SongID: id, AdderID: adderID, Added: time.Now()})
	}
	return nil
}

func (f *fakeStore) ListSongIDs(ctx context.Context, playlistID string) ([]*PlaylistSongRef, error) {
	return f.songs[playlistID], nil
}

func (f *fakeStore) HydrateSongs(ctx context.Context, ids []string) (map[string]*Song, error) {
	out := make(map[string]*Song, len(ids))
	for _, id := range ids {
		if s, ok := f.meta[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

type fakeQueuer struct {
	called     bool
	playlistID string
	urls       []string
}

func (q *fakeQueuer) QueueSongDownload(ctx context.Context, requestorID, playlistID string, urls []string) error {
	q.called = true
	q.playlistID = playlistID
	q.urls = urls
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreatePlaylist_ForcesCallerOwner(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, 10, discardLogger())

	p, err := svc.CreatePlaylist(context.Background(), "alice", "road trip")
	require.NoError(t, err)

	level, ok, err := store.GetCallerPlaylistPerm(context.Background(), p.ID, "alice")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, perm.Owner, level)
}

func TestCreatePlaylist_RejectsEmptyName(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, 10, discardLogger())

	_, err := svc.CreatePlaylist(context.Background(), "alice", "")
	require.Error(t, err)
}

func TestSetPlaylistPerms_EditorCannotGrantOwner(t *testing.T) {
	store := newFakeStore()
	store.users["alice"] = true
	store.users["bob"] = true
	store.users["carol"] = true

	p, err := store.CreatePlaylist(context.Background(), &Playlist{Name: "mix", CreatorID: "alice"})
	require.NoError(t, err)
	store.perms[p.ID]["bob"] = perm.Edit

	svc := NewService(store, nil, 10, discardLogger())
	err = svc.SetPlaylistPerms(context.Background(), "bob", p.ID, map[string]perm.Level{"carol": perm.Owner})
	require.NoError(t, err)

	assert.Equal(t, perm.Edit, store.perms[p.ID]["carol"])
	assert.Equal(t, perm.Owner, store.perms[p.ID]["alice"])
}

func TestAddSongsByURL_AdmissionControl(t *testing.T) {
	store := newFakeStore()
	p, err := store.CreatePlaylist(context.Background(), &Playlist{Name: "mix", CreatorID: "alice"})
	require.NoError(t, err)
	store.queued["alice"] = 8

	queuer := &fakeQueuer{}
	svc := NewService(store, queuer, 10, discardLogger())

	err = svc.AddSongsByURL(context.Background(), "alice", p.ID, []string{"http://a", "http://b", "http://c"})
	require.Error(t, err)
	assert.False(t, queuer.called)

	store.queued["alice"] = 2
	err = svc.AddSongsByURL(context.Background(), "alice", p.ID, []string{"http://a", "http://b"})
	require.NoError(t, err)
	assert.True(t, queuer.called)
	assert.Equal(t, p.ID, queuer.playlistID)
}

func TestAddSongsByURL_NoQueuerConfigured(t *testing.T) {
	store := newFakeStore()
	p, err := store.CreatePlaylist(context.Background(), &Playlist{Name: "mix", CreatorID: "alice"})
	require.NoError(t, err)

	svc := NewService(store, nil, 10, discardLogger())
	err = svc.AddSongsByURL(context.Background(), "alice", p.ID, []string{"http://a"})
	require.Error(t, err)
	assert.True(t, apperr.IsAppError(err))
}

func TestGetSongs_UntitledPlaceholder(t *testing.T) {
	store := newFakeStore()
	p, err := store.CreatePlaylist(context.Background(), &Playlist{Name: "mix", CreatorID: "alice"})
	require.NoError(t, err)

	require.NoError(t, store.AddSongs(context.Background(), p.ID, "alice", []string{"song-1", "song-2"}))
	store.meta["song-1"] = &Song{ID: "song-1", Title: "Known Song", DurationString: "3:00"}

	svc := NewService(store, nil, 10, discardLogger())
	songs, err := svc.GetSongs(context.Background(), "alice", p.ID)
	require.NoError(t, err)
	require.Len(t, songs, 2)
	assert.Equal(t, "Known Song", songs[0].Title)
	assert.Equal(t, "Untitled", songs[1].Title)
	assert.Equal(t, "0:00", songs[1].DurationString)
}
