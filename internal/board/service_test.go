// Copyright (c) 2026 Hellomouse. All rights reserved.

package board

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hellomouse/hellomouse-apps-api/internal/board/perm"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/sanitize"
)

// fakeStore is an in-memory Store used to exercise Service without a
// database. Tag methods are unused by these tests and return zero values.
type fakeStore struct {
	boards      map[string]*Board
	boardPerms  map[string]map[string]perm.Level
	pins        map[string]*Pin
	history     map[string][]*PinHistory
	favorites   map[string]map[string]bool
	users       map[string]bool

	lastMassEditBoardIDs int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		boards:     map[string]*Board{},
		boardPerms: map[string]map[string]perm.Level{},
		pins:       map[string]*Pin{},
		history:    map[string][]*PinHistory{},
		favorites:  map[string]map[string]bool{},
		users:      map[string]bool{},
	}
}

func (f *fakeStore) CreateBoard(ctx context.Context, b *Board, perms map[string]perm.Level) (*Board, error) {
	b.ID = "board-" + b.Name
	b.Created = time.Now()
	b.Edited = b.Created
	f.boards[b.ID] = b
	rows := map[string]perm.Level{b.CreatorID: perm.Owner}
	for id, lvl := range perms {
		if id == b.CreatorID {
			continue
		}
		rows[id] = lvl
	}
	f.boardPerms[b.ID] = rows
	return b, nil
}

func (f *fakeStore) GetBoard(ctx context.Context, boardID string) (*Board, error) {
	return f.boards[boardID], nil
}

func (f *fakeStore) BoardExists(ctx context.Context, boardID string) (bool, error) {
	_, ok := f.boards[boardID]
	return ok, nil
}

func (f *fakeStore) GetBoardPerms(ctx context.Context, boardID string) (map[string]perm.Level, error) {
	return f.boardPerms[boardID], nil
}

func (f *fakeStore) GetCallerBoardPerm(ctx context.Context, boardID, userID string) (perm.Level, bool, error) {
	lvl, ok := f.boardPerms[boardID][userID]
	return lvl, ok, nil
}

func (f *fakeStore) ModifyBoard(ctx context.Context, boardID string, update BoardUpdate) (*Board, error) {
	b := f.boards[boardID]
	if update.Name != nil {
		b.Name = *update.Name
	}
	if update.Description != nil {
		b.Description = *update.Description
	}
	if update.Color != nil {
		b.Color = *update.Color
	}
	if update.Perms != nil {
		f.boardPerms[boardID] = update.Perms
	}
	b.Edited = time.Now()
	return b, nil
}

func (f *fakeStore) DeleteBoard(ctx context.Context, boardID string) error {
	delete(f.boards, boardID)
	delete(f.boardPerms, boardID)
	return nil
}

func (f *fakeStore) ListBoards(ctx context.Context, callerID string, filter BoardListFilter) ([]*Board, error) {
	var out []*Board
	for id, perms := range f.boardPerms {
		if lvl, ok := perms[callerID]; ok {
			b := *f.boards[id]
			b.CallerPerm = lvl
			out = append(out, &b)
		}
	}
	return out, nil
}

func (f *fakeStore) MassEditBoardColors(ctx context.Context, callerID string, boardIDs []string, color string) error {
	f.lastMassEditBoardIDs = len(boardIDs)
	for _, id := range boardIDs {
		lvl := f.boardPerms[id][callerID]
		if lvl.CanEditParent() {
			f.boards[id].Color = color
		}
	}
	return nil
}

func (f *fakeStore) BulkChangeBoardPerms(ctx context.Context, callerID string, boardIDs []string, toAdd map[string]perm.Level, toRemove []string) error {
	var ownerSet, editSet []string
	for _, id := range boardIDs {
		switch f.boardPerms[id][callerID] {
		case perm.Owner:
			ownerSet = append(ownerSet, id)
		case perm.Edit:
			editSet = append(editSet, id)
		}
	}
	for userID, lvl := range toAdd {
		for _, id := range ownerSet {
			f.boardPerms[id][userID] = lvl
		}
		demoted := lvl
		if demoted == perm.Owner {
			demoted = perm.Edit
		}
		for _, id := range editSet {
			if f.boardPerms[id][userID] < perm.Edit {
				f.boardPerms[id][userID] = demoted
			}
		}
	}
	for _, userID := range toRemove {
		for _, id := range ownerSet {
			if userID != f.boards[id].CreatorID {
				delete(f.boardPerms[id], userID)
			}
		}
		for _, id := range editSet {
			if userID != f.boards[id].CreatorID && f.boardPerms[id][userID] < perm.Edit {
				delete(f.boardPerms[id], userID)
			}
		}
	}
	for _, id := range append(append([]string{}, ownerSet...), editSet...) {
		f.boardPerms[id][f.boards[id].CreatorID] = perm.Owner
	}
	return nil
}

func (f *fakeStore) QueryBulkPerms(ctx context.Context, boardIDs []string) (map[string]perm.Level, error) {
	counts := map[string]int{}
	levels := map[string]perm.Level{}
	consistent := map[string]bool{}
	for i, id := range boardIDs {
		for userID, lvl := range f.boardPerms[id] {
			if i == 0 {
				levels[userID] = lvl
				counts[userID] = 1
				consistent[userID] = true
			} else if prior, ok := levels[userID]; ok {
				counts[userID]++
				if prior != lvl {
					consistent[userID] = false
				}
			}
		}
	}
	out := map[string]perm.Level{}
	for userID, lvl := range levels {
		if consistent[userID] && counts[userID] == len(boardIDs) {
			out[userID] = lvl
		}
	}
	return out, nil
}

func (f *fakeStore) UsersExist(ctx context.Context, userIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		out[id] = f.users[id]
	}
	return out, nil
}

func (f *fakeStore) CreatePin(ctx context.Context, p *Pin) (*Pin, error) {
	p.ID = "pin-" + p.BoardID + "-" + p.CreatorID + "-" + p.Content
	p.Created = time.Now()
	p.Edited = p.Created
	f.pins[p.ID] = p
	if b := f.boards[p.BoardID]; b != nil {
		b.PinCount++
	}
	return p, nil
}

func (f *fakeStore) GetPin(ctx context.Context, pinID string) (*Pin, error) {
	return f.pins[pinID], nil
}

func (f *fakeStore) ModifyPin(ctx context.Context, pinID string, update PinUpdate, editorID string) (*Pin, error) {
	p := f.pins[pinID]
	changed := false
	if update.Content != nil && *update.Content != p.Content {
		f.recordHistory(pinID, editorID, p)
		p.Content = *update.Content
		changed = true
	}
	if update.Flags != nil && *update.Flags != p.Flags {
		if !changed {
			f.recordHistory(pinID, editorID, p)
		}
		p.Flags = *update.Flags
		changed = true
	}
	if update.BoardID != nil {
		p.BoardID = *update.BoardID
	}
	if changed {
		p.Edited = time.Now()
	}
	return p, nil
}

// recordHistory mimics the coalescing rule: a coalesced row keeps the
// oldest pre-image it already holds and only refreshes its timestamp.
func (f *fakeStore) recordHistory(pinID, editorID string, before *Pin) {
	rows := f.history[pinID]
	if len(rows) > 0 {
		last := rows[len(rows)-1]
		if last.EditorID == editorID && time.Since(last.Time) < HistoryCoalesceWindow {
			last.Time = time.Now()
			return
		}
	}
	f.history[pinID] = append(rows, &PinHistory{
		ID:       int64(len(rows) + 1),
		PinID:    pinID,
		EditorID: editorID,
		Time:     time.Now(),
		Content:  before.Content,
		Flags:    before.Flags,
	})
}

func (f *fakeStore) DeletePin(ctx context.Context, pinID string) error {
	p := f.pins[pinID]
	if p == nil {
		return nil
	}
	if b := f.boards[p.BoardID]; b != nil {
		b.PinCount--
	}
	delete(f.pins, pinID)
	delete(f.history, pinID)
	return nil
}

func (f *fakeStore) BulkDeletePins(ctx context.Context, pinIDs []string) error {
	for _, id := range pinIDs {
		if err := f.DeletePin(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeStore) BulkEditPinFlags(ctx context.Context, pinIDs []string, mask int, addFlags bool) error {
	for _, id := range pinIDs {
		p := f.pins[id]
		if addFlags {
			p.Flags |= mask
		} else {
			p.Flags &^= mask
		}
	}
	return nil
}

func (f *fakeStore) BulkEditPinColors(ctx context.Context, pinIDs []string, color string) error {
	return nil
}

func (f *fakeStore) ListPins(ctx context.Context, callerID string, filter PinListFilter) ([]*Pin, error) {
	var out []*Pin
	for _, p := range f.pins {
		if filter.BoardID != "" && p.BoardID != filter.BoardID {
			continue
		}
		out = append(out, p)
	}
	// Orders by flag bucket only; order within a bucket is not defined.
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			bi, bj := FlagBucket(out[i].Flags), FlagBucket(out[j].Flags)
			swap := false
			if filter.SortDown {
				swap = bj > bi
			} else {
				swap = bj < bi
			}
			if swap {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (f *fakeStore) ListPinHistory(ctx context.Context, pinID string, offset, limit int) ([]*PinHistory, error) {
	rows := f.history[pinID]
	if offset > len(rows) {
		return nil, nil
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end], nil
}

func (f *fakeStore) GetPinHistoryEntry(ctx context.Context, historyID int64) (*PinHistory, error) {
	for _, rows := range f.history {
		for _, h := range rows {
			if h.ID == historyID {
				return h, nil
			}
		}
	}
	return nil, nil
}

func (f *fakeStore) AddFavorites(ctx context.Context, userID string, pinIDs []string) error {
	if f.favorites[userID] == nil {
		f.favorites[userID] = map[string]bool{}
	}
	for _, id := range pinIDs {
		f.favorites[userID][id] = true
	}
	return nil
}

func (f *fakeStore) RemoveFavorites(ctx context.Context, userID string, pinIDs []string) error {
	for _, id := range pinIDs {
		delete(f.favorites[userID], id)
	}
	return nil
}

func (f *fakeStore) ListFavorites(ctx context.Context, callerID string, filter PinListFilter) ([]*Pin, error) {
	var out []*Pin
	for id := range f.favorites[callerID] {
		if p := f.pins[id]; p != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) CheckFavorites(ctx context.Context, userID string, pinIDs []string) ([]string, error) {
	var out []string
	for _, id := range pinIDs {
		if f.favorites[userID][id] {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateTag(ctx context.Context, t *Tag) (*Tag, error) { return t, nil }
func (f *fakeStore) GetTag(ctx context.Context, tagID int64) (*Tag, error) { return nil, nil }
func (f *fakeStore) ModifyTag(ctx context.Context, tagID int64, update TagUpdate) (*Tag, error) {
	return nil, nil
}
func (f *fakeStore) DeleteTags(ctx context.Context, creatorID string, tagIDs []int64) error {
	return nil
}
func (f *fakeStore) ListTags(ctx context.Context, creatorID string) ([]*Tag, error) { return nil, nil }
func (f *fakeStore) SetTagBoards(ctx context.Context, tagID int64, boardIDs []string) error {
	return nil
}
func (f *fakeStore) MoveBoardTag(ctx context.Context, creatorID, boardID string, targetTagID int64) error {
	return nil
}
func (f *fakeStore) BulkEditTagColors(ctx context.Context, creatorID string, tagIDs []int64, color string) error {
	return nil
}

func newTestService() (*Service, *fakeStore) {
	store := newFakeStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store, sanitize.NewPolicy(), logger), store
}

// Owner share then editor demote. Alice (Owner) sets Bob
// to Edit; Bob attempts to set Alice to View. Alice must remain Owner.
func TestService_ModifyBoard_OwnerShareThenEditorDemote(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()
	store.users["alice"] = true
	store.users["bob"] = true

	board, err := svc.CreateBoard(ctx, "alice", &Board{Name: "trip planning"}, nil)
	require.NoError(t, err)

	_, err = svc.ModifyBoard(ctx, "alice", board.ID, BoardUpdate{
		Perms: map[string]perm.Level{"bob": perm.Edit},
	})
	require.NoError(t, err)

	updated, err := svc.ModifyBoard(ctx, "bob", board.ID, BoardUpdate{
		Perms: map[string]perm.Level{"alice": perm.View, "bob": perm.Edit},
	})
	require.NoError(t, err)
	_ = updated

	perms, err := store.GetBoardPerms(ctx, board.ID)
	require.NoError(t, err)
	assert.Equal(t, perm.Owner, perms["alice"])
	assert.Equal(t, perm.Edit, perms["bob"])
}

// Editor grant Owner denied.
func TestService_ModifyBoard_EditorCannotGrantOwner(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()
	store.users["alice"] = true
	store.users["bob"] = true
	store.users["carol"] = true

	board, err := svc.CreateBoard(ctx, "alice", &Board{Name: "recipes"}, map[string]perm.Level{"bob": perm.Edit})
	require.NoError(t, err)

	_, err = svc.ModifyBoard(ctx, "bob", board.ID, BoardUpdate{
		Perms: map[string]perm.Level{"carol": perm.Owner},
	})
	require.NoError(t, err)

	perms, err := store.GetBoardPerms(ctx, board.ID)
	require.NoError(t, err)
	assert.Equal(t, perm.Edit, perms["carol"])
}

// Bulk perm across mixed boards. Caller is Owner on B1
// and Edit on B2; submits {Carol: Owner}. Carol ends up Owner on B1, Edit
// on B2.
func TestService_BulkChangeBoardPerms_MixedOwnerEdit(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()
	store.users["alice"] = true
	store.users["bob"] = true
	store.users["carol"] = true

	b1, err := svc.CreateBoard(ctx, "alice", &Board{Name: "b1"}, nil)
	require.NoError(t, err)
	b2, err := svc.CreateBoard(ctx, "bob", &Board{Name: "b2"}, map[string]perm.Level{"alice": perm.Edit})
	require.NoError(t, err)

	err = svc.BulkChangeBoardPerms(ctx, "alice", []string{b1.ID, b2.ID}, map[string]perm.Level{"carol": perm.Owner}, nil)
	require.NoError(t, err)

	p1, err := store.GetBoardPerms(ctx, b1.ID)
	require.NoError(t, err)
	p2, err := store.GetBoardPerms(ctx, b2.ID)
	require.NoError(t, err)

	assert.Equal(t, perm.Owner, p1["carol"])
	assert.Equal(t, perm.Edit, p2["carol"])
}

// History coalesce window. Two edits by the same editor
// within five minutes append exactly one history row.
func TestService_ModifyPin_HistoryCoalescesWithinWindow(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()
	store.users["alice"] = true

	board, err := svc.CreateBoard(ctx, "alice", &Board{Name: "journal"}, nil)
	require.NoError(t, err)

	pin, err := svc.CreatePin(ctx, "alice", &Pin{BoardID: board.ID, Type: PinMarkdown, Content: "v0"})
	require.NoError(t, err)

	v1 := "v1"
	_, err = svc.ModifyPin(ctx, "alice", pin.ID, PinUpdate{Content: &v1})
	require.NoError(t, err)

	v2 := "v2"
	_, err = svc.ModifyPin(ctx, "alice", pin.ID, PinUpdate{Content: &v2})
	require.NoError(t, err)

	history, err := store.ListPinHistory(ctx, pin.ID, 0, 100)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "v0", history[0].Content)
}

// Scenario: create-then-modify with no actual change must not append
// history (round-trip law).
func TestService_ModifyPin_NoChangeDoesNotAppendHistory(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()
	store.users["alice"] = true

	board, err := svc.CreateBoard(ctx, "alice", &Board{Name: "journal"}, nil)
	require.NoError(t, err)
	pin, err := svc.CreatePin(ctx, "alice", &Pin{BoardID: board.ID, Type: PinMarkdown, Content: "same"})
	require.NoError(t, err)

	same := "same"
	_, err = svc.ModifyPin(ctx, "alice", pin.ID, PinUpdate{Content: &same})
	require.NoError(t, err)

	history, err := store.ListPinHistory(ctx, pin.ID, 0, 100)
	require.NoError(t, err)
	assert.Empty(t, history)
}

// pin listing order. Board has pins A(PINNED), B(none),
// C(ARCHIVED). sort_down=true => A,B,C. sort_down=false => C,B,A.
func TestService_ListPins_FlagBucketOrdering(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()
	store.users["alice"] = true

	board, err := svc.CreateBoard(ctx, "alice", &Board{Name: "order"}, nil)
	require.NoError(t, err)

	a, err := svc.CreatePin(ctx, "alice", &Pin{BoardID: board.ID, Type: PinMarkdown, Content: "A"})
	require.NoError(t, err)
	b, err := svc.CreatePin(ctx, "alice", &Pin{BoardID: board.ID, Type: PinMarkdown, Content: "B"})
	require.NoError(t, err)
	c, err := svc.CreatePin(ctx, "alice", &Pin{BoardID: board.ID, Type: PinMarkdown, Content: "C"})
	require.NoError(t, err)

	pinned := FlagPinned
	_, err = svc.ModifyPin(ctx, "alice", a.ID, PinUpdate{Flags: &pinned})
	require.NoError(t, err)
	archived := FlagArchived
	_, err = svc.ModifyPin(ctx, "alice", c.ID, PinUpdate{Flags: &archived})
	require.NoError(t, err)

	down, err := svc.ListPins(ctx, "alice", PinListFilter{BoardID: board.ID, SortDown: true})
	require.NoError(t, err)
	require.Len(t, down, 3)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, []string{down[0].ID, down[1].ID, down[2].ID})

	up, err := svc.ListPins(ctx, "alice", PinListFilter{BoardID: board.ID, SortDown: false})
	require.NoError(t, err)
	require.Len(t, up, 3)
	assert.Equal(t, []string{c.ID, b.ID, a.ID}, []string{up[0].ID, up[1].ID, up[2].ID})
}

// Pin edit permission: a View-only caller may not modify a pin.
func TestService_ModifyPin_ViewOnlyForbidden(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()
	store.users["alice"] = true
	store.users["bob"] = true

	board, err := svc.CreateBoard(ctx, "alice", &Board{Name: "shared"}, map[string]perm.Level{"bob": perm.View})
	require.NoError(t, err)
	pin, err := svc.CreatePin(ctx, "alice", &Pin{BoardID: board.ID, Type: PinMarkdown, Content: "x"})
	require.NoError(t, err)

	newContent := "y"
	_, err = svc.ModifyPin(ctx, "bob", pin.ID, PinUpdate{Content: &newContent})
	assert.Error(t, err)
}

// SelfEdit holders may edit their own pins but not others'.
func TestService_ModifyPin_SelfEditOnlyOwnPin(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()
	store.users["alice"] = true
	store.users["bob"] = true

	board, err := svc.CreateBoard(ctx, "alice", &Board{Name: "shared"}, map[string]perm.Level{"bob": perm.SelfEdit})
	require.NoError(t, err)

	alicePin, err := svc.CreatePin(ctx, "alice", &Pin{BoardID: board.ID, Type: PinMarkdown, Content: "alice's"})
	require.NoError(t, err)
	bobPin, err := svc.CreatePin(ctx, "bob", &Pin{BoardID: board.ID, Type: PinMarkdown, Content: "bob's"})
	require.NoError(t, err)

	edited := "edited"
	_, err = svc.ModifyPin(ctx, "bob", bobPin.ID, PinUpdate{Content: &edited})
	assert.NoError(t, err)

	_, err = svc.ModifyPin(ctx, "bob", alicePin.ID, PinUpdate{Content: &edited})
	assert.Error(t, err)
}

// Favorites are idempotent under repeated add (round-trip law).
func TestService_AddFavorites_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()
	store.users["alice"] = true

	board, err := svc.CreateBoard(ctx, "alice", &Board{Name: "favs"}, nil)
	require.NoError(t, err)
	pin, err := svc.CreatePin(ctx, "alice", &Pin{BoardID: board.ID, Type: PinMarkdown, Content: "x"})
	require.NoError(t, err)

	require.NoError(t, svc.AddFavorites(ctx, "alice", []string{pin.ID}))
	require.NoError(t, svc.AddFavorites(ctx, "alice", []string{pin.ID}))

	checked, err := svc.CheckFavorites(ctx, "alice", []string{pin.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{pin.ID}, checked)
}

// Bulk board id lists are capped at MaxBulkBoardIDs before reaching the
// store (boundary law).
func TestService_MassEditBoardColors_CapsIDList(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()
	store.users["alice"] = true

	ids := make([]string, MaxBulkBoardIDs+50)
	for i := range ids {
		ids[i] = "nonexistent"
	}

	err := svc.MassEditBoardColors(ctx, "alice", ids, "#fff")
	require.NoError(t, err)
	assert.Equal(t, MaxBulkBoardIDs, store.lastMassEditBoardIDs)
}
