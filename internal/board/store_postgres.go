// Copyright (c) 2026 Hellomouse. All rights reserved.

/*
Package board implements the board/pin store described above: boards, board
permissions, pins, pin flags, favorites, and pin history.

The dynamic listing queries (ListBoards, ListPins, ListFavorites) follow the
strings.Builder + incrementing-placeholder idiom used elsewhere in this
codebase for filterable, sortable, paginated queries, with
COUNT(*) OVER() omitted here since the HTTP surface does not expose a total
count for these endpoints — only limit/offset windows.
*/
package board

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

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

// NewStore constructs a PostgreSQL-backed board/pin store.
func NewStore(pool *pgxpool.Pool) Store {
	return &repository{pool: pool}
}

// # Boards

func (r *repository) BoardExists(ctx context.Context, boardID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM board.boards WHERE id = $1)`, boardID).Scan(&exists)
	if err != nil {
		return false, dberr.Wrap(err, "board exists")
	}
	return exists, nil
}

func (r *repository) GetBoard(ctx context.Context, boardID string) (*Board, error) {
	b := &Board{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, description, creator_id, color, created, edited, pin_count
		FROM board.boards WHERE id = $1`, boardID,
	).Scan(&b.ID, &b.Name, &b.Description, &b.CreatorID, &b.Color, &b.Created, &b.Edited, &b.PinCount)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "get board")
	}
	return b, nil
}

func (r *repository) GetBoardPerms(ctx context.Context, boardID string) (map[string]perm.Level, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id, perm_id FROM board.board_perms WHERE board_id = $1`, boardID)
	if err != nil {
		return nil, dberr.Wrap(err, "get board perms")
	}
	defer rows.Close()

	perms := make(map[string]perm.Level)
	for rows.Next() {
		var userID string
		var level int
		if err := rows.Scan(&userID, &level); err != nil {
			return nil, dberr.Wrap(err, "scan board perm")
		}
		perms[userID] = perm.Level(level)
	}
	return perms, rows.Err()
}

func (r *repository) GetCallerBoardPerm(ctx context.Context, boardID, userID string) (perm.Level, bool, error) {
	var level int
	err := r.pool.QueryRow(ctx,
		`SELECT perm_id FROM board.board_perms WHERE board_id = $1 AND user_id = $2`,
		boardID, userID,
	).Scan(&level)

	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, dberr.Wrap(err, "get caller board perm")
	}
	return perm.Level(level), true, nil
}

func (r *repository) CreateBoard(ctx context.Context, b *Board, perms map[string]perm.Level) (*Board, error) {
	id, err := uuid.NewV4WithRetry(ctx, r.BoardExists)
	if err != nil {
		return nil, err
	}
	b.ID = id

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, dberr.Wrap(err, "begin create board")
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO board.boards (id, name, description, creator_id, color, created, edited, pin_count)
		VALUES ($1, $2, $3, $4, $5, NOW() AT TIME ZONE 'utc', NOW() AT TIME ZONE 'utc', 0)`,
		b.ID, b.Name, b.Description, b.CreatorID, b.Color,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "create board")
	}

	// Creator always gets an Owner row, regardless of what was submitted.
	if _, err := tx.Exec(ctx,
		`INSERT INTO board.board_perms (board_id, user_id, perm_id) VALUES ($1, $2, $3)`,
		b.ID, b.CreatorID, perm.Owner,
	); err != nil {
		return nil, dberr.Wrap(err, "create board owner perm")
	}

	for userID, level := range perms {
		if userID == b.CreatorID {
			continue
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO board.board_perms (board_id, user_id, perm_id) VALUES ($1, $2, $3)`,
			b.ID, userID, level,
		); err != nil {
			return nil, dberr.Wrap(err, "create board perm")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, dberr.Wrap(err, "commit create board")
	}
	return r.GetBoard(ctx, b.ID)
}

func (r *repository) ModifyBoard(ctx context.Context, boardID string, update BoardUpdate) (*Board, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, dberr.Wrap(err, "begin modify board")
	}
	defer tx.Rollback(ctx)

	var setClauses []string
	var args []any
	argID := 1

	if update.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argID))
		args = append(args, *update.Name)
		argID++
	}
	if update.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", argID))
		args = append(args, *update.Description)
		argID++
	}
	if update.Color != nil {
		setClauses = append(setClauses, fmt.Sprintf("color = $%d", argID))
		args = append(args, *update.Color)
		argID++
	}
	setClauses = append(setClauses, "edited = NOW() AT TIME ZONE 'utc'")

	query := "UPDATE board.boards SET " + strings.Join(setClauses, ", ") + fmt.Sprintf(" WHERE id = $%d", argID)
	args = append(args, boardID)

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return nil, dberr.Wrap(err, "modify board")
	}

	if update.Perms != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM board.board_perms WHERE board_id = $1`, boardID); err != nil {
			return nil, dberr.Wrap(err, "clear board perms")
		}
		for userID, level := range update.Perms {
			if _, err := tx.Exec(ctx,
				`INSERT INTO board.board_perms (board_id, user_id, perm_id) VALUES ($1, $2, $3)`,
				boardID, userID, level,
			); err != nil {
				return nil, dberr.Wrap(err, "insert board perm")
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, dberr.Wrap(err, "commit modify board")
	}
	return r.GetBoard(ctx, boardID)
}

func (r *repository) DeleteBoard(ctx context.Context, boardID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "begin delete board")
	}
	defer tx.Rollback(ctx)

	statements := []string{
		`DELETE FROM board.favorites WHERE pin_id IN (SELECT id FROM board.pins WHERE board_id = $1)`,
		`DELETE FROM board.pin_history WHERE pin_id IN (SELECT id FROM board.pins WHERE board_id = $1)`,
		`DELETE FROM board.tag_ids WHERE board_id = $1`,
		`DELETE FROM board.pins WHERE board_id = $1`,
		`DELETE FROM board.board_perms WHERE board_id = $1`,
		`DELETE FROM board.boards WHERE id = $1`,
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt, boardID); err != nil {
			return dberr.Wrap(err, "delete board cascade")
		}
	}

	return dberr.Wrap(tx.Commit(ctx), "commit delete board")
}

func (r *repository) ListBoards(ctx context.Context, callerID string, filter BoardListFilter) ([]*Board, error) {
	var query strings.Builder
	args := []any{callerID}
	argID := 2

	query.WriteString(`
		SELECT b.id, b.name, b.description, b.creator_id, b.color, b.created, b.edited, b.pin_count, p.perm_id
		FROM board.boards b
		INNER JOIN board.board_perms p ON p.board_id = b.id AND p.user_id = $1
		WHERE 1 = 1`)

	if filter.Search != "" {
		query.WriteString(fmt.Sprintf(" AND (b.name ILIKE '%%' || $%d || '%%' OR b.description ILIKE '%%' || $%d || '%%')", argID, argID))
		args = append(args, filter.Search)
		argID++
	}
	if filter.OwnerID != "" {
		query.WriteString(fmt.Sprintf(" AND b.creator_id = $%d", argID))
		args = append(args, filter.OwnerID)
		argID++
	}
	if filter.NotSelf {
		query.WriteString(fmt.Sprintf(" AND b.creator_id != $%d", argID))
		args = append(args, callerID)
		argID++
	}

	sortColumn := "b.created"
	switch filter.SortBy {
	case SortBoardName:
		sortColumn = "LOWER(b.name)"
	case SortBoardEdited:
		sortColumn = "b.edited"
	}
	direction := "ASC"
	if filter.SortDown {
		direction = "DESC"
	}
	query.WriteString(fmt.Sprintf(" ORDER BY %s %s OFFSET $%d LIMIT $%d", sortColumn, direction, argID, argID+1))
	args = append(args, filter.Offset, filter.Limit)

	rows, err := r.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list boards")
	}
	defer rows.Close()

	var boards []*Board
	for rows.Next() {
		b := &Board{}
		var level int
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.CreatorID, &b.Color, &b.Created, &b.Edited, &b.PinCount, &level); err != nil {
			return nil, dberr.Wrap(err, "scan board")
		}
		b.CallerPerm = perm.Level(level)
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

func (r *repository) MassEditBoardColors(ctx context.Context, callerID string, boardIDs []string, color string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE board.boards SET color = $1, edited = NOW() AT TIME ZONE 'utc'
		WHERE id = ANY($2) AND id IN (
			SELECT board_id FROM board.board_perms
			WHERE user_id = $3 AND perm_id >= $4
		)`,
		color, boardIDs, callerID, perm.Edit,
	)
	return dberr.Wrap(err, "mass edit board colors")
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

// BulkChangeBoardPerms partitions boardIDs into the caller's Owner set and
// Edit set, then applies each addition/removal channel per board, and
// re-asserts the creator-is-Owner invariant on every touched board.
func (r *repository) BulkChangeBoardPerms(ctx context.Context, callerID string, boardIDs []string, toAdd map[string]perm.Level, toRemove []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "begin bulk perm change")
	}
	defer tx.Rollback(ctx)

	ownerBoards, editBoards, err := r.partitionByCallerLevel(ctx, tx, callerID, boardIDs)
	if err != nil {
		return err
	}

	for userID, level := range toAdd {
		if len(ownerBoards) > 0 {
			if err := upsertPerm(ctx, tx, ownerBoards, userID, level); err != nil {
				return err
			}
		}
		if len(editBoards) > 0 {
			effective := level
			if effective == perm.Owner {
				effective = perm.Edit
			}
			if err := upsertPermBelow(ctx, tx, editBoards, userID, effective, perm.Edit); err != nil {
				return err
			}
		}
	}

	for _, userID := range toRemove {
		if len(ownerBoards) > 0 {
			if _, err := tx.Exec(ctx,
				`DELETE FROM board.board_perms WHERE board_id = ANY($1) AND user_id = $2 AND user_id != ALL(
					SELECT creator_id FROM board.boards WHERE id = ANY($1)
				)`,
				ownerBoards, userID,
			); err != nil {
				return dberr.Wrap(err, "bulk remove perm")
			}
		}
		if len(editBoards) > 0 {
			if _, err := tx.Exec(ctx,
				`DELETE FROM board.board_perms WHERE board_id = ANY($1) AND user_id = $2 AND perm_id < $3 AND user_id != ALL(
					SELECT creator_id FROM board.boards WHERE id = ANY($1)
				)`,
				editBoards, userID, perm.Edit,
			); err != nil {
				return dberr.Wrap(err, "bulk remove perm")
			}
		}
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO board.board_perms (board_id, user_id, perm_id)
		SELECT id, creator_id, $2 FROM board.boards WHERE id = ANY($1)
		ON CONFLICT (board_id, user_id) DO UPDATE SET perm_id = $2`,
		boardIDs, perm.Owner,
	); err != nil {
		return dberr.Wrap(err, "reassert board owner")
	}

	return dberr.Wrap(tx.Commit(ctx), "commit bulk perm change")
}

// partitionByCallerLevel splits boardIDs into those the caller holds Owner
// on and those the caller holds exactly Edit on.
func (r *repository) partitionByCallerLevel(ctx context.Context, tx pgx.Tx, callerID string, boardIDs []string) (owner, edit []string, err error) {
	rows, err := tx.Query(ctx,
		`SELECT board_id, perm_id FROM board.board_perms WHERE user_id = $1 AND board_id = ANY($2)`,
		callerID, boardIDs,
	)
	if err != nil {
		return nil, nil, dberr.Wrap(err, "partition caller level")
	}
	defer rows.Close()

	for rows.Next() {
		var boardID string
		var level int
		if err := rows.Scan(&boardID, &level); err != nil {
			return nil, nil, dberr.Wrap(err, "scan caller level")
		}
		switch perm.Level(level) {
		case perm.Owner:
			owner = append(owner, boardID)
		case perm.Edit:
			edit = append(edit, boardID)
		}
	}
	return owner, edit, rows.Err()
}

// upsertPerm sets (board, user) = level for every board in boardIDs.
func upsertPerm(ctx context.Context, tx pgx.Tx, boardIDs []string, userID string, level perm.Level) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO board.board_perms (board_id, user_id, perm_id)
		SELECT id, $2, $3 FROM board.boards WHERE id = ANY($1)
		ON CONFLICT (board_id, user_id) DO UPDATE SET perm_id = $3`,
		boardIDs, userID, level,
	)
	return dberr.Wrap(err, "upsert perm")
}

// upsertPermBelow sets (board, user) = level only where the user's current
// level on that board is strictly below floor (or has no row yet).
func upsertPermBelow(ctx context.Context, tx pgx.Tx, boardIDs []string, userID string, level perm.Level, floor perm.Level) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO board.board_perms AS bp (board_id, user_id, perm_id)
		SELECT b.id, $2, $3 FROM board.boards b WHERE b.id = ANY($1)
		ON CONFLICT (board_id, user_id) DO UPDATE SET perm_id = $3
		WHERE bp.perm_id < $4`,
		boardIDs, userID, level, floor,
	)
	return dberr.Wrap(err, "upsert perm below floor")
}

// # Pins

func (r *repository) CreatePin(ctx context.Context, p *Pin) (*Pin, error) {
	id, err := uuid.NewV4WithRetry(ctx, r.pinExists)
	if err != nil {
		return nil, err
	}
	p.ID = id

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, dberr.Wrap(err, "begin create pin")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO board.pins (id, board_id, pin_type, content, creator_id, created, edited, flags, attachment_paths, metadata)
		VALUES ($1, $2, $3, $4, $5, NOW() AT TIME ZONE 'utc', NOW() AT TIME ZONE 'utc', $6, $7, $8)`,
		p.ID, p.BoardID, p.Type, p.Content, p.CreatorID, p.Flags, p.AttachmentPaths, p.Metadata,
	); err != nil {
		return nil, dberr.Wrap(err, "create pin")
	}

	if _, err := tx.Exec(ctx,
		`UPDATE board.boards SET pin_count = pin_count + 1 WHERE id = $1`, p.BoardID,
	); err != nil {
		return nil, dberr.Wrap(err, "increment board pin count")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, dberr.Wrap(err, "commit create pin")
	}
	return r.GetPin(ctx, p.ID)
}

func (r *repository) pinExists(ctx context.Context, pinID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM board.pins WHERE id = $1)`, pinID).Scan(&exists)
	if err != nil {
		return false, dberr.Wrap(err, "pin exists")
	}
	return exists, nil
}

func (r *repository) GetPin(ctx context.Context, pinID string) (*Pin, error) {
	p := &Pin{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, board_id, pin_type, content, creator_id, created, edited, flags, attachment_paths, metadata
		FROM board.pins WHERE id = $1`, pinID,
	).Scan(&p.ID, &p.BoardID, &p.Type, &p.Content, &p.CreatorID, &p.Created, &p.Edited, &p.Flags, &p.AttachmentPaths, &p.Metadata)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "get pin")
	}
	return p, nil
}

// ModifyPin updates the given fields and, when content, flags, attachments,
// or metadata actually change, appends a history row. A history row within
// [HistoryCoalesceWindow] of the previous one by the same editor is
// overwritten in place rather than inserted anew; the retention cap is
// enforced by trimming anything beyond [MaxPinHistoryRows] afterward.
func (r *repository) ModifyPin(ctx context.Context, pinID string, update PinUpdate, editorID string) (*Pin, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, dberr.Wrap(err, "begin modify pin")
	}
	defer tx.Rollback(ctx)

	existing := &Pin{}
	err = tx.QueryRow(ctx, `
		SELECT id, board_id, pin_type, content, creator_id, created, edited, flags, attachment_paths, metadata
		FROM board.pins WHERE id = $1 FOR UPDATE`, pinID,
	).Scan(&existing.ID, &existing.BoardID, &existing.Type, &existing.Content, &existing.CreatorID,
		&existing.Created, &existing.Edited, &existing.Flags, &existing.AttachmentPaths, &existing.Metadata)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "lock pin for modify")
	}

	var setClauses []string
	var args []any
	argID := 1
	contentChanged := false

	if update.Type != nil {
		setClauses = append(setClauses, fmt.Sprintf("pin_type = $%d", argID))
		args = append(args, *update.Type)
		argID++
	}
	if update.BoardID != nil {
		setClauses = append(setClauses, fmt.Sprintf("board_id = $%d", argID))
		args = append(args, *update.BoardID)
		argID++
	}
	if update.Content != nil {
		setClauses = append(setClauses, fmt.Sprintf("content = $%d", argID))
		args = append(args, *update.Content)
		argID++
		contentChanged = *update.Content != existing.Content
	}
	if update.AttachmentPaths != nil {
		setClauses = append(setClauses, fmt.Sprintf("attachment_paths = $%d", argID))
		args = append(args, update.AttachmentPaths)
		argID++
		contentChanged = contentChanged || !slices.Equal(update.AttachmentPaths, existing.AttachmentPaths)
	}
	if update.Flags != nil {
		setClauses = append(setClauses, fmt.Sprintf("flags = $%d", argID))
		args = append(args, *update.Flags)
		argID++
		contentChanged = contentChanged || *update.Flags != existing.Flags
	}
	if update.Metadata != nil {
		setClauses = append(setClauses, fmt.Sprintf("metadata = $%d", argID))
		args = append(args, update.Metadata)
		argID++
		contentChanged = contentChanged || !bytes.Equal(update.Metadata, existing.Metadata)
	}
	setClauses = append(setClauses, "edited = NOW() AT TIME ZONE 'utc'")

	query := "UPDATE board.pins SET " + strings.Join(setClauses, ", ") + fmt.Sprintf(" WHERE id = $%d", argID)
	args = append(args, pinID)

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return nil, dberr.Wrap(err, "modify pin")
	}

	if contentChanged {
		if err := r.recordHistory(ctx, tx, existing, editorID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, dberr.Wrap(err, "commit modify pin")
	}
	return r.GetPin(ctx, pinID)
}

// recordHistory inserts the pre-update snapshot of a pin into pin_history,
// coalescing into the pin's most recent row when that row is by the same
// editor and falls within HistoryCoalesceWindow, then trims anything beyond
// MaxPinHistoryRows.
// A coalesced row keeps the snapshot it already holds — the oldest
// pre-image in the burst — and only refreshes its timestamp, so undoing a
// run of rapid edits lands back on the state before the first of them.
func (r *repository) recordHistory(ctx context.Context, tx pgx.Tx, before *Pin, editorID string) error {
	var coalesceID int64
	err := tx.QueryRow(ctx, `
		SELECT id FROM (
			SELECT id, editor_id, time FROM board.pin_history
			WHERE pin_id = $1 ORDER BY time DESC LIMIT 1
		) latest
		WHERE latest.editor_id = $2 AND latest.time > NOW() AT TIME ZONE 'utc' - make_interval(secs => $3)`,
		before.ID, editorID, HistoryCoalesceWindow.Seconds(),
	).Scan(&coalesceID)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		if _, err := tx.Exec(ctx, `
			INSERT INTO board.pin_history (pin_id, editor_id, time, content, flags, attachment_paths, metadata)
			VALUES ($1, $2, NOW() AT TIME ZONE 'utc', $3, $4, $5, $6)`,
			before.ID, editorID, before.Content, before.Flags, before.AttachmentPaths, before.Metadata,
		); err != nil {
			return dberr.Wrap(err, "insert pin history")
		}
	case err != nil:
		return dberr.Wrap(err, "find coalesce history row")
	default:
		if _, err := tx.Exec(ctx, `
			UPDATE board.pin_history SET time = NOW() AT TIME ZONE 'utc' WHERE id = $1`,
			coalesceID,
		); err != nil {
			return dberr.Wrap(err, "coalesce pin history")
		}
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM board.pin_history WHERE pin_id = $1 AND id NOT IN (
			SELECT id FROM board.pin_history WHERE pin_id = $1 ORDER BY time DESC LIMIT $2
		)`,
		before.ID, MaxPinHistoryRows,
	); err != nil {
		return dberr.Wrap(err, "trim pin history")
	}
	return nil
}

func (r *repository) DeletePin(ctx context.Context, pinID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "begin delete pin")
	}
	defer tx.Rollback(ctx)

	if err := deletePinCascade(ctx, tx, []string{pinID}); err != nil {
		return err
	}
	return dberr.Wrap(tx.Commit(ctx), "commit delete pin")
}

func (r *repository) BulkDeletePins(ctx context.Context, pinIDs []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "begin bulk delete pins")
	}
	defer tx.Rollback(ctx)

	if err := deletePinCascade(ctx, tx, pinIDs); err != nil {
		return err
	}
	return dberr.Wrap(tx.Commit(ctx), "commit bulk delete pins")
}

// deletePinCascade removes favorites and history for the given pins, deletes
// the pin rows, then decrements each affected board's pin_count by however
// many of its pins were actually removed.
func deletePinCascade(ctx context.Context, tx pgx.Tx, pinIDs []string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM board.favorites WHERE pin_id = ANY($1)`, pinIDs); err != nil {
		return dberr.Wrap(err, "delete pin favorites")
	}
	if _, err := tx.Exec(ctx, `DELETE FROM board.pin_history WHERE pin_id = ANY($1)`, pinIDs); err != nil {
		return dberr.Wrap(err, "delete pin history")
	}

	rows, err := tx.Query(ctx, `
		DELETE FROM board.pins WHERE id = ANY($1) RETURNING board_id`, pinIDs)
	if err != nil {
		return dberr.Wrap(err, "delete pins")
	}
	counts := make(map[string]int)
	for rows.Next() {
		var boardID string
		if err := rows.Scan(&boardID); err != nil {
			rows.Close()
			return dberr.Wrap(err, "scan deleted pin board")
		}
		counts[boardID]++
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return dberr.Wrap(err, "iterate deleted pins")
	}

	for boardID, n := range counts {
		if _, err := tx.Exec(ctx,
			`UPDATE board.boards SET pin_count = pin_count - $1 WHERE id = $2`, n, boardID,
		); err != nil {
			return dberr.Wrap(err, "decrement board pin count")
		}
	}
	return nil
}

func (r *repository) BulkEditPinFlags(ctx context.Context, pinIDs []string, mask int, addFlags bool) error {
	var query string
	if addFlags {
		query = `UPDATE board.pins SET flags = flags | $1, edited = NOW() AT TIME ZONE 'utc' WHERE id = ANY($2)`
	} else {
		query = `UPDATE board.pins SET flags = flags & ~$1, edited = NOW() AT TIME ZONE 'utc' WHERE id = ANY($2)`
	}
	_, err := r.pool.Exec(ctx, query, mask, pinIDs)
	return dberr.Wrap(err, "bulk edit pin flags")
}

func (r *repository) BulkEditPinColors(ctx context.Context, pinIDs []string, color string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE board.pins
		SET metadata = jsonb_set(COALESCE(metadata, '{}'::jsonb), '{color}', to_jsonb($1::text)),
			edited = NOW() AT TIME ZONE 'utc'
		WHERE id = ANY($2)`,
		color, pinIDs,
	)
	return dberr.Wrap(err, "bulk edit pin colors")
}

// pinOrderClause builds the two-level ORDER BY shared by ListPins and
// ListFavorites: flag bucket (archived, normal, pinned) primary, the
// requested created/edited column secondary.
func pinOrderClause(filter PinListFilter, flagsColumn string) string {
	sortColumn := "created"
	if filter.SortBy == SortPinEdited {
		sortColumn = "edited"
	}
	direction := "ASC"
	if filter.SortDown {
		direction = "DESC"
	}
	return fmt.Sprintf(`
		ORDER BY
			(CASE
				WHEN %[1]s & 4 = 4 THEN 2
				WHEN %[1]s & 2 = 2 THEN 0
				ELSE 1
			END) %[2]s, %[3]s %[2]s`, flagsColumn, direction, sortColumn)
}

func (r *repository) ListPins(ctx context.Context, callerID string, filter PinListFilter) ([]*Pin, error) {
	var query strings.Builder
	args := []any{callerID}
	argID := 2

	query.WriteString(`
		SELECT p.id, p.board_id, p.pin_type, p.content, p.creator_id, p.created, p.edited, p.flags, p.attachment_paths, p.metadata
		FROM board.pins p
		INNER JOIN board.board_perms bp ON bp.board_id = p.board_id AND bp.user_id = $1
		WHERE 1 = 1`)

	if filter.BoardID != "" {
		query.WriteString(fmt.Sprintf(" AND p.board_id = $%d", argID))
		args = append(args, filter.BoardID)
		argID++
	}
	if filter.Search != "" {
		query.WriteString(fmt.Sprintf(" AND p.content ILIKE '%%' || $%d || '%%'", argID))
		args = append(args, filter.Search)
		argID++
	}
	if filter.CreatorID != "" {
		query.WriteString(fmt.Sprintf(" AND p.creator_id = $%d", argID))
		args = append(args, filter.CreatorID)
		argID++
	}

	query.WriteString(pinOrderClause(filter, "p.flags"))
	query.WriteString(fmt.Sprintf(" OFFSET $%d LIMIT $%d", argID, argID+1))
	args = append(args, filter.Offset, filter.Limit)

	rows, err := r.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list pins")
	}
	defer rows.Close()

	return scanPins(rows)
}

func scanPins(rows pgx.Rows) ([]*Pin, error) {
	var pins []*Pin
	for rows.Next() {
		p := &Pin{}
		if err := rows.Scan(&p.ID, &p.BoardID, &p.Type, &p.Content, &p.CreatorID, &p.Created, &p.Edited, &p.Flags, &p.AttachmentPaths, &p.Metadata); err != nil {
			return nil, dberr.Wrap(err, "scan pin")
		}
		pins = append(pins, p)
	}
	return pins, rows.Err()
}

func (r *repository) ListPinHistory(ctx context.Context, pinID string, offset, limit int) ([]*PinHistory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, pin_id, editor_id, time, content, flags, attachment_paths, metadata
		FROM board.pin_history WHERE pin_id = $1
		ORDER BY time DESC OFFSET $2 LIMIT $3`,
		pinID, offset, limit,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "list pin history")
	}
	defer rows.Close()

	var history []*PinHistory
	for rows.Next() {
		h := &PinHistory{}
		if err := rows.Scan(&h.ID, &h.PinID, &h.EditorID, &h.Time, &h.Content, &h.Flags, &h.AttachmentPaths, &h.Metadata); err != nil {
			return nil, dberr.Wrap(err, "scan pin history")
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

func (r *repository) GetPinHistoryEntry(ctx context.Context, historyID int64) (*PinHistory, error) {
	h := &PinHistory{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, pin_id, editor_id, time, content, flags, attachment_paths, metadata
		FROM board.pin_history WHERE id = $1`, historyID,
	).Scan(&h.ID, &h.PinID, &h.EditorID, &h.Time, &h.Content, &h.Flags, &h.AttachmentPaths, &h.Metadata)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "get pin history entry")
	}
	return h, nil
}

// # Favorites

func (r *repository) AddFavorites(ctx context.Context, userID string, pinIDs []string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO board.favorites (user_id, pin_id)
		SELECT $1, id FROM unnest($2::text[]) AS id
		ON CONFLICT DO NOTHING`,
		userID, pinIDs,
	)
	return dberr.Wrap(err, "add favorites")
}

func (r *repository) RemoveFavorites(ctx context.Context, userID string, pinIDs []string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM board.favorites WHERE user_id = $1 AND pin_id = ANY($2)`, userID, pinIDs)
	return dberr.Wrap(err, "remove favorites")
}

func (r *repository) ListFavorites(ctx context.Context, callerID string, filter PinListFilter) ([]*Pin, error) {
	var query strings.Builder
	args := []any{callerID}
	argID := 2

	query.WriteString(`
		SELECT p.id, p.board_id, p.pin_type, p.content, p.creator_id, p.created, p.edited, p.flags, p.attachment_paths, p.metadata
		FROM board.pins p
		INNER JOIN board.favorites f ON f.pin_id = p.id AND f.user_id = $1
		WHERE 1 = 1`)

	if filter.BoardID != "" {
		query.WriteString(fmt.Sprintf(" AND p.board_id = $%d", argID))
		args = append(args, filter.BoardID)
		argID++
	}
	if filter.Search != "" {
		query.WriteString(fmt.Sprintf(" AND p.content ILIKE '%%' || $%d || '%%'", argID))
		args = append(args, filter.Search)
		argID++
	}

	query.WriteString(pinOrderClause(filter, "p.flags"))
	query.WriteString(fmt.Sprintf(" OFFSET $%d LIMIT $%d", argID, argID+1))
	args = append(args, filter.Offset, filter.Limit)

	rows, err := r.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list favorites")
	}
	defer rows.Close()

	return scanPins(rows)
}

func (r *repository) CheckFavorites(ctx context.Context, userID string, pinIDs []string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT pin_id FROM board.favorites WHERE user_id = $1 AND pin_id = ANY($2)`,
		userID, pinIDs,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "check favorites")
	}
	defer rows.Close()

	var favorited []string
	for rows.Next() {
		var pinID string
		if err := rows.Scan(&pinID); err != nil {
			return nil, dberr.Wrap(err, "scan checked favorite")
		}
		favorited = append(favorited, pinID)
	}
	return favorited, rows.Err()
}

func (r *repository) QueryBulkPerms(ctx context.Context, boardIDs []string) (map[string]perm.Level, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, MIN(perm_id) AS level, COUNT(*) AS n, COUNT(DISTINCT perm_id) AS distinct_levels
		FROM board.board_perms
		WHERE board_id = ANY($1)
		GROUP BY user_id`,
		boardIDs,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "query bulk perms")
	}
	defer rows.Close()

	total := len(boardIDs)
	result := make(map[string]perm.Level)

	for rows.Next() {
		var userID string
		var level, count, distinctLevels int
		if err := rows.Scan(&userID, &level, &count, &distinctLevels); err != nil {
			return nil, dberr.Wrap(err, "scan bulk perm")
		}
		// Only keep users present on every board in the list, holding the
		// same level everywhere (distinct_levels == 1 confirms that).
		if count == total && distinctLevels == 1 {
			result[userID] = perm.Level(level)
		}
	}
	return result, rows.Err()
}
