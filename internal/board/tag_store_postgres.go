// Copyright (c) 2026 Hellomouse. All rights reserved.

package board

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/hellomouse/hellomouse-apps-api/internal/platform/dberr"
)

func (r *repository) CreateTag(ctx context.Context, t *Tag) (*Tag, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO board.tags (name, color, creator_id) VALUES ($1, $2, $3) RETURNING id`,
		t.Name, t.Color, t.CreatorID,
	).Scan(&t.ID)
	if err != nil {
		return nil, dberr.Wrap(err, "create tag")
	}
	return r.GetTag(ctx, t.ID)
}

func (r *repository) GetTag(ctx context.Context, tagID int64) (*Tag, error) {
	t := &Tag{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, color, creator_id FROM board.tags WHERE id = $1`, tagID,
	).Scan(&t.ID, &t.Name, &t.Color, &t.CreatorID)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "get tag")
	}

	boardIDs, err := r.tagBoardIDs(ctx, []int64{tagID})
	if err != nil {
		return nil, err
	}
	t.BoardIDs = boardIDs[tagID]
	return t, nil
}

func (r *repository) ModifyTag(ctx context.Context, tagID int64, update TagUpdate) (*Tag, error) {
	if update.Name != nil {
		if _, err := r.pool.Exec(ctx, `UPDATE board.tags SET name = $1 WHERE id = $2`, *update.Name, tagID); err != nil {
			return nil, dberr.Wrap(err, "modify tag name")
		}
	}
	if update.Color != nil {
		if _, err := r.pool.Exec(ctx, `UPDATE board.tags SET color = $1 WHERE id = $2`, *update.Color, tagID); err != nil {
			return nil, dberr.Wrap(err, "modify tag color")
		}
	}
	return r.GetTag(ctx, tagID)
}

// DeleteTags restricts tagIDs to ones creatorID actually owns before
// removing memberships and rows, so a caller can never delete another
// user's tag by id alone.
func (r *repository) DeleteTags(ctx context.Context, creatorID string, tagIDs []int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "begin delete tags")
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`SELECT id FROM board.tags WHERE id = ANY($1) AND creator_id = $2`, tagIDs, creatorID)
	if err != nil {
		return dberr.Wrap(err, "select owned tags")
	}
	var owned []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return dberr.Wrap(err, "scan owned tag")
		}
		owned = append(owned, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return dberr.Wrap(err, "iterate owned tags")
	}
	if len(owned) == 0 {
		return dberr.Wrap(tx.Commit(ctx), "commit delete tags (none owned)")
	}

	if _, err := tx.Exec(ctx, `DELETE FROM board.tag_ids WHERE tag_id = ANY($1)`, owned); err != nil {
		return dberr.Wrap(err, "delete tag memberships")
	}
	if _, err := tx.Exec(ctx, `DELETE FROM board.tags WHERE id = ANY($1)`, owned); err != nil {
		return dberr.Wrap(err, "delete tags")
	}

	return dberr.Wrap(tx.Commit(ctx), "commit delete tags")
}

func (r *repository) ListTags(ctx context.Context, creatorID string) ([]*Tag, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, color, creator_id FROM board.tags
		WHERE creator_id = $1
		ORDER BY name_lower ASC
		LIMIT $2`,
		creatorID, MaxTagsReturned,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "list tags")
	}
	defer rows.Close()

	var tags []*Tag
	var ids []int64
	for rows.Next() {
		t := &Tag{}
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.CreatorID); err != nil {
			return nil, dberr.Wrap(err, "scan tag")
		}
		tags = append(tags, t)
		ids = append(ids, t.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate tags")
	}

	boardIDs, err := r.tagBoardIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, t := range tags {
		t.BoardIDs = boardIDs[t.ID]
	}
	return tags, nil
}

// tagBoardIDs batches the board id lookup for a set of tags into one query.
func (r *repository) tagBoardIDs(ctx context.Context, tagIDs []int64) (map[int64][]string, error) {
	result := make(map[int64][]string, len(tagIDs))
	if len(tagIDs) == 0 {
		return result, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT tag_id, board_id FROM board.tag_ids WHERE tag_id = ANY($1)`, tagIDs)
	if err != nil {
		return nil, dberr.Wrap(err, "tag board ids")
	}
	defer rows.Close()

	for rows.Next() {
		var tagID int64
		var boardID string
		if err := rows.Scan(&tagID, &boardID); err != nil {
			return nil, dberr.Wrap(err, "scan tag board id")
		}
		result[tagID] = append(result[tagID], boardID)
	}
	return result, rows.Err()
}

func (r *repository) SetTagBoards(ctx context.Context, tagID int64, boardIDs []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "begin set tag boards")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM board.tag_ids WHERE tag_id = $1`, tagID); err != nil {
		return dberr.Wrap(err, "clear tag boards")
	}
	if len(boardIDs) > 0 {
		if _, err := tx.Exec(ctx, `
			INSERT INTO board.tag_ids (tag_id, board_id)
			SELECT $1, id FROM unnest($2::text[]) AS id
			ON CONFLICT DO NOTHING`,
			tagID, boardIDs,
		); err != nil {
			return dberr.Wrap(err, "insert tag boards")
		}
	}
	return dberr.Wrap(tx.Commit(ctx), "commit set tag boards")
}

// MoveBoardTag enforces single-tag-per-board membership: boardID is
// removed from every tag creatorID owns, then added to exactly
// targetTagID.
func (r *repository) MoveBoardTag(ctx context.Context, creatorID, boardID string, targetTagID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "begin move board tag")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		DELETE FROM board.tag_ids
		WHERE board_id = $1 AND tag_id IN (SELECT id FROM board.tags WHERE creator_id = $2)`,
		boardID, creatorID,
	); err != nil {
		return dberr.Wrap(err, "clear board's tag memberships")
	}

	if targetTagID != 0 {
		if _, err := tx.Exec(ctx, `
			INSERT INTO board.tag_ids (tag_id, board_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`,
			targetTagID, boardID,
		); err != nil {
			return dberr.Wrap(err, "insert target tag membership")
		}
	}

	return dberr.Wrap(tx.Commit(ctx), "commit move board tag")
}

func (r *repository) BulkEditTagColors(ctx context.Context, creatorID string, tagIDs []int64, color string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE board.tags SET color = $1 WHERE id = ANY($2) AND creator_id = $3`,
		color, tagIDs, creatorID,
	)
	return dberr.Wrap(err, "bulk edit tag colors")
}
