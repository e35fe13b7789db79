// Copyright (c) 2026 Hellomouse. All rights reserved.

package link

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hellomouse/hellomouse-apps-api/internal/platform/dberr"
)

// repository implements [Store] using pgx.
type repository struct {
	pool *pgxpool.Pool
}

// NewStore constructs a PostgreSQL-backed link store.
func NewStore(pool *pgxpool.Pool) Store {
	return &repository{pool: pool}
}

func (r *repository) AddLink(ctx context.Context, creatorID, url string) (int, error) {
	var id int
	err := r.pool.QueryRow(ctx,
		`INSERT INTO links (url, creator_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING RETURNING id`,
		url, creatorID,
	).Scan(&id)

	if errors.Is(err, pgx.ErrNoRows) {
		return -1, nil
	}
	if err != nil {
		return 0, dberr.Wrap(err, "add link")
	}
	return id, nil
}

func (r *repository) DeleteLink(ctx context.Context, creatorID string, id int) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM links WHERE id = $1 AND creator_id = $2`, id, creatorID)
	return dberr.Wrap(err, "delete link")
}

func (r *repository) ListLinks(ctx context.Context, userID string) ([]*Link, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, url, creator_id FROM links
		WHERE creator_id = $1
		ORDER BY url DESC
		LIMIT $2`,
		userID, MaxLinksReturned,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "list links")
	}
	defer rows.Close()

	var links []*Link
	for rows.Next() {
		l := &Link{}
		if err := rows.Scan(&l.ID, &l.URL, &l.CreatorID); err != nil {
			return nil, dberr.Wrap(err, "scan link")
		}
		links = append(links, l)
	}
	return links, rows.Err()
}
