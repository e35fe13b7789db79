// Copyright (c) 2026 Hellomouse. All rights reserved.

package jobqueue

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hellomouse/hellomouse-apps-api/internal/platform/constants"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/dberr"
	"github.com/hellomouse/hellomouse-apps-api/pkg/uuid"
)

// repository implements [Store] using pgx. Enqueue's NOTIFY rides the
// same transaction as the inserts, so listeners only ever observe
// notifications for jobs that actually committed.
type repository struct {
	pool *pgxpool.Pool
}

// NewStore constructs a PostgreSQL-backed job queue store.
func NewStore(pool *pgxpool.Pool) Store {
	return &repository{pool: pool}
}

func (r *repository) jobExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM site.status WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, dberr.Wrap(err, "job exists")
	}
	return exists, nil
}

func (r *repository) Enqueue(ctx context.Context, name, data, requestor string, priority int) (string, error) {
	id, err := uuid.NewV4WithRetry(ctx, r.jobExists)
	if err != nil {
		return "", err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", dberr.Wrap(err, "begin enqueue")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO site.queue (id, cmd, data, priority) VALUES ($1, $2, $3, $4)`,
		id, name, data, priority,
	); err != nil {
		return "", dberr.Wrap(err, "insert queue row")
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO site.status (id, created, finished, name, data, requestor, priority, status)
		VALUES ($1, NOW() AT TIME ZONE 'utc', NULL, $2, $3, $4, $5, $6)`,
		id, name, data, requestor, priority, StatusQueued,
	); err != nil {
		return "", dberr.Wrap(err, "insert status row")
	}

	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, constants.NotifyChannel, id); err != nil {
		return "", dberr.Wrap(err, "notify job enqueue")
	}

	if err := tx.Commit(ctx); err != nil {
		return "", dberr.Wrap(err, "commit enqueue")
	}
	return id, nil
}

func (r *repository) ListStatus(ctx context.Context, requestor string, offset, limit int) ([]*Job, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, created, finished, name, data, requestor, priority, status
		FROM site.status
		WHERE requestor = $1
		ORDER BY created DESC
		OFFSET $2 LIMIT $3`,
		requestor, offset, limit,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "list status")
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		j := &Job{}
		if err := rows.Scan(&j.ID, &j.Created, &j.Finished, &j.Name, &j.Data, &j.Requestor, &j.Priority, &j.Status); err != nil {
			return nil, dberr.Wrap(err, "scan job")
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}
