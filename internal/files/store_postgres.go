// Copyright (c) 2026 Hellomouse. All rights reserved.

package files

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

// NewStore constructs a PostgreSQL-backed file store.
func NewStore(pool *pgxpool.Pool) Store {
	return &repository{pool: pool}
}

func (r *repository) FileExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM user_files WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, dberr.Wrap(err, "file exists")
	}
	return exists, nil
}

func (r *repository) CreateFile(ctx context.Context, f *UserFile) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_files (id, user_id, original_name, file_extension, upload_date, file_size)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`,
		f.ID, f.UserID, f.OriginalName, f.Extension, f.UploadDate, f.FileSize,
	)
	return dberr.Wrap(err, "create file")
}

func (r *repository) GetFile(ctx context.Context, id string) (*UserFile, error) {
	f := &UserFile{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, original_name, file_extension, upload_date, file_size FROM user_files WHERE id = $1`,
		id,
	).Scan(&f.ID, &f.UserID, &f.OriginalName, &f.Extension, &f.UploadDate, &f.FileSize)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "get file")
	}
	return f, nil
}

func (r *repository) ListFiles(ctx context.Context, userID string, offset, limit int) ([]*UserFile, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, original_name, file_extension, upload_date, file_size
		FROM user_files WHERE user_id = $1
		ORDER BY upload_date DESC OFFSET $2 LIMIT $3`,
		userID, offset, limit,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "list files")
	}
	defer rows.Close()

	var out []*UserFile
	for rows.Next() {
		f := &UserFile{}
		if err := rows.Scan(&f.ID, &f.UserID, &f.OriginalName, &f.Extension, &f.UploadDate, &f.FileSize); err != nil {
			return nil, dberr.Wrap(err, "scan file")
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *repository) DeleteFile(ctx context.Context, userID, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM user_files WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, dberr.Wrap(err, "delete file")
	}
	return tag.RowsAffected() > 0, nil
}
