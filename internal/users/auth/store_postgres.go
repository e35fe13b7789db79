// Copyright (c) 2026 Hellomouse. All rights reserved.

package auth

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hellomouse/hellomouse-apps-api/internal/platform/constants"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/dberr"
	"github.com/hellomouse/hellomouse-apps-api/pkg/slug"
)

// repository implements [Store] using pgx against the public schema.
type repository struct {
	pool *pgxpool.Pool
}

// NewStore constructs a PostgreSQL-backed user store.
func NewStore(pool *pgxpool.Pool) Store {
	return &repository{pool: pool}
}

func (r *repository) GetUser(ctx context.Context, id string) (*User, error) {
	u := &User{}
	var settings []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, display_name, profile_picture_url, settings, password_hash, created
		 FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.DisplayName, &u.ProfilePictureURL, &settings, &u.PasswordHash, &u.Created)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "get user")
	}
	u.Settings = settings
	return u, nil
}

func (r *repository) GetPasswordHash(ctx context.Context, id string) (string, error) {
	var hash string
	err := r.pool.QueryRow(ctx, `SELECT password_hash FROM users WHERE id = $1`, id).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", dberr.Wrap(err, "get password hash")
	}
	return hash, nil
}

func (r *repository) CreateUser(ctx context.Context, u *User) error {
	settings := u.Settings
	if settings == nil {
		settings = json.RawMessage("{}")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, display_name, profile_picture_url, settings, password_hash, created)
		VALUES ($1, $2, $3, $4, $5, NOW() AT TIME ZONE 'utc')`,
		u.ID, u.DisplayName, u.ProfilePictureURL, settings, u.PasswordHash,
	)
	return dberr.Wrap(err, "create user")
}

func (r *repository) UpdateSettings(ctx context.Context, id string, settings json.RawMessage) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET settings = $1 WHERE id = $2`, settings, id)
	if err != nil {
		return dberr.Wrap(err, "update settings")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (r *repository) ChangePassword(ctx context.Context, id, newHash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, newHash, id)
	if err != nil {
		return dberr.Wrap(err, "change password")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteUser(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return dberr.Wrap(err, "delete user")
}

// RecordLoginAttempt appends a row, then prunes the table to the most
// recent [constants.LoginAttemptLogCap] rows in the same transaction.
func (r *repository) RecordLoginAttempt(ctx context.Context, attempt *LoginAttempt) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "begin login attempt")
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO login_attempts (username, ip, success, created)
		VALUES ($1, $2, $3, NOW() AT TIME ZONE 'utc')`,
		attempt.Username, attempt.IP, attempt.Success,
	)
	if err != nil {
		return dberr.Wrap(err, "insert login attempt")
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM login_attempts
		WHERE id NOT IN (
			SELECT id FROM login_attempts ORDER BY created DESC, id DESC LIMIT $1
		)`,
		constants.LoginAttemptLogCap,
	)
	if err != nil {
		return dberr.Wrap(err, "prune login attempts")
	}

	return dberr.Wrap(tx.Commit(ctx), "commit login attempt")
}

func (r *repository) GetUsersBatch(ctx context.Context, ids []string) ([]*User, error) {
	if len(ids) == 0 {
		return []*User{}, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, display_name, profile_picture_url FROM users WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get users batch")
	}
	defer rows.Close()

	users := []*User{}
	for rows.Next() {
		u := &User{}
		if err := rows.Scan(&u.ID, &u.DisplayName, &u.ProfilePictureURL); err != nil {
			return nil, dberr.Wrap(err, "scan user")
		}
		users = append(users, u)
	}
	return users, dberr.Wrap(rows.Err(), "iterate users batch")
}

func (r *repository) SearchUsers(ctx context.Context, filter string) ([]*User, error) {
	pattern := "%" + slug.Fold(filter) + "%"
	rows, err := r.pool.Query(ctx, `
		SELECT id, display_name, profile_picture_url FROM users
		WHERE lower(id) LIKE $1 OR lower(display_name) LIKE $1
		ORDER BY display_name
		LIMIT 50`,
		pattern,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "search users")
	}
	defer rows.Close()

	users := []*User{}
	for rows.Next() {
		u := &User{}
		if err := rows.Scan(&u.ID, &u.DisplayName, &u.ProfilePictureURL); err != nil {
			return nil, dberr.Wrap(err, "scan user")
		}
		users = append(users, u)
	}
	return users, dberr.Wrap(rows.Err(), "iterate search users")
}
