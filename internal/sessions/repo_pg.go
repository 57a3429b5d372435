package sessions

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, sess Session) error {
	const query = `
INSERT INTO sessions (token, user_id, email, name, remember_me, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		sess.Token,
		sess.UserID,
		sess.Email,
		nullableString(sess.Name),
		sess.RememberMe,
		sess.CreatedAt,
		sess.ExpiresAt,
	)
	return err
}

func (r *PGRepo) Get(ctx context.Context, token string, now time.Time) (Session, error) {
	const query = `
SELECT token, user_id, email, name, remember_me, created_at, expires_at
FROM sessions
WHERE token = $1 AND expires_at > $2
LIMIT 1`
	var sess Session
	var name sql.NullString
	err := r.DB.QueryRowContext(ctx, query, token, now).Scan(
		&sess.Token,
		&sess.UserID,
		&sess.Email,
		&name,
		&sess.RememberMe,
		&sess.CreatedAt,
		&sess.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	if name.Valid {
		sess.Name = name.String
	}
	return sess, nil
}

func (r *PGRepo) Delete(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}

func (r *PGRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ Repo = (*PGRepo)(nil)
