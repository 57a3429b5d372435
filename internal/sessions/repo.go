package sessions

import (
	"context"
	"time"
)

// Repo persists sessions.
type Repo interface {
	Create(ctx context.Context, sess Session) error
	// Get returns ErrNotFound for unknown or expired tokens.
	Get(ctx context.Context, token string, now time.Time) (Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
