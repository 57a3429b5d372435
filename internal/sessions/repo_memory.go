package sessions

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo keeps sessions in process memory.
type MemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{sessions: make(map[string]Session)}
}

func (r *MemoryRepo) Create(ctx context.Context, sess Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if sess.Token == "" || sess.UserID == "" {
		return ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sess.Token] = sess
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, token string, now time.Time) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[token]
	if !ok || sess.Expired(now) {
		return Session{}, ErrNotFound
	}
	return sess, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
	return nil
}

func (r *MemoryRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for token, sess := range r.sessions {
		if sess.Expired(now) {
			delete(r.sessions, token)
			n++
		}
	}
	return n, nil
}

var _ Repo = (*MemoryRepo)(nil)
