package sessions

import (
	"strings"
	"time"

	"resume-builder/internal/shared/server/middleware"
)

// Session is an issued login. Credentials are never verified or stored.
type Session struct {
	Token      string    `json:"token"`
	UserID     string    `json:"userId"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	RememberMe bool      `json:"rememberMe"`
	CreatedAt  time.Time `json:"createdAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Identity converts the session to the middleware's view of the user.
func (s Session) Identity() middleware.Identity {
	return middleware.Identity{UserID: s.UserID, Email: s.Email, Name: s.DisplayName()}
}

// DisplayName falls back to the local part of the email.
func (s Session) DisplayName() string {
	if name := strings.TrimSpace(s.Name); name != "" {
		return name
	}
	local, _, _ := strings.Cut(s.Email, "@")
	return local
}
