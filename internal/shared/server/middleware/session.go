package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/respond"
)

const (
	// SessionCookie carries the session id issued at login/signup.
	SessionCookie = "rb_session"
	// ThemeCookie carries the light/dark preference.
	ThemeCookie = "rb_theme"

	userIDKey       = "userId"
	userEmailKey    = "userEmail"
	userNameKey     = "userName"
	sessionTokenKey = "sessionToken"
)

// Identity is the signed-in user as seen by handlers.
type Identity struct {
	UserID string
	Email  string
	Name   string
}

// SessionResolver maps a session token to an identity.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (Identity, bool)
}

// Session resolves the session cookie or bearer token and stores the identity
// in context. Requests without a valid session continue anonymously.
func Session(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if resolver == nil || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		token := ""
		if authHeader := strings.TrimSpace(c.GetHeader("Authorization")); strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		}
		if token == "" {
			if cookie, err := c.Cookie(SessionCookie); err == nil {
				token = strings.TrimSpace(cookie)
			}
		}
		if token == "" {
			c.Next()
			return
		}

		identity, ok := resolver.Resolve(c.Request.Context(), token)
		if !ok {
			c.Next()
			return
		}
		c.Set(sessionTokenKey, token)
		c.Set(userIDKey, identity.UserID)
		if identity.Email != "" {
			c.Set(userEmailKey, identity.Email)
		}
		if identity.Name != "" {
			c.Set(userNameKey, identity.Name)
		}
		c.Next()
	}
}

// RequireSession rejects anonymous requests: JSON routes get a 401, page
// routes are redirected to the login page.
func RequireSession(asPage bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserIDFromContext(c) != "" {
			c.Next()
			return
		}
		if asPage {
			target := "/login"
			if next := c.Request.URL.RequestURI(); next != "" && next != "/" {
				target += "?next=" + url.QueryEscape(next)
			}
			c.Redirect(http.StatusSeeOther, target)
			c.Abort()
			return
		}
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
	}
}

// UserIDFromContext fetches the user ID set by the session middleware.
func UserIDFromContext(c *gin.Context) string {
	return stringFromContext(c, userIDKey)
}

// UserEmailFromContext fetches the user email set by the session middleware.
func UserEmailFromContext(c *gin.Context) string {
	return stringFromContext(c, userEmailKey)
}

// UserNameFromContext fetches the display name set by the session middleware.
func UserNameFromContext(c *gin.Context) string {
	return stringFromContext(c, userNameKey)
}

// SessionTokenFromContext returns the token the current session was resolved from.
func SessionTokenFromContext(c *gin.Context) string {
	return stringFromContext(c, sessionTokenKey)
}

// ThemeFromContext returns the theme cookie value, defaulting to light.
func ThemeFromContext(c *gin.Context) string {
	if c == nil {
		return "light"
	}
	if theme, err := c.Cookie(ThemeCookie); err == nil && theme == "dark" {
		return "dark"
	}
	return "light"
}

func stringFromContext(c *gin.Context, key string) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(key)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
