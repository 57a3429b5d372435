package sessions

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
)

// SetCookie writes the session cookie. Remembered sessions persist until
// expiry, others last for the browser session.
func SetCookie(c *gin.Context, sess Session, secure bool) {
	maxAge := 0
	if sess.RememberMe {
		maxAge = int(time.Until(sess.ExpiresAt).Seconds())
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, sess.Token, maxAge, "/", "", secure, true)
}

// ClearCookie expires the session cookie.
func ClearCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", secure, true)
}

// ToggleTheme flips the theme cookie and returns the new value.
func ToggleTheme(c *gin.Context, secure bool) string {
	next := "dark"
	if middleware.ThemeFromContext(c) == "dark" {
		next = "light"
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.ThemeCookie, next, int((365 * 24 * time.Hour).Seconds()), "/", "", secure, false)
	return next
}
