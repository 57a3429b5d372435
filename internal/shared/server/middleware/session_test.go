package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type staticResolver map[string]Identity

func (r staticResolver) Resolve(_ context.Context, token string) (Identity, bool) {
	id, ok := r[token]
	return id, ok
}

func TestSessionResolvesCookieAndBearer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resolver := staticResolver{"tok-1": {UserID: "user-1", Email: "a@example.com", Name: "Ada"}}

	router := gin.New()
	router.Use(Session(resolver))
	router.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, UserIDFromContext(c)+"|"+UserEmailFromContext(c)+"|"+UserNameFromContext(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "tok-1"})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if got := resp.Body.String(); got != "user-1|a@example.com|Ada" {
		t.Fatalf("unexpected identity from cookie: %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if got := resp.Body.String(); got != "user-1|a@example.com|Ada" {
		t.Fatalf("unexpected identity from bearer: %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "unknown"})
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if got := resp.Body.String(); got != "||" {
		t.Fatalf("expected anonymous request, got %q", got)
	}
}

func TestRequireSessionRedirectsPagesAndRejectsJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Session(staticResolver{}))
	router.GET("/builder", RequireSession(true), func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/api/v1/resumes", RequireSession(false), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/builder?template=academic", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.Code)
	}
	if loc := resp.Header().Get("Location"); loc != "/login?next=%2Fbuilder%3Ftemplate%3Dacademic" {
		t.Fatalf("unexpected redirect %q", loc)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/resumes", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestThemeFromContextDefaultsToLight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, ThemeFromContext(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Body.String() != "light" {
		t.Fatalf("expected light, got %s", resp.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: ThemeCookie, Value: "dark"})
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Body.String() != "dark" {
		t.Fatalf("expected dark, got %s", resp.Body.String())
	}
}
