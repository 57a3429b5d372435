package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimitExportStricterThanDefault(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Next()
	})
	r.Use(RateLimit(RateLimitConfig{
		GroupFor: GroupByRoute(map[string]string{
			"GET /resumes/:id/pdf": RateGroupExport,
		}),
		Limiter: limiter,
		Rules: map[string]RateLimitRule{
			"DEFAULT":       {Rate: 5, Burst: 10},
			RateGroupExport: {Rate: 1, Burst: 2},
		},
	}))
	r.GET("/resumes/:id/pdf", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/resumes/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/resumes/doc-1/pdf", nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("export request %d expected 200, got %d", i+1, resp.Code)
		}
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/resumes/doc-1/pdf", nil))
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("export request 3 expected 429, got %d", resp.Code)
	}

	for i := 0; i < 5; i++ {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/resumes/doc-1", nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("preview request %d expected 200, got %d", i+1, resp.Code)
		}
	}
}

func TestRateLimit429IncludesRetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })

	r := gin.New()
	r.Use(RateLimit(RateLimitConfig{
		DefaultGroup: RateGroupWrite,
		Limiter:      limiter,
		Rules: map[string]RateLimitRule{
			RateGroupWrite: {Rate: 1, Burst: 1},
		},
	}))
	r.POST("/api/v1/resumes", func(c *gin.Context) { c.Status(http.StatusCreated) })

	resp1 := httptest.NewRecorder()
	r.ServeHTTP(resp1, httptest.NewRequest(http.MethodPost, "/api/v1/resumes", nil))
	if resp1.Code != http.StatusCreated {
		t.Fatalf("expected first request 201, got %d", resp1.Code)
	}

	resp2 := httptest.NewRecorder()
	r.ServeHTTP(resp2, httptest.NewRequest(http.MethodPost, "/api/v1/resumes", nil))
	if resp2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp2.Code)
	}
	if resp2.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected Retry-After 1, got %q", resp2.Header().Get("Retry-After"))
	}

	var payload struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp2.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Error.Code != "rate_limited" {
		t.Fatalf("expected rate_limited, got %q", payload.Error.Code)
	}
	if payload.Error.Details["retryAfterMs"] != float64(1000) {
		t.Fatalf("expected retryAfterMs 1000, got %v", payload.Error.Details["retryAfterMs"])
	}
}

func TestRateLimiterRefillsOverTime(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	rule := RateLimitRule{Rate: 2, Burst: 1}

	if ok, _ := limiter.Allow("k", rule); !ok {
		t.Fatalf("expected first token")
	}
	ok, wait := limiter.Allow("k", rule)
	if ok {
		t.Fatalf("expected bucket to be empty")
	}
	if wait != 500*time.Millisecond {
		t.Fatalf("expected 500ms wait, got %s", wait)
	}
	now = now.Add(500 * time.Millisecond)
	if ok, _ := limiter.Allow("k", rule); !ok {
		t.Fatalf("expected refilled token")
	}
}

func TestRateLimiterPrunesIdleBuckets(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	rule := RateLimitRule{Rate: 1, Burst: 1}

	limiter.Allow("a|WRITE", rule)
	limiter.Allow("b|WRITE", rule)
	if len(limiter.buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(limiter.buckets))
	}

	now = now.Add(idleBucketTTL + time.Minute)
	if ok, _ := limiter.Allow("c|WRITE", rule); !ok {
		t.Fatalf("expected fresh bucket to allow")
	}
	if len(limiter.buckets) != 1 {
		t.Fatalf("expected idle buckets to be pruned, got %d", len(limiter.buckets))
	}
}

func TestRateLimitPagesGetHTML(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	r := gin.New()
	r.Use(RateLimit(RateLimitConfig{
		GroupFor: GroupByRoute(map[string]string{"POST /builder": RateGroupWrite}),
		Limiter:  NewRateLimiter(func() time.Time { return now }),
		Rules:    map[string]RateLimitRule{RateGroupWrite: {Rate: 1, Burst: 1}},
	}))
	r.POST("/builder", func(c *gin.Context) { c.Status(http.StatusOK) })

	var resp *httptest.ResponseRecorder
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/builder", nil)
		req.Header.Set("Accept", "text/html")
		resp = httptest.NewRecorder()
		r.ServeHTTP(resp, req)
	}
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Fatalf("expected html body, got %q", got)
	}
	if resp.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected Retry-After 1, got %q", resp.Header().Get("Retry-After"))
	}
}
