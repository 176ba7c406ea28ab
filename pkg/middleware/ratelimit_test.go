package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/donatetrack/donatetrack/pkg/config"
	"github.com/donatetrack/donatetrack/pkg/ratelimit"
)

// stubLimiter 返回预设判定结果
type stubLimiter struct {
	res   *ratelimit.Result
	err   error
	calls int
}

func (s *stubLimiter) Allow(ctx context.Context, key string, limit ratelimit.Limit) (*ratelimit.Result, error) {
	s.calls++
	return s.res, s.err
}

func newRateLimitRouter(limiter ratelimit.RateLimiter, cfg config.RateLimitConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(limiter, cfg))
	router.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, QPS: 50, Burst: 100}

	t.Run("allowed request passes with quota headers", func(t *testing.T) {
		limiter := &stubLimiter{res: &ratelimit.Result{
			Allowed:    true,
			Remaining:  99,
			ResetAfter: 2 * time.Second,
		}}
		router := newRateLimitRouter(limiter, cfg)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, limiter.calls)
		assert.Equal(t, "100", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "99", w.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Reset"))
	})

	t.Run("exhausted quota rejected with retry hint", func(t *testing.T) {
		limiter := &stubLimiter{res: &ratelimit.Result{
			Allowed:    false,
			RetryAfter: 3 * time.Second,
		}}
		router := newRateLimitRouter(limiter, cfg)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "3", w.Header().Get("Retry-After"))
	})

	t.Run("limiter failure fails open", func(t *testing.T) {
		limiter := &stubLimiter{err: context.DeadlineExceeded}
		router := newRateLimitRouter(limiter, cfg)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("disabled config skips the limiter", func(t *testing.T) {
		limiter := &stubLimiter{}
		router := newRateLimitRouter(limiter, config.RateLimitConfig{Enabled: false})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Zero(t, limiter.calls)
	})
}
