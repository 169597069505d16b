package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"recipe-manager/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.POST("/echo", func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			c.String(http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		c.String(http.StatusOK, string(body))
	})
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	r.ServeHTTP(w, req)
	return w
}

func TestRecovery(t *testing.T) {
	r := newEngine(Recovery(), Logger())
	w := do(r, http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), common.ErrCodeInternalError)
}

func TestTimeout(t *testing.T) {
	r := newEngine(Timeout(20 * time.Millisecond))
	w := do(r, http.MethodGet, "/slow", "")
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)

	w = do(r, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBodySizeLimit(t *testing.T) {
	r := newEngine(BodySizeLimit(8))

	w := do(r, http.MethodPost, "/echo", "short")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/echo", "definitely too long")
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "BODY_TOO_LARGE")
}

func TestRateLimiter_Refill(t *testing.T) {
	now := time.Now()
	rl := NewRateLimiter(2, time.Second)
	rl.now = func() time.Time { return now }
	rl.lastTime = now

	assert.True(t, rl.Allow())
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())

	now = now.Add(600 * time.Millisecond)
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())
}

func TestRateLimit_Middleware(t *testing.T) {
	r := newEngine(RateLimit(1, time.Hour))

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "").Code)
	w := do(r, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3600", w.Header().Get("Retry-After"))
}

func TestDeduplication(t *testing.T) {
	r := newEngine(Deduplication(time.Minute))

	w := do(r, http.MethodPost, "/echo", "Pollo al limone")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Pollo al limone", w.Body.String())

	w = do(r, http.MethodPost, "/echo", "Pollo al limone")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = do(r, http.MethodPost, "/echo", "Zuppa di ceci")
	assert.Equal(t, http.StatusOK, w.Code)

	// GET 不去重
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "").Code)
}

func TestDeduplicator_Expiry(t *testing.T) {
	d := &deduplicator{window: time.Second, requests: map[string]time.Time{}, lastGC: time.Now()}
	now := time.Now()

	assert.False(t, d.seen("a", now))
	assert.True(t, d.seen("a", now.Add(500*time.Millisecond)))
	assert.False(t, d.seen("a", now.Add(2*time.Second)))

	// 過期記錄會被清理
	d.seen("b", now.Add(30*time.Second))
	assert.NotContains(t, d.requests, "a")
}

func TestMetrics_PassThrough(t *testing.T) {
	r := newEngine(Metrics())
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/nope", "").Code)
}

func TestTimeout_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(0))
	r.GET("/ctx", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		c.JSON(http.StatusOK, gin.H{"deadline": ok})
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ctx", nil).WithContext(context.Background())
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"deadline":false}`, w.Body.String())
}
