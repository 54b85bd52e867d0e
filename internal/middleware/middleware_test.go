package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() { gin.SetMode(gin.TestMode) }

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/api/state", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/socket.io/", func(c *gin.Context) { c.String(http.StatusOK, "poll") })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "203.0.113.7:5000"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := newRouter(RateLimit(rdb, 3, nil))
	limited := 0
	for range 10 {
		if get(r, "/api/state").Code == http.StatusTooManyRequests {
			limited++
		}
	}
	// the ten requests may straddle a one-second boundary
	if limited < 4 {
		t.Fatalf("limited %d of 10 requests, want at least 4", limited)
	}
}

func TestRateLimitPassesWithoutRedis(t *testing.T) {
	r := newRouter(RateLimit(nil, 1, nil))
	for range 5 {
		if w := get(r, "/api/state"); w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	r := newRouter(RateLimit(rdb, 1, nil))
	for range 3 {
		if w := get(r, "/api/state"); w.Code != http.StatusOK {
			t.Fatalf("status = %d with Redis down", w.Code)
		}
	}
}

func TestLoggerLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := newRouter(Logger(zap.New(core)))

	get(r, "/api/state")
	get(r, "/socket.io/")
	get(r, "/boom")

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	want := []zapcore.Level{zapcore.InfoLevel, zapcore.DebugLevel, zapcore.ErrorLevel}
	for i, e := range entries {
		if e.Level != want[i] {
			t.Errorf("entry %d (%v) level = %v, want %v", i, e.ContextMap()["path"], e.Level, want[i])
		}
		if e.ContextMap()["ip"] != "203.0.113.7" {
			t.Errorf("entry %d ip = %v", i, e.ContextMap()["ip"])
		}
	}
}
