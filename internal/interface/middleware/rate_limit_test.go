package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func newLimitedRouter(t *testing.T, max int, window time.Duration, allow AllowFunc) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := gin.New()
	r.GET("/ping", RateLimit(rdb, max, window, KeyByIP(), allow), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r, mr
}

func hit(r *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_BlocksOverLimitAndResets(t *testing.T) {
	r, mr := newLimitedRouter(t, 2, time.Minute, nil)

	for i := 0; i < 2; i++ {
		if w := hit(r, "203.0.113.7:1234"); w.Code != http.StatusNoContent {
			t.Fatalf("request %d = %d", i+1, w.Code)
		}
	}
	w := hit(r, "203.0.113.7:1234")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("third request = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" || w.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("headers = %v", w.Header())
	}
	if w := hit(r, "198.51.100.9:1234"); w.Code != http.StatusNoContent {
		t.Fatalf("other ip = %d", w.Code)
	}

	mr.FastForward(time.Minute + time.Second)
	if w := hit(r, "203.0.113.7:1234"); w.Code != http.StatusNoContent {
		t.Fatalf("after window = %d", w.Code)
	}
}

func TestRateLimit_AllowPrivateIPBypasses(t *testing.T) {
	r, _ := newLimitedRouter(t, 1, time.Minute, AllowPrivateIP())
	for i := 0; i < 3; i++ {
		if w := hit(r, "10.0.0.5:1234"); w.Code != http.StatusNoContent {
			t.Fatalf("private request %d = %d", i+1, w.Code)
		}
	}
}

func TestRateLimit_FailsOpenWhenRedisDown(t *testing.T) {
	r, mr := newLimitedRouter(t, 1, time.Minute, nil)
	mr.Close()
	for i := 0; i < 3; i++ {
		if w := hit(r, "203.0.113.7:1234"); w.Code != http.StatusNoContent {
			t.Fatalf("request %d = %d, want pass-through", i+1, w.Code)
		}
	}
}
