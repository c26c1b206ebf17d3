package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
}

func do(h http.Handler, remote string) int {
	req := httptest.NewRequest(http.MethodPost, "/create-account", nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimiter_BurstThenReject(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	h := rl.Handler(okHandler())

	assert.Equal(t, http.StatusOK, do(h, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, do(h, "10.0.0.1:1235"))
	assert.Equal(t, http.StatusTooManyRequests, do(h, "10.0.0.1:1236"))

	// other clients have their own bucket
	assert.Equal(t, http.StatusOK, do(h, "10.0.0.2:1234"))
}

func TestRateLimiter_CleanupDropsIdle(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Now()
	rl.now = func() time.Time { return now }
	rl.getLimiter("a")

	now = now.Add(11 * time.Minute)
	rl.getLimiter("b")
	rl.Cleanup()

	assert.NotContains(t, rl.limiters, "a")
	assert.Contains(t, rl.limiters, "b")
}

func TestRateLimiter_KeysOnPeerNotForwardedHeader(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	rewrite := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.RemoteAddr = r.Header.Get("X-Forwarded-For")
			next.ServeHTTP(w, r)
		})
	}
	h := PeerAddr(rewrite(rl.Handler(okHandler())))

	send := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/create-account", nil)
		req.RemoteAddr = "10.0.0.9:5000"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.2"))
}
