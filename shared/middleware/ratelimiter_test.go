package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quillpress/quill/shared/middleware/ratelimiter"
	"github.com/stretchr/testify/assert"
)

func TestRateLimit(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	serve := func(h http.Handler) int {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
		return w.Code
	}

	t.Run("allows request within rate limit", func(t *testing.T) {
		rl := ratelimiter.New(1, 1, time.Minute)
		defer rl.Stop()
		h := RateLimit(rl, func(r *http.Request) (string, error) { return "session1", nil })(ok)

		assert.Equal(t, http.StatusOK, serve(h))
	})

	t.Run("blocks request exceeding rate limit", func(t *testing.T) {
		rl := ratelimiter.New(0.001, 1, time.Minute)
		defer rl.Stop()
		h := RateLimit(rl, func(r *http.Request) (string, error) { return "session1", nil })(ok)

		assert.Equal(t, http.StatusOK, serve(h))
		assert.Equal(t, http.StatusTooManyRequests, serve(h))
	})

	t.Run("error getting identity", func(t *testing.T) {
		rl := ratelimiter.New(1, 1, time.Minute)
		defer rl.Stop()
		h := RateLimit(rl, func(r *http.Request) (string, error) { return "", errors.New("no session") })(ok)

		assert.Equal(t, http.StatusInternalServerError, serve(h))
	})

	t.Run("nil limiter disables limiting", func(t *testing.T) {
		h := RateLimit(nil, nil)(ok)
		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, serve(h))
		}
	})
}
