package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// slidingWindow counts attempts per key within a trailing window.
type slidingWindow struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	hits   map[string][]time.Time
}

func newSlidingWindow(max int, window time.Duration) *slidingWindow {
	return &slidingWindow{max: max, window: window, hits: make(map[string][]time.Time)}
}

// allow records an attempt for key unless the window is already full.
func (w *slidingWindow) allow(key string, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	recent := prune(w.hits[key], now.Add(-w.window))
	if len(recent) >= w.max {
		w.hits[key] = recent
		return false
	}
	w.hits[key] = append(recent, now)
	return true
}

// sweep drops keys with no attempts inside the window.
func (w *slidingWindow) sweep(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := now.Add(-w.window)
	for key, ts := range w.hits {
		if recent := prune(ts, cutoff); len(recent) > 0 {
			w.hits[key] = recent
		} else {
			delete(w.hits, key)
		}
	}
}

func prune(ts []time.Time, cutoff time.Time) []time.Time {
	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// LoginRateLimit allows at most maxAttempts requests per client IP per window
// and answers 429 beyond that.
func LoginRateLimit(maxAttempts int, window time.Duration) gin.HandlerFunc {
	limiter := newSlidingWindow(maxAttempts, window)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for now := range ticker.C {
			limiter.sweep(now)
		}
	}()

	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP(), time.Now()) {
			abortWithError(c, http.StatusTooManyRequests, "too many login attempts, try again later")
			return
		}
		c.Next()
	}
}
