package guard

import (
	"context"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"orghub/backend/internal/authz"
)

// Limiter answers whether a request under the given key may proceed.
// Implementations count per fixed window: the first request of a window
// starts it, and the count resets when the window elapses.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// WindowLimiter is an in-memory fixed-window counter. Suitable for a single
// process; use RedisLimiter when running more than one replica.
type WindowLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*windowEntry
}

type windowEntry struct {
	count int
	start time.Time
}

// NewWindowLimiter returns a limiter allowing limit requests per window per
// key.
func NewWindowLimiter(limit int, window time.Duration) *WindowLimiter {
	return &WindowLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		entries: make(map[string]*windowEntry),
	}
}

// Allow counts the request against key's current window. Never returns an
// error.
func (l *WindowLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok || now.Sub(e.start) >= l.window {
		l.entries[key] = &windowEntry{count: 1, start: now}
		return true, nil
	}
	if e.count >= l.limit {
		return false, nil
	}
	e.count++
	return true, nil
}

// Cleanup removes expired windows. Called periodically via StartCleanup.
func (l *WindowLimiter) Cleanup() {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, e := range l.entries {
		if now.Sub(e.start) >= l.window {
			delete(l.entries, key)
		}
	}
}

// StartCleanup starts a background goroutine that prunes expired windows
// until ctx is done.
func (l *WindowLimiter) StartCleanup(ctx context.Context) {
	ticker := time.NewTicker(l.window)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// RateLimit counts each request against the caller's key: the credential
// subject when authenticated, the client IP otherwise. failClosed decides
// what happens when the limiter itself errors (e.g. Redis down): true denies
// the request, false lets it through.
func RateLimit(limiter Limiter, failClosed bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := limiterKey(r)
			ok, err := limiter.Allow(r.Context(), key)
			if err != nil {
				log.Printf("guard: rate limiter error for %s: %v", key, err)
				if failClosed {
					Deny(w, r, authz.ReasonRateLimited)
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				Deny(w, r, authz.ReasonRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func limiterKey(r *http.Request) string {
	if cred, ok := GetCredential(r.Context()); ok && cred != nil {
		return "user:" + cred.SubjectID
	}
	return "ip:" + ClientIP(r)
}

// ClientIP returns the client IP from forwarding headers or the remote
// address, or "unknown".
func ClientIP(r *http.Request) string {
	if s := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); s != "" {
		if i := strings.Index(s, ","); i > 0 {
			s = strings.TrimSpace(s[:i])
		}
		return s
	}
	if s := strings.TrimSpace(r.Header.Get("X-Real-IP")); s != "" {
		return s
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
