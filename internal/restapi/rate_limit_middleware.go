package restapi

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"fleetpulse.opentransit.org/internal/clock"
)

// rateLimitClient tracks the limiter and its last usage time so inactive
// clients can be evicted without disrupting active ones.
type rateLimitClient struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // Unix nanoseconds
}

// RateLimitMiddleware provides per-client rate limiting keyed on the
// caller's IP address.
type RateLimitMiddleware struct {
	limiters    map[string]*rateLimitClient
	mu          sync.RWMutex
	rateLimit   rate.Limit
	burstSize   int
	cleanupTick *time.Ticker
	stopChan    chan struct{}
	stopOnce    sync.Once
	clock       clock.Clock
}

// NewRateLimitMiddleware creates a new rate limiting middleware allowing
// ratePerSecond requests per second per client.
func NewRateLimitMiddleware(ratePerSecond int, clock clock.Clock) *RateLimitMiddleware {
	middleware := &RateLimitMiddleware{
		limiters:    make(map[string]*rateLimitClient),
		rateLimit:   rate.Limit(ratePerSecond),
		burstSize:   ratePerSecond,
		cleanupTick: time.NewTicker(5 * time.Minute),
		stopChan:    make(chan struct{}),
		clock:       clock,
	}

	go middleware.cleanup()

	return middleware
}

// Handler returns the HTTP middleware handler function
func (rl *RateLimitMiddleware) Handler() func(http.Handler) http.Handler {
	return rl.rateLimitHandler
}

// getLimiter gets or creates a rate limiter for the given client key
// and updates the last usage timestamp.
func (rl *RateLimitMiddleware) getLimiter(key string) *rate.Limiter {
	rl.mu.RLock()
	if client, exists := rl.limiters[key]; exists {
		client.lastSeen.Store(rl.clock.Now().UnixNano())
		rl.mu.RUnlock()
		return client.limiter
	}
	rl.mu.RUnlock()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Another goroutine might have created it while we waited for the lock.
	if client, exists := rl.limiters[key]; exists {
		client.lastSeen.Store(rl.clock.Now().UnixNano())
		return client.limiter
	}

	limiter := rate.NewLimiter(rl.rateLimit, rl.burstSize)
	newClient := &rateLimitClient{limiter: limiter}
	newClient.lastSeen.Store(rl.clock.Now().UnixNano())
	rl.limiters[key] = newClient

	return limiter
}

func (rl *RateLimitMiddleware) rateLimitHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			key = r.RemoteAddr
		}

		limiter := rl.getLimiter(key)

		if !limiter.Allow() {
			rl.sendRateLimitExceeded(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimitMiddleware) sendRateLimitExceeded(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "1")
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.burstSize))
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.WriteHeader(http.StatusTooManyRequests)

	body := errorResponse{Error: "rate limit exceeded"}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode rate limit response", "error", err)
	}
}

// cleanupOnce performs a single iteration of removing old, unused limiters.
// It is separated from the background loop so tests can trigger it synchronously.
func (rl *RateLimitMiddleware) cleanupOnce() {
	threshold := 10 * time.Minute

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()

	for key, client := range rl.limiters {
		lastSeenNano := client.lastSeen.Load()
		if lastSeenNano == 0 {
			continue
		}
		if now.Sub(time.Unix(0, lastSeenNano)) > threshold {
			delete(rl.limiters, key)
		}
	}
}

func (rl *RateLimitMiddleware) cleanup() {
	for {
		select {
		case <-rl.cleanupTick.C:
			rl.cleanupOnce()
		case <-rl.stopChan:
			return
		}
	}
}

// Stop stops the cleanup goroutine. It is safe to call multiple times.
func (rl *RateLimitMiddleware) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopChan)
		rl.cleanupTick.Stop()
	})
}
