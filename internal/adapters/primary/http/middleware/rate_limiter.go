package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterSet holds one token bucket per key and evicts idle keys.
type limiterSet struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	rate    rate.Limit
	burst   int
	ttl     time.Duration
	stop    chan struct{}
	once    sync.Once
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiterSet(perSecond float64, burst int, interval, ttl time.Duration) *limiterSet {
	s := &limiterSet{
		entries: make(map[string]*limiterEntry),
		rate:    rate.Limit(perSecond),
		burst:   burst,
		ttl:     ttl,
		stop:    make(chan struct{}),
	}
	if interval <= 0 {
		interval = time.Minute
	}
	go s.evictLoop(interval)
	return s
}

func (s *limiterSet) get(key string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(s.rate, s.burst)}
		s.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

// reserve takes a token for key. When none is available it returns false
// and the wait until the next token.
func (s *limiterSet) reserve(key string) (bool, time.Duration) {
	now := time.Now()
	r := s.get(key, now).ReserveN(now, 1)
	if !r.OK() {
		return false, time.Duration(math.MaxInt64)
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (s *limiterSet) evictLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for key, e := range s.entries {
				if now.Sub(e.lastSeen) > s.ttl {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		}
	}
}

func (s *limiterSet) close() {
	s.once.Do(func() { close(s.stop) })
}

// RateLimiter limits requests per client IP.
type RateLimiter struct {
	set *limiterSet
}

// RateLimiterConfig holds rate limiter configuration
type RateLimiterConfig struct {
	RequestsPerSecond float64       // Requests allowed per second
	BurstSize         int           // Maximum burst size
	CleanupInterval   time.Duration // How often idle clients are evicted
	TTL               time.Duration // How long an idle client is remembered
}

// NewRateLimiter creates a new rate limiter with the given configuration
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	return &RateLimiter{
		set: newLimiterSet(cfg.RequestsPerSecond, cfg.BurstSize, cfg.CleanupInterval, cfg.TTL),
	}
}

// Allow checks if a request from the given IP is allowed
func (rl *RateLimiter) Allow(ip string) bool {
	ok, _ := rl.set.reserve(ip)
	return ok
}

// Stop ends the eviction goroutine.
func (rl *RateLimiter) Stop() {
	rl.set.close()
}

// Middleware rejects requests over the limit with 429 and a Retry-After
// header in whole seconds.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := rl.set.reserve(getClientIP(r))
		if !ok {
			w.Header().Set("Retry-After", retryAfterSeconds(wait))
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func retryAfterSeconds(wait time.Duration) string {
	const maxRetry = time.Hour
	if wait > maxRetry {
		wait = maxRetry
	}
	secs := int64(math.Ceil(wait.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}

// getClientIP extracts the client IP, preferring the first X-Forwarded-For
// entry and then X-Real-IP when the service runs behind a proxy.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		first = strings.TrimSpace(first)
		if ip, _, err := net.SplitHostPort(first); err == nil {
			return ip
		}
		return first
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// RateLimitByKey limits actions per arbitrary key, such as an email
// address asking for a fresh OTP.
type RateLimitByKey struct {
	set *limiterSet
}

// NewRateLimitByKey creates a key-based rate limiter. Keys idle for five
// minutes are forgotten.
func NewRateLimitByKey(requestsPerSecond float64, burst int) *RateLimitByKey {
	return &RateLimitByKey{
		set: newLimiterSet(requestsPerSecond, burst, time.Minute, 5*time.Minute),
	}
}

// Allow checks if an action for the given key is allowed
func (rl *RateLimitByKey) Allow(key string) bool {
	ok, _ := rl.set.reserve(key)
	return ok
}

// Stop ends the eviction goroutine.
func (rl *RateLimitByKey) Stop() {
	rl.set.close()
}
