package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/diagnosis/guestroom-reservations/internal/http/response"
	"github.com/diagnosis/guestroom-reservations/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Counter counts hits on key within a fixed window starting at the first hit.
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int, error)
}

// RateLimitConfig defines rate limiting parameters
type RateLimitConfig struct {
	Requests int                            // Max requests per window
	Window   time.Duration                  // Time window duration
	KeyFunc  func(r *http.Request) []string // Keys to count the request against
	SkipFunc func(r *http.Request) bool
}

type RateLimiter struct {
	counter Counter
	config  RateLimitConfig
}

func NewRateLimiter(counter Counter, config RateLimitConfig) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = ClientIPKey
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	return &RateLimiter{counter: counter, config: config}
}

// Middleware returns the rate limiting middleware. A limiter with no request
// budget lets everything through.
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rl.config.Requests <= 0 || (rl.config.SkipFunc != nil && rl.config.SkipFunc(r)) {
				next.ServeHTTP(w, r)
				return
			}

			for _, key := range rl.config.KeyFunc(r) {
				if !rl.allow(r.Context(), key) {
					w.Header().Set("Retry-After", retryAfter(rl.config.Window))
					response.RateLimit(w, "Too many requests. Try again later.")
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) allow(ctx context.Context, key string) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	sum := sha256.Sum256([]byte(key))
	count, err := rl.counter.Hit(ctx, hex.EncodeToString(sum[:]), rl.config.Window)
	if err != nil {
		// fail open
		logger.WarnContext(ctx, "Rate limit check failed", "error", err)
		return true
	}
	return count <= rl.config.Requests
}

func retryAfter(window time.Duration) string {
	secs := int(window.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// ClientIPKey limits by the caller's address.
func ClientIPKey(r *http.Request) []string {
	if ip := clientIP(r); ip != "" {
		return []string{"ip:" + ip}
	}
	return nil
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// PostgresCounter keeps windows in the rate_limits table so every replica
// shares the same budget.
type PostgresCounter struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPostgresCounter(pool *pgxpool.Pool) *PostgresCounter {
	return &PostgresCounter{pool: pool, now: time.Now}
}

func (c *PostgresCounter) Hit(ctx context.Context, key string, window time.Duration) (int, error) {
	now := c.now()
	windowStart := now.Add(-window)

	query := `
		INSERT INTO rate_limits (key, count, window_start, expires_at)
		VALUES ($1, 1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			count = CASE
				WHEN rate_limits.window_start < $4 THEN 1
				ELSE rate_limits.count + 1
			END,
			window_start = CASE
				WHEN rate_limits.window_start < $4 THEN $2
				ELSE rate_limits.window_start
			END,
			expires_at = $3
		RETURNING count`

	var count int
	err := c.pool.QueryRow(ctx, query, key, now, now.Add(window), windowStart).Scan(&count)
	return count, err
}

// MemoryCounter is a process-local Counter.
type MemoryCounter struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
	now     func() time.Time
}

type memoryWindow struct {
	start time.Time
	count int
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{windows: make(map[string]*memoryWindow), now: time.Now}
}

func (c *MemoryCounter) Hit(_ context.Context, key string, window time.Duration) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	w, ok := c.windows[key]
	if !ok || now.Sub(w.start) >= window {
		c.prune(now, window)
		w = &memoryWindow{start: now}
		c.windows[key] = w
	}
	w.count++
	return w.count, nil
}

func (c *MemoryCounter) prune(now time.Time, window time.Duration) {
	for k, w := range c.windows {
		if now.Sub(w.start) >= window {
			delete(c.windows, k)
		}
	}
}
