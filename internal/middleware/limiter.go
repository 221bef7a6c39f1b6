package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Rate Limit Tiers
const (
	// Viva notifications, refunds and cancellations (Strict)
	limitStrict = rate.Limit(2)
	burstStrict = 5

	// General (Default)
	limitGeneral = rate.Limit(10)
	burstGeneral = 20

	// Internal / trusted services
	limitInternal = rate.Limit(100)
	burstInternal = 200
)

const (
	InternalAuthHeader = "X-Service-Auth"
	visitorTTL         = 3 * time.Minute
)

// visitor holds the rate limiter and the last time it was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// StrictRule selects requests for the strict tier.
type StrictRule func(r *http.Request) bool

// PathPrefix matches any method on paths starting with prefix.
func PathPrefix(prefix string) StrictRule {
	return func(r *http.Request) bool {
		return strings.HasPrefix(r.URL.Path, prefix)
	}
}

// Route matches method on paths starting with prefix and ending with suffix,
// e.g. Route(http.MethodPost, "/payments/", "/refund").
func Route(method, prefix, suffix string) StrictRule {
	return func(r *http.Request) bool {
		p := r.URL.Path
		return r.Method == method &&
			len(p) > len(prefix)+len(suffix) &&
			strings.HasPrefix(p, prefix) &&
			strings.HasSuffix(p, suffix)
	}
}

// Limiter keeps one token bucket per caller and tier.
type Limiter struct {
	internalKey string
	strict      []StrictRule

	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
}

// NewLimiter builds a Limiter. Requests presenting internalKey in X-Service-Auth
// get the internal tier; requests matching any of the strict rules get the strict tier.
func NewLimiter(internalKey string, strict ...StrictRule) *Limiter {
	return &Limiter{
		internalKey: internalKey,
		strict:      strict,
		visitors:    make(map[string]*visitor),
		now:         time.Now,
	}
}

// getVisitor retrieves or creates a rate limiter for the given key.
func (l *Limiter) getVisitor(key string, r rate.Limit, b int) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, exists := l.visitors[key]
	if !exists {
		limiter := rate.NewLimiter(r, b)
		l.visitors[key] = &visitor{limiter, l.now()}
		return limiter
	}

	v.lastSeen = l.now()
	return v.limiter
}

// Cleanup drops visitors idle for longer than the TTL.
func (l *Limiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, v := range l.visitors {
		if l.now().Sub(v.lastSeen) > visitorTTL {
			delete(l.visitors, key)
		}
	}
}

// Run calls Cleanup every interval until ctx is done.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Cleanup()
		}
	}
}

// Middleware rejects callers over their tier quota with 429.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, burst, tier := l.resolveRateTier(r)

		// separate quotas per tier for the same caller, e.g. "sub:shop-1:strict"
		key := fmt.Sprintf("%s:%s", identity(r), tier)

		if !l.getVisitor(key, limit, burst).Allow() {
			w.Header().Set("Retry-After", "1")
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func identity(r *http.Request) string {
	if sub, ok := SubjectFrom(r.Context()); ok {
		return "sub:" + sub
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return "ip:" + ip
}

// resolveRateTier determines which rate limit policy applies to the request.
func (l *Limiter) resolveRateTier(r *http.Request) (rate.Limit, int, string) {
	if l.internalKey != "" && r.Header.Get(InternalAuthHeader) == l.internalKey {
		return limitInternal, burstInternal, "internal"
	}

	for _, match := range l.strict {
		if match(r) {
			return limitStrict, burstStrict, "strict"
		}
	}

	return limitGeneral, burstGeneral, "general"
}
