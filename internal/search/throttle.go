package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

// Throttle enforces a minimum interval between successive requests to the
// same registered domain. External outlets expect a politeness delay
// between queries; running sources in parallel must not violate it, so
// every search waits on the limiter for its target domain first.
type Throttle struct {
	mu       sync.Mutex
	interval time.Duration
	limiters map[string]*rate.Limiter
}

// NewThrottle creates a Throttle with the given minimum inter-request
// interval per domain.
func NewThrottle(interval time.Duration) *Throttle {
	if interval <= 0 {
		interval = time.Second
	}
	return &Throttle{
		interval: interval,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until a request to the given domain is permitted or the
// context is cancelled.
func (t *Throttle) Wait(ctx context.Context, domain string) error {
	return t.limiter(registeredDomain(domain)).Wait(ctx)
}

func (t *Throttle) limiter(key string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Every(t.interval), 1)
		t.limiters[key] = l
	}
	return l
}

// registeredDomain collapses subdomains onto their registrable parent so
// rss.example.com and www.example.com share one budget.
func registeredDomain(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if etld, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return etld
	}
	return host
}
