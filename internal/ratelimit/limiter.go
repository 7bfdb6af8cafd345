// Package ratelimit paces outbound candidate probes.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter throttles probe requests globally and per target domain, so that
// probing several candidates on the same host does not hammer it.
type Limiter struct {
	mu           sync.Mutex
	limiter      *rate.Limiter
	perDomain    map[string]*rate.Limiter
	defaultRate  rate.Limit
	defaultBurst int
	domainDelay  time.Duration
	lastRequest  map[string]time.Time
}

// NewLimiter creates a new rate limiter.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limiter:      rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		perDomain:    make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
		lastRequest:  make(map[string]time.Time),
	}
}

// Wait blocks until a request is allowed or the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// WaitDomain blocks until a request to a specific domain is allowed.
func (l *Limiter) WaitDomain(ctx context.Context, domain string) error {
	// Global rate limit
	if err := l.limiter.Wait(ctx); err != nil {
		return err
	}

	l.mu.Lock()
	domainLimiter, exists := l.perDomain[domain]
	if !exists {
		domainLimiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
		l.perDomain[domain] = domainLimiter
	}

	// Minimum delay between probes to the same host
	if l.domainDelay > 0 {
		if lastReq, ok := l.lastRequest[domain]; ok {
			elapsed := time.Since(lastReq)
			if elapsed < l.domainDelay {
				l.mu.Unlock()
				select {
				case <-time.After(l.domainDelay - elapsed):
				case <-ctx.Done():
					return ctx.Err()
				}
				l.mu.Lock()
			}
		}
		l.lastRequest[domain] = time.Now()
	}
	l.mu.Unlock()

	return domainLimiter.Wait(ctx)
}

// SetDomainRate sets a custom rate limit for a specific domain.
func (l *Limiter) SetDomainRate(domain string, requestsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.perDomain[domain] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

// SetDomainDelay sets the minimum delay between requests to the same domain.
func (l *Limiter) SetDomainDelay(delay time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.domainDelay = delay
}

// Allow checks if a request is allowed without blocking.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}
