package demoserver

import (
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter bounds /api/query traffic with a global budget plus a
// per-customer budget, so one chatty customer cannot starve the rest.
type RateLimiter struct {
	global  *rate.Limiter
	clients map[string]*rate.Limiter
	mu      sync.RWMutex

	requestsPerSecond float64
	burst             int
}

// NewRateLimiter creates a rate limiter with the given per-second rate
// and burst, applied both globally and per client.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		global:            rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		clients:           make(map[string]*rate.Limiter),
		requestsPerSecond: requestsPerSecond,
		burst:             burst,
	}
}

// Allow reports whether a request from clientID fits both budgets.
func (rl *RateLimiter) Allow(clientID string) bool {
	if !rl.global.Allow() {
		return false
	}
	return rl.clientLimiter(clientID).Allow()
}

func (rl *RateLimiter) clientLimiter(clientID string) *rate.Limiter {
	rl.mu.RLock()
	limiter, ok := rl.clients[clientID]
	rl.mu.RUnlock()
	if ok {
		return limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Re-check after acquiring the write lock.
	if limiter, ok := rl.clients[clientID]; ok {
		return limiter
	}

	limiter = rate.NewLimiter(rate.Limit(rl.requestsPerSecond), rl.burst)
	rl.clients[clientID] = limiter
	return limiter
}
