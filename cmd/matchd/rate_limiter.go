// rate_limiter.go - Rate limiting for the matching engine daemon
package main

import (
	"sync"
	"time"
)

// RateLimiter implements a simple token bucket rate limiter.
type RateLimiter struct {
	mu           sync.Mutex
	tokens       int
	maxTokens    int
	refillRate   int
	lastRefill   time.Time
	refillPeriod time.Duration
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(maxTokens int, refillRate int, refillPeriod time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:       maxTokens,
		maxTokens:    maxTokens,
		refillRate:   refillRate,
		lastRefill:   time.Now(),
		refillPeriod: refillPeriod,
	}
}

// Allow checks if a request is allowed and consumes a token if so.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	timeElapsed := now.Sub(rl.lastRefill)
	refillCount := int(timeElapsed / rl.refillPeriod)

	if refillCount > 0 {
		rl.tokens += refillCount * rl.refillRate
		if rl.tokens > rl.maxTokens {
			rl.tokens = rl.maxTokens
		}
		rl.lastRefill = now
	}

	if rl.tokens > 0 {
		rl.tokens--
		return true
	}

	return false
}

// GetTokens returns the current number of available tokens.
func (rl *RateLimiter) GetTokens() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.tokens
}

// Reset resets the rate limiter to its initial state.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.tokens = rl.maxTokens
	rl.lastRefill = time.Now()
}

// CallerRateLimiter manages rate limiting per requesting caller, so one
// noisy caller submitting rounds can't starve others of solve capacity.
type CallerRateLimiter struct {
	limiters     map[string]*RateLimiter
	mu           sync.RWMutex
	maxTokens    int
	refillRate   int
	refillPeriod time.Duration
}

// NewCallerRateLimiter creates a new per-caller rate limiter.
func NewCallerRateLimiter(maxTokens int, refillRate int, refillPeriod time.Duration) *CallerRateLimiter {
	return &CallerRateLimiter{
		limiters:     make(map[string]*RateLimiter),
		maxTokens:    maxTokens,
		refillRate:   refillRate,
		refillPeriod: refillPeriod,
	}
}

// Allow checks if a request from callerID is allowed.
func (crl *CallerRateLimiter) Allow(callerID string) bool {
	crl.mu.Lock()
	limiter, exists := crl.limiters[callerID]
	if !exists {
		limiter = NewRateLimiter(crl.maxTokens, crl.refillRate, crl.refillPeriod)
		crl.limiters[callerID] = limiter
	}
	crl.mu.Unlock()

	return limiter.Allow()
}

// GetTokens returns the current number of available tokens for a caller.
func (crl *CallerRateLimiter) GetTokens(callerID string) int {
	crl.mu.RLock()
	limiter, exists := crl.limiters[callerID]
	crl.mu.RUnlock()

	if !exists {
		return crl.maxTokens
	}

	return limiter.GetTokens()
}

// Reset resets the rate limiter for a specific caller.
func (crl *CallerRateLimiter) Reset(callerID string) {
	crl.mu.Lock()
	if limiter, exists := crl.limiters[callerID]; exists {
		limiter.Reset()
	}
	crl.mu.Unlock()
}

// ResetAll resets all caller rate limiters.
func (crl *CallerRateLimiter) ResetAll() {
	crl.mu.Lock()
	for _, limiter := range crl.limiters {
		limiter.Reset()
	}
	crl.mu.Unlock()
}
