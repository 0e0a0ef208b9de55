package ratelimiter

import "golang.org/x/time/rate"

// RateLimiter is the interface for rate limiting.
type RateLimiter interface {
	// Allow returns true if the request is allowed, otherwise returns false.
	Allow() bool
}

// NewTokenBucket creates a token bucket that refills at ratePerSecond tokens per second
// and holds at most capacity tokens. It starts full.
func NewTokenBucket(ratePerSecond float64, capacity int) RateLimiter {
	if capacity < 1 {
		capacity = 1
	}
	return rate.NewLimiter(rate.Limit(ratePerSecond), capacity)
}
