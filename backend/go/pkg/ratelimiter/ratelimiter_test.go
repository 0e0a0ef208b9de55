package ratelimiter

import "testing"

func TestTokenBucket_BurstThenReject(t *testing.T) {
	// a near-zero refill rate keeps the test independent of wall-clock time
	limiter := NewTokenBucket(0.001, 3)

	for i := 0; i < 3; i++ {
		if !limiter.Allow() {
			t.Fatalf("request %d rejected within burst capacity", i+1)
		}
	}
	if limiter.Allow() {
		t.Error("request beyond capacity was allowed")
	}
}

func TestTokenBucket_ZeroCapacityAllowsOne(t *testing.T) {
	limiter := NewTokenBucket(0.001, 0)
	if !limiter.Allow() {
		t.Error("first request rejected")
	}
}
