package middleware

import (
	"context"
	"testing"
	"time"
)

func TestTokenBucketExhaustion(t *testing.T) {
	tb := NewTokenBucket(3, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !tb.Allow(ctx) {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if tb.Allow(ctx) {
		t.Fatal("request beyond capacity should be rejected")
	}
}

func TestKeyedLimiterIsolatesKeys(t *testing.T) {
	kl := NewKeyedLimiter(1, 0)
	ctx := context.Background()

	if !kl.Allow(ctx, "driver-1") {
		t.Fatal("first request for driver-1 should pass")
	}
	if kl.Allow(ctx, "driver-1") {
		t.Fatal("second request for driver-1 should be throttled")
	}
	// 另一个 key 有独立的桶
	if !kl.Allow(ctx, "driver-2") {
		t.Fatal("first request for driver-2 should pass")
	}
}

func TestSlidingWindow(t *testing.T) {
	sw := NewSlidingWindow(50*time.Millisecond, 2)
	ctx := context.Background()

	if !sw.Allow(ctx) || !sw.Allow(ctx) {
		t.Fatal("first two requests should pass")
	}
	if sw.Allow(ctx) {
		t.Fatal("third request inside window should be rejected")
	}

	time.Sleep(60 * time.Millisecond)
	if !sw.Allow(ctx) {
		t.Fatal("request after window expiry should pass")
	}
}
