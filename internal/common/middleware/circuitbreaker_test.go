package middleware

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCircuitBreakerOpensAfterMaxFailures(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, time.Minute)
	ctx := context.Background()
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		if err := cb.Call(ctx, func() error { return boom }); !errors.Is(err, boom) {
			t.Fatalf("call %d err = %v, want boom", i+1, err)
		}
	}
	if cb.GetState() != StateOpen {
		t.Fatalf("state = %v, want open", cb.GetState())
	}

	// 熔断开启后短路，不再执行调用
	called := false
	err := cb.Call(ctx, func() error { called = true; return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}
	if called {
		t.Fatal("fn executed while circuit open")
	}
}

func TestCircuitBreakerHalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, 10*time.Millisecond)
	ctx := context.Background()

	if err := cb.Call(ctx, func() error { return errors.New("boom") }); err == nil {
		t.Fatal("want failure")
	}
	if cb.GetState() != StateOpen {
		t.Fatalf("state = %v, want open", cb.GetState())
	}

	time.Sleep(15 * time.Millisecond)

	// 超时后进入半开，成功一次即恢复
	if err := cb.Call(ctx, func() error { return nil }); err != nil {
		t.Fatalf("half-open call: %v", err)
	}
	if cb.GetState() != StateClosed {
		t.Fatalf("state = %v, want closed", cb.GetState())
	}
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, 10*time.Millisecond)
	ctx := context.Background()

	_ = cb.Call(ctx, func() error { return errors.New("boom") })
	time.Sleep(15 * time.Millisecond)

	if err := cb.Call(ctx, func() error { return errors.New("still broken") }); err == nil {
		t.Fatal("want failure")
	}
	if cb.GetState() != StateOpen {
		t.Fatalf("state = %v, want open again", cb.GetState())
	}
}
