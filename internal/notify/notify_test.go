package notify

import (
	"context"
	"errors"
	"testing"
)

type failingRelay struct {
	calls int
}

func (r *failingRelay) Send(ctx context.Context, recipient string, n Notification) error {
	r.calls++
	return errors.New("relay down")
}

func TestBestEffortSwallowsRelayError(t *testing.T) {
	r := &failingRelay{}
	// 不应 panic，也不应有任何错误冒出来
	BestEffort(context.Background(), r, nil, "u-1", Notification{Event: EventAssigned})
	if r.calls != 1 {
		t.Fatalf("expected 1 send attempt, got %d", r.calls)
	}
}

func TestBestEffortSkipsEmptyRecipient(t *testing.T) {
	r := &failingRelay{}
	BestEffort(context.Background(), r, nil, "", Notification{Event: EventCompleted})
	if r.calls != 0 {
		t.Fatalf("expected no send for empty recipient, got %d", r.calls)
	}
}
