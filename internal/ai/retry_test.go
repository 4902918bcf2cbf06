package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"
)

func stubWait(t *testing.T) *[]time.Duration {
	t.Helper()

	original := wait
	delays := []time.Duration{}
	wait = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	t.Cleanup(func() { wait = original })

	return &delays
}

func TestRetryPolicyBacksOffLinearly(t *testing.T) {
	delays := stubWait(t)

	calls := 0
	policy := RetryPolicy{Attempts: 3, Step: 5 * time.Second}
	_, err := policy.Do(context.Background(), zap.NewNop(), func(context.Context) (string, error) {
		calls++
		return "", fmt.Errorf("openrouter: %w", ErrTooManyRequests)
	})

	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}

	expected := []time.Duration{5 * time.Second, 10 * time.Second, 15 * time.Second}
	if len(*delays) != len(expected) {
		t.Fatalf("expected %d waits, got %d", len(expected), len(*delays))
	}
	for i, d := range expected {
		if (*delays)[i] != d {
			t.Fatalf("wait %d: expected %s, got %s", i, d, (*delays)[i])
		}
	}
}

func TestRetryPolicyRecoversAfterRateLimit(t *testing.T) {
	stubWait(t)

	calls := 0
	out, err := DefaultRetryPolicy().Do(context.Background(), nil, func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", ErrTooManyRequests
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "ok" || calls != 2 {
		t.Fatalf("expected ok after 2 calls, got %q after %d", out, calls)
	}
}

func TestRetryPolicyDoesNotRetryOtherErrors(t *testing.T) {
	delays := stubWait(t)

	boom := errors.New("500 internal")
	calls := 0
	_, err := DefaultRetryPolicy().Do(context.Background(), zap.NewNop(), func(context.Context) (string, error) {
		calls++
		return "", boom
	})

	if !errors.Is(err, boom) {
		t.Fatalf("expected original error, got %v", err)
	}
	if calls != 1 || len(*delays) != 0 {
		t.Fatalf("expected a single call without waiting, got %d calls and %d waits", calls, len(*delays))
	}
}

func TestRetryPolicyStopsOnCancelledWait(t *testing.T) {
	original := wait
	wait = func(ctx context.Context, _ time.Duration) error { return context.Canceled }
	defer func() { wait = original }()

	_, err := DefaultRetryPolicy().Do(context.Background(), zap.NewNop(), func(context.Context) (string, error) {
		return "", ErrTooManyRequests
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
