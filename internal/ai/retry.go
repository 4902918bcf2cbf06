package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spigell/jobfit/internal/utils"
	"go.uber.org/zap"
)

const (
	DefaultAttempts  = 3
	DefaultRetryStep = 5 * time.Second
)

var wait = utils.WaitFor

// RetryPolicy retries rate-limited calls with a linear backoff: after the
// n-th rejected attempt (1-based) it waits Step*n.
type RetryPolicy struct {
	Attempts int
	Step     time.Duration
}

// DefaultRetryPolicy returns three attempts with a five second step.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: DefaultAttempts, Step: DefaultRetryStep}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.Attempts <= 0 {
		p.Attempts = DefaultAttempts
	}
	if p.Step < 0 {
		p.Step = 0
	}
	return p
}

// Do runs call until it succeeds, fails with something other than
// ErrTooManyRequests, or runs out of attempts. Exhaustion yields ErrRateLimited.
func (p RetryPolicy) Do(ctx context.Context, logger *zap.Logger, call func(ctx context.Context) (string, error)) (string, error) {
	p = p.normalized()
	if logger == nil {
		logger = zap.NewNop()
	}

	for attempt := 1; attempt <= p.Attempts; attempt++ {
		out, err := call(ctx)
		if err == nil {
			return out, nil
		}

		if !errors.Is(err, ErrTooManyRequests) {
			return "", err
		}

		delay := p.Step * time.Duration(attempt)
		logger.Warn("llm rate-limited, backing off",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", p.Attempts),
			zap.Duration("delay", delay),
		)

		if err := wait(ctx, delay); err != nil {
			return "", fmt.Errorf("waiting for rate limit backoff: %w", err)
		}
	}

	return "", ErrRateLimited
}
