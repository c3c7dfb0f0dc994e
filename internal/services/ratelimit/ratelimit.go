// Package ratelimit paces outbound provider requests during one refresh:
// a minimum interval between calls, a hard per-refresh request budget and a
// bounded backoff protocol for rate-limit rejections.
package ratelimit

import (
	"context"
	"time"

	"github.com/jpillora/backoff"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"eurledger/internal/domain"
)

const (
	maxRetries  = 3
	waitCeiling = 30 * time.Second
	backoffBase = 1 * time.Second
)

// Limiter owns the pacing state of a single refresh. It is not safe for
// concurrent use; the sync pipeline issues requests strictly sequentially.
type Limiter struct {
	minInterval time.Duration
	budget      int
	issued      int
	last        time.Time
	logger      *zap.Logger

	// retryBase is the first backoff step (can be shortened in tests)
	retryBase time.Duration
}

func New(minInterval time.Duration, logger *zap.Logger) *Limiter {
	return &Limiter{minInterval: minInterval, logger: logger, retryBase: backoffBase}
}

// Reset arms the limiter with the request budget of the mode being entered
// and clears the issued counter.
func (l *Limiter) Reset(budget int) {
	l.budget = budget
	l.issued = 0
}

// Issued returns the number of requests issued since the last Reset.
func (l *Limiter) Issued() int {
	return l.issued
}

// Acquire blocks until at least the minimum interval has passed since the
// previous request was issued.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l.minInterval > 0 && !l.last.IsZero() {
		if wait := l.minInterval - time.Since(l.last); wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
	}
	l.last = time.Now()
	return nil
}

// ConsumeBudget counts one outbound request against the per-refresh budget.
func (l *Limiter) ConsumeBudget(endpoint string) error {
	if l.issued >= l.budget {
		return &domain.BudgetExhaustedError{Issued: l.issued, Endpoint: endpoint}
	}
	l.issued++
	return nil
}

// Do runs one provider call under the throttle, the budget and the retry
// protocol. A rate-limit rejection is retried up to maxRetries times,
// waiting for the provider-announced reset when one was given and for an
// exponential backoff otherwise. A wait beyond the ceiling aborts instead
// of blocking the whole refresh on a single call. Every other error
// propagates unchanged after zero retries.
func (l *Limiter) Do(ctx context.Context, endpoint string, call func() error) error {
	b := &backoff.Backoff{Min: l.retryBase, Max: waitCeiling, Factor: 2}

	for attempt := 0; ; attempt++ {
		if err := l.ConsumeBudget(endpoint); err != nil {
			return err
		}
		if err := l.Acquire(ctx); err != nil {
			return err
		}

		err := call()
		if err == nil {
			return nil
		}

		var rl *domain.RateLimitError
		if !errors.As(err, &rl) {
			return err
		}
		if attempt >= maxRetries {
			return errors.Wrapf(domain.ErrRateLimited, "%s: gave up after %d retries", endpoint, maxRetries)
		}

		wait := b.Duration()
		if !rl.RetryAfter.IsZero() {
			if until := time.Until(rl.RetryAfter); until > wait {
				wait = until
			}
		}
		if wait > waitCeiling {
			return errors.Wrapf(domain.ErrRateLimited, "%s: reset %s away exceeds wait ceiling", endpoint, wait)
		}

		l.logger.Debug("rate limited, backing off",
			zap.String("endpoint", endpoint),
			zap.Duration("wait", wait),
			zap.Int("attempt", attempt+1))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
