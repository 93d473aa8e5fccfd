package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeGROOVE-dev/retry-go"

	"volunteermatching/internal/domain"
)

// RetryPolicy bounds how registry reads are retried.
type RetryPolicy struct {
	Attempts uint
	Delay    time.Duration
	MaxDelay time.Duration
	// Timeout applies to each attempt; zero means no per-attempt deadline.
	Timeout time.Duration
}

// DefaultRetryPolicy is used when a zero RetryPolicy is supplied.
var DefaultRetryPolicy = RetryPolicy{
	Attempts: 3,
	Delay:    500 * time.Millisecond,
	MaxDelay: 10 * time.Second,
	Timeout:  10 * time.Second,
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.Attempts == 0 {
		p.Attempts = DefaultRetryPolicy.Attempts
	}
	if p.Delay <= 0 {
		p.Delay = DefaultRetryPolicy.Delay
	}
	if p.MaxDelay < p.Delay {
		p.MaxDelay = p.Delay
	}
	return p
}

// registryCall runs fn with bounded retries. ErrNotFound is returned as is and
// never retried; any other failure that outlives the retries is reported as
// ErrRegistryUnavailable.
func registryCall(ctx context.Context, policy RetryPolicy, logger *slog.Logger, op string, fn func(ctx context.Context) error) error {
	policy = policy.withDefaults()
	var last error
	err := retry.Do(
		func() error {
			attemptCtx := ctx
			if policy.Timeout > 0 {
				var cancel context.CancelFunc
				attemptCtx, cancel = context.WithTimeout(ctx, policy.Timeout)
				defer cancel()
			}
			last = fn(attemptCtx)
			return last
		},
		retry.Attempts(policy.Attempts),
		retry.Delay(policy.Delay),
		retry.MaxDelay(policy.MaxDelay),
		retry.MaxJitter(policy.Delay),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			logger.WarnContext(ctx, "registry call failed, retrying", "op", op, "attempt", n+1, "err", err)
		}),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, domain.ErrNotFound)
		}),
	)
	if err == nil {
		return nil
	}
	if errors.Is(last, domain.ErrNotFound) {
		return last
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if last == nil {
		last = err
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrRegistryUnavailable, op, last)
}

func listVolunteers(ctx context.Context, reg domain.VolunteerRegistry, policy RetryPolicy, logger *slog.Logger) ([]*domain.Volunteer, error) {
	var out []*domain.Volunteer
	err := registryCall(ctx, policy, logger, "list volunteers", func(ctx context.Context) error {
		var err error
		out, err = reg.ListAll(ctx)
		return err
	})
	return out, err
}

func listEvents(ctx context.Context, reg domain.EventRegistry, policy RetryPolicy, logger *slog.Logger) ([]*domain.Event, error) {
	var out []*domain.Event
	err := registryCall(ctx, policy, logger, "list events", func(ctx context.Context) error {
		var err error
		out, err = reg.ListAll(ctx)
		return err
	})
	return out, err
}
