package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"nepalstay/internal/domain"
	"nepalstay/internal/pkg/circuitbreaker"
	"nepalstay/internal/pkg/logger"
)

type RetryPolicy struct {
	Timeout     time.Duration
	MaxAttempts int
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

func (p RetryPolicy) backoff(attempt int) time.Duration {
	d := p.BackoffBase << (attempt - 1)
	if d <= 0 || d > p.BackoffMax {
		return p.BackoffMax
	}
	return d
}

// ResilientGateway bounds every verification call with a timeout, retries
// transport failures with exponential backoff and trips a circuit breaker
// when the provider keeps failing.
type ResilientGateway struct {
	inner   Gateway
	policy  RetryPolicy
	breaker *circuitbreaker.CircuitBreaker
	log     logrus.FieldLogger
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewResilientGateway(inner Gateway, policy RetryPolicy, breaker *circuitbreaker.CircuitBreaker, log logrus.FieldLogger) *ResilientGateway {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if policy.Timeout <= 0 {
		policy.Timeout = 10 * time.Second
	}
	return &ResilientGateway{inner: inner, policy: policy, breaker: breaker, log: log, sleep: sleepCtx}
}

func (r *ResilientGateway) Method() domain.PaymentMethod { return r.inner.Method() }

func (r *ResilientGateway) Verify(ctx context.Context, reference string, expected Amount) (Verification, error) {
	log := logger.FromContext(ctx, r.log).WithField("gateway", r.inner.Method())

	var lastErr error
	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := r.sleep(ctx, r.policy.backoff(attempt-1)); err != nil {
				lastErr = err
				break
			}
		}

		var v Verification
		err := r.breaker.Execute(func() error {
			callCtx, cancel := context.WithTimeout(ctx, r.policy.Timeout)
			defer cancel()
			var err error
			v, err = r.inner.Verify(callCtx, reference, expected)
			return err
		})
		if err == nil {
			return v, nil
		}

		lastErr = err
		log.WithError(err).WithField("attempt", attempt).Warn("payment verification attempt failed")
		if errors.Is(err, circuitbreaker.ErrOpen) || ctx.Err() != nil {
			break
		}
	}
	return Verification{}, fmt.Errorf("%w: %s gateway unavailable: %v",
		domain.ErrPaymentVerificationFailed, r.inner.Method(), lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
