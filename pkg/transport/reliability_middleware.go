package transport

import (
	"context"
	"encoding/json"
	"math"
	"time"

	clierrors "github.com/Jaysankar7991/kite-advisor-go/pkg/errors"
	"github.com/Jaysankar7991/kite-advisor-go/pkg/logging"
	"github.com/Jaysankar7991/kite-advisor-go/pkg/observability"
)

// ReliabilityMiddleware adds bounded retry with exponential backoff to the
// methods it is configured for. Methods outside the set pass through with
// exactly one attempt: the handshake is idempotent, while tool invocations
// may have side effects, so the asymmetry is part of the contract.
type ReliabilityMiddleware struct {
	config  ReliabilityConfig
	logger  logging.Logger
	metrics *observability.Metrics
}

// NewReliabilityMiddleware creates a new reliability middleware. The
// metrics handle may be nil.
func NewReliabilityMiddleware(config ReliabilityConfig, logger logging.Logger, metrics *observability.Metrics) Middleware {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 1 * time.Second
	}
	if config.BackoffFactor <= 0 {
		config.BackoffFactor = 2.0
	}
	if config.Sleep == nil {
		config.Sleep = sleepWithContext
	}
	if logger == nil {
		logger = logging.Discard()
	}

	return &ReliabilityMiddleware{
		config:  config,
		logger:  logger.WithFields(logging.String("component", "reliability")),
		metrics: metrics,
	}
}

// Wrap implements the Middleware interface.
func (rm *ReliabilityMiddleware) Wrap(transport Transport) Transport {
	return &reliabilityTransport{
		middlewareTransport: middlewareTransport{next: transport},
		middleware:          rm,
	}
}

type reliabilityTransport struct {
	middlewareTransport
	middleware *ReliabilityMiddleware
}

// SendRequest wraps the underlying SendRequest with retry logic for the
// configured methods.
func (rt *reliabilityTransport) SendRequest(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	config := rt.middleware.config

	if !config.applies(method) {
		return rt.middlewareTransport.SendRequest(ctx, method, params)
	}

	var lastErr error
	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		result, err := rt.middlewareTransport.SendRequest(ctx, method, params)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !clierrors.IsRetryable(err) {
			rt.middleware.logger.Warn("non-retryable failure",
				logging.String("method", method),
				logging.ErrorField(err),
			)
			return nil, err
		}

		if attempt == config.MaxAttempts-1 {
			break
		}

		delay := config.backoff(attempt)
		rt.middleware.logger.Warn("attempt failed, backing off",
			logging.String("method", method),
			logging.Int("attempt", attempt+1),
			logging.Duration("delay", delay),
			logging.ErrorField(err),
		)
		if rt.middleware.metrics != nil {
			rt.middleware.metrics.RecordRetry(method)
		}

		if err := config.Sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, clierrors.RetriesExhausted(method, config.MaxAttempts, lastErr)
}

// applies reports whether the retry policy covers the given method.
func (c ReliabilityConfig) applies(method string) bool {
	for _, m := range c.Methods {
		if m == method {
			return true
		}
	}
	return false
}

// backoff returns the delay after the given 0-indexed failed attempt:
// InitialDelay * BackoffFactor^attempt, capped at MaxDelay.
func (c ReliabilityConfig) backoff(attempt int) time.Duration {
	delay := float64(c.InitialDelay) * math.Pow(c.BackoffFactor, float64(attempt))
	if c.MaxDelay > 0 && delay > float64(c.MaxDelay) {
		delay = float64(c.MaxDelay)
	}
	return time.Duration(delay)
}

// sleepWithContext is the default SleepFunc. The delay is a suspension
// point, not a busy wait, and returns early on cancellation.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
