package transport

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Jaysankar7991/kite-advisor-go/pkg/logging"
)

// ObservabilityMiddleware logs, measures, and traces every send that
// reaches the base transport. With reliability stacked outside it, each
// retry attempt is observed individually.
type ObservabilityMiddleware struct {
	config ObservabilityConfig
	logger logging.Logger
}

// NewObservabilityMiddleware creates a new observability middleware. Both
// the metrics and tracing handles may be nil.
func NewObservabilityMiddleware(config ObservabilityConfig, logger logging.Logger) Middleware {
	if logger == nil {
		logger = logging.Discard()
	}
	return &ObservabilityMiddleware{
		config: config,
		logger: logger.WithFields(logging.String("component", "transport")),
	}
}

// Wrap implements the Middleware interface.
func (om *ObservabilityMiddleware) Wrap(transport Transport) Transport {
	return &observabilityTransport{
		middlewareTransport: middlewareTransport{next: transport},
		middleware:          om,
	}
}

type observabilityTransport struct {
	middlewareTransport
	middleware *ObservabilityMiddleware
}

// SendRequest observes a single send attempt.
func (ot *observabilityTransport) SendRequest(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	om := ot.middleware

	var span trace.Span
	if om.config.Tracing != nil {
		ctx, span = om.config.Tracing.StartMethodSpan(ctx, method, trace.SpanKindClient)
		defer span.End()
	}

	start := time.Now()
	result, err := ot.middlewareTransport.SendRequest(ctx, method, params)
	elapsed := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
	}

	if om.config.Metrics != nil {
		om.config.Metrics.RecordRequest(method, status, elapsed)
	}

	if span != nil {
		span.SetAttributes(
			attribute.String("rpc.status", status),
			attribute.Int64("rpc.duration_ms", elapsed.Milliseconds()),
		)
		if err != nil {
			om.config.Tracing.RecordError(ctx, err)
		}
	}

	if err != nil {
		om.logger.WithError(err).Warn("request failed",
			logging.String("method", method),
			logging.Duration("elapsed", elapsed),
		)
		return nil, err
	}

	om.logger.Debug("request completed",
		logging.String("method", method),
		logging.Duration("elapsed", elapsed),
	)
	return result, nil
}
