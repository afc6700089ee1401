// Package transport provides the config-driven HTTP transport used to talk
// to the Kite MCP endpoint.
//
// A transport owns exactly one network session, bound to one endpoint with
// one total timeout. It is created around a unit of work and released with
// Close; the design assumes a single request in flight at a time. Retry and
// observability behavior is composed as middleware around the base
// transport, selected through TransportConfig.
//
// Usage:
//
//	config := transport.DefaultConfig()
//	config.Logger = logger
//	t, err := transport.New(config)
//	if err != nil { ... }
//	defer t.Close()
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Jaysankar7991/kite-advisor-go/pkg/logging"
	"github.com/Jaysankar7991/kite-advisor-go/pkg/observability"
	"github.com/Jaysankar7991/kite-advisor-go/pkg/protocol"
)

// DefaultEndpoint is the Kite MCP server endpoint.
const DefaultEndpoint = "https://mcp.kite.trade/sse"

var errTransportClosed = errors.New("transport is closed")

// DefaultTimeout bounds each individual send, end to end.
const DefaultTimeout = 30 * time.Second

// Transport is the minimal contract for sending JSON-RPC requests. The
// returned payload is the full decoded response body; status 200 is the
// sole success discriminator.
type Transport interface {
	// SendRequest posts one JSON-RPC request and returns the decoded
	// response body. Request IDs are assigned monotonically per session.
	SendRequest(ctx context.Context, method string, params interface{}) (json.RawMessage, error)

	// Endpoint returns the fixed remote endpoint this session is bound to.
	Endpoint() string

	// Close releases the network session. The transport must not be used
	// after Close returns.
	Close() error
}

// SleepFunc delays between retry attempts. It returns early with the
// context's error if the context is cancelled.
type SleepFunc func(ctx context.Context, d time.Duration) error

// ReliabilityConfig controls the bounded-retry policy.
type ReliabilityConfig struct {
	// MaxAttempts is the total number of attempts, initial try included.
	MaxAttempts int `json:"max_attempts"`

	// InitialDelay is the backoff before the first retry.
	InitialDelay time.Duration `json:"initial_delay"`

	// BackoffFactor multiplies the delay after each failed attempt.
	BackoffFactor float64 `json:"backoff_factor"`

	// MaxDelay caps a single backoff sleep.
	MaxDelay time.Duration `json:"max_delay"`

	// Methods lists the JSON-RPC methods the policy applies to. Methods
	// not listed get exactly one attempt. The handshake is the only
	// retried method in the observed server behavior; tool invocations
	// may have side effects and are deliberately left at one attempt.
	Methods []string `json:"methods"`

	// Sleep is the delay primitive, injectable for tests. Nil means a
	// timer-backed sleep honoring context cancellation.
	Sleep SleepFunc `json:"-"`
}

// ObservabilityConfig controls logging, metrics, and tracing around sends.
type ObservabilityConfig struct {
	Metrics *observability.Metrics        `json:"-"`
	Tracing *observability.TracingProvider `json:"-"`
}

// TransportConfig is the unified configuration for building a transport.
type TransportConfig struct {
	// Endpoint is the fixed remote endpoint.
	Endpoint string `json:"endpoint"`

	// Timeout is the absolute per-request timeout of the session.
	Timeout time.Duration `json:"timeout"`

	// Feature toggles for the middleware chain.
	EnableReliability   bool `json:"enable_reliability"`
	EnableObservability bool `json:"enable_observability"`

	Reliability   ReliabilityConfig   `json:"reliability"`
	Observability ObservabilityConfig `json:"observability"`

	// Logger receives transport diagnostics. Nil silences them.
	Logger logging.Logger `json:"-"`
}

// DefaultConfig returns a transport configuration with the observed
// production defaults: the Kite endpoint, a 30 second session timeout, and
// three handshake attempts with doubling backoff starting at one second.
func DefaultConfig() TransportConfig {
	return TransportConfig{
		Endpoint:          DefaultEndpoint,
		Timeout:           DefaultTimeout,
		EnableReliability: true,
		Reliability: ReliabilityConfig{
			MaxAttempts:   3,
			InitialDelay:  1 * time.Second,
			BackoffFactor: 2.0,
			MaxDelay:      30 * time.Second,
			Methods:       []string{protocol.MethodInitialize},
		},
	}
}

// New creates a transport with the specified configuration, wrapping the
// base HTTP session with the configured middleware.
func New(config TransportConfig) (Transport, error) {
	if config.Endpoint == "" {
		return nil, errors.New("endpoint is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.Logger == nil {
		config.Logger = logging.Discard()
	}

	base := newHTTPTransport(config)

	var middleware []Middleware
	// Chain makes the first middleware the outermost. Reliability sits
	// outside observability so every attempt is logged and measured.
	if config.EnableReliability {
		middleware = append(middleware, NewReliabilityMiddleware(config.Reliability, config.Logger, config.Observability.Metrics))
	}
	if config.EnableObservability {
		middleware = append(middleware, NewObservabilityMiddleware(config.Observability, config.Logger))
	}

	return Chain(middleware...).Wrap(base), nil
}
