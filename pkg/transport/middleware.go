package transport

import (
	"context"
	"encoding/json"
)

// Middleware wraps a transport to add behavior such as retries or
// observability around each send.
type Middleware interface {
	// Wrap wraps the given transport with middleware functionality.
	Wrap(transport Transport) Transport
}

// MiddlewareFunc is an adapter to allow ordinary functions as middleware.
type MiddlewareFunc func(Transport) Transport

// Wrap implements the Middleware interface.
func (f MiddlewareFunc) Wrap(t Transport) Transport {
	return f(t)
}

// Chain composes multiple middleware. The first middleware in the list
// becomes the outermost wrapper.
func Chain(middleware ...Middleware) Middleware {
	return MiddlewareFunc(func(transport Transport) Transport {
		for i := len(middleware) - 1; i >= 0; i-- {
			transport = middleware[i].Wrap(transport)
		}
		return transport
	})
}

// middlewareTransport is the base delegating type for middleware
// implementations.
type middlewareTransport struct {
	next Transport
}

func (m *middlewareTransport) SendRequest(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	return m.next.SendRequest(ctx, method, params)
}

func (m *middlewareTransport) Endpoint() string {
	return m.next.Endpoint()
}

func (m *middlewareTransport) Close() error {
	return m.next.Close()
}
