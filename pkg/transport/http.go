package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"

	clierrors "github.com/Jaysankar7991/kite-advisor-go/pkg/errors"
	"github.com/Jaysankar7991/kite-advisor-go/pkg/logging"
	"github.com/Jaysankar7991/kite-advisor-go/pkg/protocol"
)

// httpTransport is the base transport: one http.Client with an absolute
// timeout, bound to one endpoint. Overlapping requests on the same
// instance are not supported; request IDs are monotonic within a session.
type httpTransport struct {
	endpoint  string
	client    *http.Client
	logger    logging.Logger
	sessionID string
	nextID    atomic.Int64
	closed    atomic.Bool
}

func newHTTPTransport(config TransportConfig) *httpTransport {
	sessionID := uuid.NewString()
	return &httpTransport{
		endpoint: config.Endpoint,
		client:   &http.Client{Timeout: config.Timeout},
		logger: config.Logger.WithFields(
			logging.String("component", "transport"),
			logging.String("session", sessionID),
		),
		sessionID: sessionID,
	}
}

// Endpoint returns the fixed remote endpoint.
func (t *httpTransport) Endpoint() string {
	return t.endpoint
}

// SendRequest posts one JSON-RPC request and decodes the response body.
// Any status other than 200 is a uniform failure carrying the status in
// its message.
func (t *httpTransport) SendRequest(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	if t.closed.Load() {
		return nil, clierrors.TransportError(t.endpoint, errTransportClosed)
	}

	id := t.nextID.Add(1)
	req, err := protocol.NewRequest(id, method, params)
	if err != nil {
		return nil, clierrors.Wrap(err, clierrors.CodeProtocolError,
			"failed to build request envelope",
			clierrors.CategoryInternal, clierrors.SeverityError)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, clierrors.Wrap(err, clierrors.CodeProtocolError,
			"failed to marshal request envelope",
			clierrors.CategoryInternal, clierrors.SeverityError)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, clierrors.TransportError(t.endpoint, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, clierrors.TransportError(t.endpoint, err).WithContext(&clierrors.Context{
			RequestID: requestKey(t.sessionID, id),
			Method:    method,
			Endpoint:  t.endpoint,
			Component: "transport",
			Operation: "send_request",
		})
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, clierrors.HTTPStatusError(t.endpoint, resp.StatusCode).WithContext(&clierrors.Context{
			RequestID: requestKey(t.sessionID, id),
			Method:    method,
			Endpoint:  t.endpoint,
			Component: "transport",
			Operation: "send_request",
		})
	}

	var payload json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, clierrors.UndecodableBody(t.endpoint, err)
	}

	// The server keeps status 200 as the sole success signal; an embedded
	// JSON-RPC error object is surfaced to logs but not escalated.
	var envelope protocol.Response
	if json.Unmarshal(payload, &envelope) == nil && envelope.Error != nil {
		t.logger.Warn("response carries an error object",
			logging.String("method", method),
			logging.ErrorField(envelope.Error),
		)
	}

	return payload, nil
}

// Close releases the session. Safe to call more than once.
func (t *httpTransport) Close() error {
	if t.closed.CompareAndSwap(false, true) {
		t.client.CloseIdleConnections()
		t.logger.Debug("session released")
	}
	return nil
}

func requestKey(sessionID string, id int64) string {
	return sessionID[:8] + "-" + strconv.FormatInt(id, 10)
}
