package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clierrors "github.com/Jaysankar7991/kite-advisor-go/pkg/errors"
	"github.com/Jaysankar7991/kite-advisor-go/pkg/protocol"
)

const loginText = "Please login to continue.\nURL: https://kite.zerodha.com/connect/login?v=3&api_key=test\nOpen in browser."

// fakeServer speaks just enough of the Kite MCP dialect for the client.
type fakeServer struct {
	mu         sync.Mutex
	requests   []protocol.Request
	loginText  string
	adviceText string
	failWith   int // non-zero: respond with this status
}

func (s *fakeServer) handler(w http.ResponseWriter, r *http.Request) {
	var req protocol.Request
	_ = json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	s.requests = append(s.requests, req)
	failWith := s.failWith
	s.mu.Unlock()

	if failWith != 0 {
		w.WriteHeader(failWith)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch req.Method {
	case protocol.MethodInitialize:
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"serverInfo":{"name":"kite-mcp","version":"1.0"}}}`))
	case protocol.MethodCallTool:
		var params protocol.CallToolParams
		_ = json.Unmarshal(req.Params, &params)
		text := s.adviceText
		if params.Name == protocol.ToolLogin {
			text = s.loginText
		}
		body, _ := json.Marshal(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": protocol.CallToolResult{
				Content: []protocol.Content{{Type: "text", Text: text}},
			},
		})
		_, _ = w.Write(body)
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func (s *fakeServer) lastToolCall(t *testing.T) protocol.CallToolParams {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.requests)
	var params protocol.CallToolParams
	require.NoError(t, json.Unmarshal(s.requests[len(s.requests)-1].Params, &params))
	return params
}

func newTestClient(t *testing.T, srv *fakeServer) *Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(srv.handler))
	t.Cleanup(server.Close)

	config := DefaultConfig()
	config.Transport.Endpoint = server.URL
	config.Transport.Reliability.Sleep = func(ctx context.Context, d time.Duration) error {
		return ctx.Err()
	}

	c, err := New(config)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestInitialize(t *testing.T) {
	srv := &fakeServer{}
	c := newTestClient(t, srv)

	res := c.Initialize(context.Background())
	require.True(t, res.Success)
	assert.Empty(t, res.Err)

	srv.mu.Lock()
	defer srv.mu.Unlock()
	require.Len(t, srv.requests, 1)
	assert.Equal(t, protocol.MethodInitialize, srv.requests[0].Method)

	var params protocol.InitializeParams
	require.NoError(t, json.Unmarshal(srv.requests[0].Params, &params))
	assert.Equal(t, protocol.ProtocolRevision, params.ProtocolVersion)
	assert.True(t, params.Capabilities.Roots.ListChanged)
	assert.True(t, params.Capabilities.Resources.ListChanged)
	assert.Equal(t, "kite-advisor-go", params.ClientInfo.Name)
}

func TestInitializeReturnsHandshakePayload(t *testing.T) {
	srv := &fakeServer{}
	c := newTestClient(t, srv)

	res := c.Initialize(context.Background())
	require.True(t, res.Success)
	require.NotEmpty(t, res.Data)

	var body struct {
		Result struct {
			ServerInfo protocol.ClientInfo `json:"serverInfo"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &body))
	assert.Equal(t, "kite-mcp", body.Result.ServerInfo.Name)
	assert.Equal(t, "1.0", body.Result.ServerInfo.Version)
}

func TestInitializeExhaustsRetries(t *testing.T) {
	srv := &fakeServer{failWith: http.StatusInternalServerError}
	c := newTestClient(t, srv)

	res := c.Initialize(context.Background())
	require.False(t, res.Success)
	assert.Equal(t, "failed to initialize MCP connection after all retries", res.Err)
	assert.Empty(t, res.Data)

	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.Len(t, srv.requests, 3)
}

func TestInitializeKeepsNonExhaustionCause(t *testing.T) {
	srv := &fakeServer{}
	c := newTestClient(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := c.Initialize(ctx)
	require.False(t, res.Success)
	assert.NotEqual(t, "failed to initialize MCP connection after all retries", res.Err,
		"the fixed exhaustion reason is reserved for a consumed retry budget")
	assert.Contains(t, res.Err, "context canceled")
}

func TestRequestLogin(t *testing.T) {
	srv := &fakeServer{loginText: loginText}
	c := newTestClient(t, srv)

	res := c.RequestLogin(context.Background())
	require.True(t, res.Success)
	assert.Empty(t, res.Err)
	assert.Empty(t, res.Data)
	assert.Equal(t, "https://kite.zerodha.com/connect/login?v=3&api_key=test", res.LoginURL)
	assert.Equal(t, StatePendingLogin, c.State())

	params := srv.lastToolCall(t)
	assert.Equal(t, protocol.ToolLogin, params.Name)
	assert.Empty(t, params.Arguments)
}

func TestRequestLoginInvalidResponse(t *testing.T) {
	srv := &fakeServer{loginText: "no relevant content"}
	c := newTestClient(t, srv)

	res := c.RequestLogin(context.Background())
	require.False(t, res.Success)
	assert.Equal(t, "invalid response format", res.Err)
	assert.Empty(t, res.LoginURL)
	assert.Equal(t, StateUnauthenticated, c.State())
}

func TestRequestLoginServerError(t *testing.T) {
	srv := &fakeServer{failWith: http.StatusInternalServerError}
	c := newTestClient(t, srv)

	res := c.RequestLogin(context.Background())
	require.False(t, res.Success)
	assert.Contains(t, res.Err, "status 500")
	assert.Equal(t, StateUnauthenticated, c.State())

	// Tool calls never retry.
	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.Len(t, srv.requests, 1)
}

func TestGetAdvice(t *testing.T) {
	srv := &fakeServer{adviceText: "Allocate 80% equity, 15% debt, 5% gold."}
	c := newTestClient(t, srv)

	res := c.GetAdvice(context.Background(), AdviceRequest{
		Age:       25,
		Amount:    100000,
		PlanType:  "SIP",
		RiskLevel: "high",
	})
	require.True(t, res.Success)
	require.NotEmpty(t, res.Data)

	text, ok := res.AdviceText()
	require.True(t, ok)
	assert.Equal(t, "Allocate 80% equity, 15% debt, 5% gold.", text)

	params := srv.lastToolCall(t)
	assert.Equal(t, protocol.ToolInvestmentAdvice, params.Name)
	assert.Equal(t, float64(25), params.Arguments["age"])
	assert.Equal(t, float64(100000), params.Arguments["amount"])
	assert.Equal(t, "SIP", params.Arguments["investment_type"])
	assert.Equal(t, "high", params.Arguments["risk_profile"])

	query, _ := params.Arguments["query"].(string)
	assert.Contains(t, query, "I am 25 years old")
	assert.Contains(t, query, "₹100,000 through SIP")
	assert.Contains(t, query, "risk tolerance is high")
}

func TestGetAdviceServerError(t *testing.T) {
	srv := &fakeServer{failWith: http.StatusBadGateway}
	c := newTestClient(t, srv)

	res := c.GetAdvice(context.Background(), AdviceRequest{Age: 40, Amount: 50000, PlanType: "Lumpsum", RiskLevel: "medium"})
	require.False(t, res.Success)
	assert.Empty(t, res.Data)
	assert.Contains(t, res.Err, "status 502")

	_, ok := res.AdviceText()
	assert.False(t, ok)
}

func TestHandleCallback(t *testing.T) {
	c := newTestClient(t, &fakeServer{})

	id, err := c.HandleCallback("https://host/cb?status=success&session_id=abc123&foo=bar")
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)
	assert.Equal(t, StateAuthenticated, c.State())
	assert.Equal(t, "abc123", c.SessionID())
	assert.True(t, c.Authenticated())
}

func TestHandleCallbackMissingSessionID(t *testing.T) {
	c := newTestClient(t, &fakeServer{})

	_, err := c.HandleCallback("https://host/cb?status=success")
	require.Error(t, err)
	assert.True(t, clierrors.IsCategory(err, clierrors.CategoryExtraction))
	assert.Equal(t, StateUnauthenticated, c.State())
	assert.Empty(t, c.SessionID())
}

func TestLogoutIsIdempotent(t *testing.T) {
	c := newTestClient(t, &fakeServer{})

	_, err := c.HandleCallback("https://host/cb?session_id=xyz")
	require.NoError(t, err)
	require.True(t, c.Authenticated())

	c.Logout()
	assert.Equal(t, StateUnauthenticated, c.State())
	assert.Empty(t, c.SessionID())

	c.Logout()
	assert.Equal(t, StateUnauthenticated, c.State())
}

func TestWithSession(t *testing.T) {
	srv := &fakeServer{}
	server := httptest.NewServer(http.HandlerFunc(srv.handler))
	defer server.Close()

	config := DefaultConfig()
	config.Transport.Endpoint = server.URL

	var inside *Client
	err := WithSession(config, func(c *Client) error {
		inside = c
		if init := c.Initialize(context.Background()); !init.Success {
			return errors.New(init.Err)
		}
		return nil
	})
	require.NoError(t, err)

	// The transport is released when WithSession returns.
	_, err = inside.transport.SendRequest(context.Background(), protocol.MethodCallTool, nil)
	assert.Error(t, err)
}

func TestWithSessionPropagatesError(t *testing.T) {
	config := DefaultConfig()
	config.Transport.Endpoint = "http://127.0.0.1:0"

	err := WithSession(config, func(c *Client) error {
		res := c.RequestLogin(context.Background())
		if !res.Success {
			return clierrors.New(clierrors.CodeTransportError, res.Err,
				clierrors.CategoryTransport, clierrors.SeverityError)
		}
		return nil
	})
	require.Error(t, err)
}

func TestAdviceQueryFormatsAmount(t *testing.T) {
	query := adviceQuery(AdviceRequest{Age: 55, Amount: 2500000, PlanType: "SWP", RiskLevel: "low"})
	assert.Contains(t, query, "₹2,500,000")
	assert.Contains(t, query, "through SWP")
	assert.False(t, strings.Contains(query, "%!"), "format verbs must all be consumed")
}
