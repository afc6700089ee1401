// Package client implements the high-level Kite MCP advisory client: the
// handshake, the login flow, and advisory fetches, on top of the transport
// layer. All remote interactions return the Result envelope; faults never
// escape an operation as a panic or a raw transport error.
package client

import (
	"context"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	clierrors "github.com/Jaysankar7991/kite-advisor-go/pkg/errors"
	"github.com/Jaysankar7991/kite-advisor-go/pkg/extract"
	"github.com/Jaysankar7991/kite-advisor-go/pkg/logging"
	"github.com/Jaysankar7991/kite-advisor-go/pkg/observability"
	"github.com/Jaysankar7991/kite-advisor-go/pkg/protocol"
	"github.com/Jaysankar7991/kite-advisor-go/pkg/transport"
)

const (
	clientName    = "kite-advisor-go"
	clientVersion = "1.0.0"
)

// initFailedMessage is the single user-facing reason for a handshake that
// did not succeed within the retry budget.
const initFailedMessage = "failed to initialize MCP connection after all retries"

// invalidResponseMessage is returned when a login response decodes but does
// not contain a recognizable login URL.
const invalidResponseMessage = "invalid response format"

// Config configures a Client.
type Config struct {
	// Transport configures the underlying HTTP session.
	Transport transport.TransportConfig

	// Name and Version identify this client during the handshake.
	Name    string
	Version string

	// Logger receives client diagnostics. Nil silences them.
	Logger logging.Logger

	// Metrics receives tool-call and session-state measurements. Optional.
	Metrics *observability.Metrics
}

// DefaultConfig returns a client configuration with production defaults.
func DefaultConfig() Config {
	return Config{
		Transport: transport.DefaultConfig(),
		Name:      clientName,
		Version:   clientVersion,
	}
}

// AdviceRequest carries the investor profile for an advisory fetch.
type AdviceRequest struct {
	// Age of the investor in years.
	Age int

	// Amount to invest, in rupees.
	Amount float64

	// PlanType is the investment vehicle: SIP, Lumpsum, or SWP.
	PlanType string

	// RiskLevel is the investor's risk tolerance: low, medium, or high.
	RiskLevel string
}

// Client talks to the Kite MCP server. A client owns its transport and is
// released with Close. Operations are safe for sequential use; the session
// state is safe to read concurrently.
type Client struct {
	transport transport.Transport
	logger    logging.Logger
	metrics   *observability.Metrics
	session   *Session
	info      protocol.ClientInfo
}

// New creates a client and its transport from the configuration.
func New(config Config) (*Client, error) {
	if config.Name == "" {
		config.Name = clientName
	}
	if config.Version == "" {
		config.Version = clientVersion
	}
	if config.Logger == nil {
		config.Logger = logging.Discard()
	}
	if config.Transport.Logger == nil {
		config.Transport.Logger = config.Logger
	}
	if config.Transport.Observability.Metrics == nil {
		config.Transport.Observability.Metrics = config.Metrics
	}

	t, err := transport.New(config.Transport)
	if err != nil {
		return nil, err
	}

	return &Client{
		transport: t,
		logger:    config.Logger.WithFields(logging.String("component", "client")),
		metrics:   config.Metrics,
		session:   &Session{},
		info:      protocol.ClientInfo{Name: config.Name, Version: config.Version},
	}, nil
}

// WithSession runs fn against a freshly created client and guarantees the
// transport is released afterward, whatever path fn takes.
func WithSession(config Config, fn func(*Client) error) error {
	c, err := New(config)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}

// Initialize performs the MCP handshake and hands the server's response
// payload back in the envelope's Data field. The transport's retry policy
// covers this method; an exhausted budget surfaces as a single fixed
// reason, while any other fault keeps its own message.
func (c *Client) Initialize(ctx context.Context) Result {
	params := protocol.InitializeParams{
		ProtocolVersion: protocol.ProtocolRevision,
		Capabilities: protocol.Capabilities{
			Roots:     protocol.Capability{ListChanged: true},
			Resources: protocol.Capability{ListChanged: true},
		},
		ClientInfo: c.info,
	}

	c.logger.Info("connecting to Kite MCP server",
		logging.String("endpoint", c.transport.Endpoint()))

	raw, err := c.transport.SendRequest(ctx, protocol.MethodInitialize, params)
	if err != nil {
		c.logger.WithError(err).Error("handshake failed")
		if ce, ok := clierrors.As(err); ok && ce.Code() == clierrors.CodeRetriesExhausted {
			return failure(initFailedMessage)
		}
		return failure(err.Error())
	}

	c.logger.Info("MCP connection initialized")
	return Result{Success: true, Data: raw}
}

// RequestLogin asks the server for a Kite login URL. On success the
// session moves to the pending-login state and the URL is returned in the
// envelope. The request gets exactly one attempt.
func (c *Client) RequestLogin(ctx context.Context) Result {
	start := time.Now()
	res := c.requestLogin(ctx)
	c.recordToolCall(protocol.ToolLogin, res, start)
	return res
}

func (c *Client) requestLogin(ctx context.Context) Result {
	c.logger.Info("requesting login URL")

	params := protocol.CallToolParams{
		Name:      protocol.ToolLogin,
		Arguments: map[string]interface{}{},
	}
	raw, err := c.transport.SendRequest(ctx, protocol.MethodCallTool, params)
	if err != nil {
		c.logger.WithError(err).Error("login request failed")
		return failure(err.Error())
	}

	result, err := protocol.ParseToolResult(raw)
	if err != nil {
		c.logger.WithError(err).Error("undecodable login response")
		return failure(invalidResponseMessage)
	}
	text, ok := result.FirstText()
	if !ok {
		return failure(invalidResponseMessage)
	}
	url, ok := extract.LoginURL(text)
	if !ok {
		c.logger.Error("login response carries no login URL")
		return failure(invalidResponseMessage)
	}

	c.session.BeginLogin()
	c.logger.Info("login URL received")
	return Result{Success: true, LoginURL: url}
}

// GetAdvice fetches an investment recommendation for the given profile.
// The full response payload lands in the envelope's Data field; use
// AdviceText to pull out the advisory text. The request gets exactly one
// attempt.
func (c *Client) GetAdvice(ctx context.Context, req AdviceRequest) Result {
	start := time.Now()
	res := c.getAdvice(ctx, req)
	c.recordToolCall(protocol.ToolInvestmentAdvice, res, start)
	return res
}

func (c *Client) getAdvice(ctx context.Context, req AdviceRequest) Result {
	c.logger.Info("requesting investment advice",
		logging.Int("age", req.Age),
		logging.Float64("amount", req.Amount),
		logging.String("plan_type", req.PlanType),
		logging.String("risk_level", req.RiskLevel))

	params := protocol.CallToolParams{
		Name: protocol.ToolInvestmentAdvice,
		Arguments: map[string]interface{}{
			"query":           adviceQuery(req),
			"age":             req.Age,
			"amount":          req.Amount,
			"investment_type": req.PlanType,
			"risk_profile":    req.RiskLevel,
		},
	}
	raw, err := c.transport.SendRequest(ctx, protocol.MethodCallTool, params)
	if err != nil {
		c.logger.WithError(err).Error("advice request failed")
		return failure(err.Error())
	}

	c.logger.Info("investment advice received")
	return Result{Success: true, Data: raw}
}

// HandleCallback processes the post-login redirect URL, stores the
// extracted session id, and marks the session authenticated. Returns the
// session id.
func (c *Client) HandleCallback(callbackURL string) (string, error) {
	id, ok := extract.SessionID(callbackURL)
	if !ok {
		c.logger.Error("callback URL carries no session id")
		return "", clierrors.ExtractionFailed("session id")
	}

	c.session.Authenticate(id)
	if c.metrics != nil {
		c.metrics.SetAuthenticated(true)
	}
	c.logger.Info("session authenticated")
	return id, nil
}

// Logout discards the session id and returns to the unauthenticated
// state. Safe to call in any state, including repeatedly.
func (c *Client) Logout() {
	c.session.Reset()
	if c.metrics != nil {
		c.metrics.SetAuthenticated(false)
	}
	c.logger.Info("logged out")
}

// SessionID returns the current session id, empty until authenticated.
func (c *Client) SessionID() string { return c.session.ID() }

// State returns the current session state.
func (c *Client) State() SessionState { return c.session.State() }

// Authenticated reports whether the client holds a session id.
func (c *Client) Authenticated() bool { return c.session.Authenticated() }

// Close releases the underlying transport.
func (c *Client) Close() error {
	return c.transport.Close()
}

func (c *Client) recordToolCall(tool string, res Result, start time.Time) {
	if c.metrics == nil {
		return
	}
	status := "ok"
	if !res.Success {
		status = "error"
	}
	c.metrics.RecordToolCall(tool, status, time.Since(start))
}

// adviceQuery renders the investor profile as the free-form advisory
// prompt the server expects, with the amount grouped in thousands.
func adviceQuery(req AdviceRequest) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf(`I am %d years old and want to invest ₹%.0f through %s.
My risk tolerance is %s.

Please provide:
1. Optimal asset allocation (equity/debt/gold percentages)
2. Specific mutual fund recommendations
3. Expected returns over 5, 10, and 15 years
4. Current market conditions analysis
5. Tax-efficient investment strategy

Consider current market data, interest rates, and inflation while making recommendations.`,
		req.Age, req.Amount, req.PlanType, req.RiskLevel)
}
