// Package kiteadvisor provides a Go client for the Kite MCP investment
// advisory service, together with a local portfolio calculator.
//
// The sub-packages split the work:
//
//   - pkg/client: the high-level advisory client (handshake, login flow,
//     advice fetches, session state)
//   - pkg/transport: the HTTP JSON-RPC transport with retry and
//     observability middleware
//   - pkg/protocol: the wire types spoken to the server
//   - pkg/extract: marker-based extraction of login URLs and session ids
//   - pkg/advisor: the deterministic allocation and projection calculator
//
// A typical session:
//
//	config := kiteadvisor.DefaultConfig()
//	err := kiteadvisor.WithSession(config, func(c *client.Client) error {
//	    if init := c.Initialize(ctx); !init.Success {
//	        return errors.New(init.Err)
//	    }
//	    login := c.RequestLogin(ctx)
//	    // hand login.LoginURL to the user, collect the callback URL
//	    if _, err := c.HandleCallback(callbackURL); err != nil {
//	        return err
//	    }
//	    advice := c.GetAdvice(ctx, client.AdviceRequest{Age: 30, Amount: 100000, PlanType: "SIP", RiskLevel: "medium"})
//	    ...
//	    return nil
//	})
package kiteadvisor

import (
	"github.com/Jaysankar7991/kite-advisor-go/pkg/advisor"
	"github.com/Jaysankar7991/kite-advisor-go/pkg/client"
	"github.com/Jaysankar7991/kite-advisor-go/pkg/transport"
)

// Version is the current version of the module.
const Version = "1.0.0"

// Direct access to the core components.
var (
	// NewClient creates a new advisory client.
	NewClient = client.New

	// WithSession runs a function against a scoped client whose transport
	// is released afterward.
	WithSession = client.WithSession

	// DefaultConfig returns the production client configuration.
	DefaultConfig = client.DefaultConfig

	// NewTransport creates a transport from a TransportConfig.
	NewTransport = transport.New

	// NewCalculator creates the offline portfolio calculator.
	NewCalculator = advisor.NewCalculator
)

// DefaultEndpoint is the production Kite MCP endpoint.
const DefaultEndpoint = transport.DefaultEndpoint
