package protocol

import "encoding/json"

const (
	// ProtocolRevision is the MCP revision spoken during the handshake.
	ProtocolRevision = "2024-11-05"

	// Methods used against the Kite MCP endpoint.
	MethodInitialize = "initialize"
	MethodCallTool   = "tools/call"

	// Remote capabilities invoked through tools/call.
	ToolLogin            = "login"
	ToolInvestmentAdvice = "get_investment_advice"
)

// Capability declares list-change notification support for one capability.
type Capability struct {
	ListChanged bool `json:"listChanged"`
}

// Capabilities is the client capability set declared during the handshake.
type Capabilities struct {
	Roots     Capability `json:"roots"`
	Resources Capability `json:"resources"`
}

// ClientInfo identifies the connecting client to the server.
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InitializeParams defines the parameters for the initialize request.
type InitializeParams struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
	ClientInfo      ClientInfo   `json:"clientInfo"`
}

// CallToolParams defines the parameters for a tools/call request.
type CallToolParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// Content is one element of a tool result's content list. The Kite server
// returns advisory and login payloads as text content.
type Content struct {
	Type string `json:"type,omitempty"`
	Text string `json:"text"`
}

// CallToolResult is the result shape of a tool invocation.
type CallToolResult struct {
	Content []Content `json:"content"`
}

// FirstText returns the text of the first content element, if any. The
// server's login and advisory responses put the interesting text there.
func (r *CallToolResult) FirstText() (string, bool) {
	if r == nil || len(r.Content) == 0 {
		return "", false
	}
	return r.Content[0].Text, true
}

// ParseToolResult decodes a raw JSON-RPC result into a CallToolResult.
func ParseToolResult(raw json.RawMessage) (*CallToolResult, error) {
	var wrapped struct {
		Result CallToolResult `json:"result"`
	}
	// Tool payloads arrive either as the bare result object or wrapped in a
	// full response body, depending on the server build.
	if err := json.Unmarshal(raw, &wrapped); err == nil && len(wrapped.Result.Content) > 0 {
		return &wrapped.Result, nil
	}
	var result CallToolResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
