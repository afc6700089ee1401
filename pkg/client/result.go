package client

import (
	"encoding/json"

	"github.com/Jaysankar7991/kite-advisor-go/pkg/protocol"
)

// Result is the uniform outcome envelope of client operations. Exactly one
// of the success and failure sides is populated: on success Err is empty
// and the operation-specific field (Data or LoginURL) is set; on failure
// only Err carries the reason. Operations never return Go errors for
// remote or extraction failures, they fold them into this envelope.
type Result struct {
	// Success discriminates the two sides of the envelope.
	Success bool `json:"success"`

	// Data is the raw response payload of a successful handshake or
	// advisory fetch. Empty for login results.
	Data json.RawMessage `json:"data,omitempty"`

	// Err is the failure reason, set only when Success is false.
	Err string `json:"error,omitempty"`

	// LoginURL is the Kite login URL, set only on a successful login
	// request.
	LoginURL string `json:"login_url,omitempty"`
}

// failure builds the failure side of the envelope.
func failure(reason string) Result {
	return Result{Err: reason}
}

// AdviceText extracts the advisory text from a successful fetch result.
// Returns false on failure results or when the payload carries no text
// content.
func (r Result) AdviceText() (string, bool) {
	if !r.Success || len(r.Data) == 0 {
		return "", false
	}
	result, err := protocol.ParseToolResult(r.Data)
	if err != nil {
		return "", false
	}
	return result.FirstText()
}
