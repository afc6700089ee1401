package errors

// Error codes used by the advisory client. The numbering follows the
// JSON-RPC implementation-defined range so codes can travel inside error
// responses without clashing with the standard codes.
const (
	// Transport errors (-32500 to -32599)
	CodeTransportError    int = -32500 // Generic transport error
	CodeConnectionFailed  int = -32501 // Failed to establish connection
	CodeConnectionTimeout int = -32503 // Connection timed out

	// Protocol errors (-32900 to -32999)
	CodeProtocolError    int = -32900 // Generic protocol error
	CodeHTTPStatus       int = -32901 // Non-200 HTTP status
	CodeUndecodableBody  int = -32902 // Response body is not valid JSON
	CodeRetriesExhausted int = -32903 // All retry attempts consumed

	// Extraction errors (-32950 to -32959)
	CodeExtractionFailed int = -32950 // Expected marker or shape missing
)
