package errors

import (
	"fmt"
	"time"
)

// TransportError creates an error for a failure at the network layer.
func TransportError(endpoint string, cause error) ClientError {
	message := "transport error"
	if cause != nil {
		message = fmt.Sprintf("transport error: %s", cause.Error())
	}
	return Wrap(cause, CodeTransportError, message, CategoryTransport, SeverityError).
		WithContext(&Context{Endpoint: endpoint})
}

// ConnectionTimeout creates an error for a request that exceeded the
// session's total timeout.
func ConnectionTimeout(endpoint string, timeout time.Duration, cause error) ClientError {
	return Wrap(cause, CodeConnectionTimeout,
		fmt.Sprintf("connection timeout after %s", timeout),
		CategoryTransport, SeverityError).
		WithContext(&Context{Endpoint: endpoint})
}

// HTTPStatusError creates an error for a non-200 response status. The
// numeric status is embedded in the message, which is what callers surface.
func HTTPStatusError(endpoint string, status int) ClientError {
	return New(CodeHTTPStatus,
		fmt.Sprintf("request failed with status %d", status),
		CategoryProtocol, SeverityError).
		WithContext(&Context{Endpoint: endpoint})
}

// UndecodableBody creates an error for a response body that is not valid
// JSON.
func UndecodableBody(endpoint string, cause error) ClientError {
	return Wrap(cause, CodeUndecodableBody, "undecodable response body",
		CategoryProtocol, SeverityError).
		WithContext(&Context{Endpoint: endpoint})
}

// RetriesExhausted creates the terminal error for a retry loop that
// consumed all attempts. The message is fixed and independent of the
// per-attempt causes; the last cause is kept for diagnostics only.
func RetriesExhausted(method string, attempts int, lastErr error) ClientError {
	return Wrap(lastErr, CodeRetriesExhausted,
		fmt.Sprintf("request failed after %d attempts", attempts),
		CategoryProtocol, SeverityCritical).
		WithContext(&Context{Method: method, Operation: "retry_exhausted"})
}

// ExtractionFailed creates an error for a response that decoded cleanly
// but lacks the expected marker or content shape. Extraction failures are
// never retried.
func ExtractionFailed(what string) ClientError {
	return New(CodeExtractionFailed,
		fmt.Sprintf("could not extract %s from response", what),
		CategoryExtraction, SeverityWarning)
}
