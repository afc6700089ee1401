package errors

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	err := New(CodeProtocolError, "something broke", CategoryProtocol, SeverityError)

	if err.Code() != CodeProtocolError {
		t.Errorf("Code() = %d, want %d", err.Code(), CodeProtocolError)
	}
	if err.Category() != CategoryProtocol {
		t.Errorf("Category() = %s, want %s", err.Category(), CategoryProtocol)
	}
	if err.Error() != "something broke" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !err.Retryable() {
		t.Error("protocol errors should be retryable")
	}
	if err.Context() == nil || err.Context().Timestamp.IsZero() {
		t.Error("expected context with timestamp")
	}
}

func TestWithDetail(t *testing.T) {
	err := New(CodeTransportError, "transport error", CategoryTransport, SeverityError)
	detailed := err.WithDetail("connection refused")

	if detailed.Error() != "transport error: connection refused" {
		t.Errorf("Error() = %q", detailed.Error())
	}
	// Original is unchanged.
	if err.Error() != "transport error" {
		t.Errorf("original mutated: %q", err.Error())
	}

	stacked := detailed.WithDetail("after 2 attempts")
	if stacked.Error() != "transport error: connection refused; after 2 attempts" {
		t.Errorf("Error() = %q", stacked.Error())
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := Wrap(cause, CodeConnectionFailed, "connect failed", CategoryTransport, SeverityCritical)

	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to be reachable via errors.Is")
	}
}

func TestConstructors(t *testing.T) {
	t.Run("HTTPStatusError embeds status", func(t *testing.T) {
		err := HTTPStatusError("https://mcp.kite.trade/sse", 503)
		if err.Error() != "request failed with status 503" {
			t.Errorf("Error() = %q", err.Error())
		}
		if err.Category() != CategoryProtocol {
			t.Errorf("Category() = %s", err.Category())
		}
	})

	t.Run("RetriesExhausted is fixed message", func(t *testing.T) {
		err := RetriesExhausted("initialize", 3, fmt.Errorf("status 500"))
		if err.Message() != "request failed after 3 attempts" {
			t.Errorf("Message() = %q", err.Message())
		}
		if err.Context().Method != "initialize" {
			t.Errorf("Context().Method = %q", err.Context().Method)
		}
	})

	t.Run("ExtractionFailed not retryable", func(t *testing.T) {
		err := ExtractionFailed("login URL")
		if err.Retryable() {
			t.Error("extraction errors must not be retryable")
		}
		if IsRetryable(err) {
			t.Error("IsRetryable should report false")
		}
	})

	t.Run("ConnectionTimeout", func(t *testing.T) {
		err := ConnectionTimeout("https://mcp.kite.trade/sse", 30*time.Second, fmt.Errorf("deadline exceeded"))
		if err.Category() != CategoryTransport {
			t.Errorf("Category() = %s", err.Category())
		}
	})
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(nil) {
		t.Error("nil is not retryable")
	}
	if !IsRetryable(fmt.Errorf("plain error")) {
		t.Error("unknown errors default to retryable")
	}
	if !IsCategory(HTTPStatusError("x", 500), CategoryProtocol) {
		t.Error("IsCategory mismatch")
	}
}
