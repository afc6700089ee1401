// Package errors provides structured error handling for the advisory client.
// It classifies failures into the categories the client cares about
// (transport, protocol, extraction) and carries context for diagnostics.
// None of these errors cross the public client boundary; the client folds
// them into its result envelope.
package errors

import (
	"fmt"
	"time"
)

// Category classifies an error for handling and retry decisions.
type Category string

const (
	// CategoryTransport covers connection and timeout failures at the
	// network layer.
	CategoryTransport Category = "transport"
	// CategoryProtocol covers non-success status codes and undecodable
	// response bodies.
	CategoryProtocol Category = "protocol"
	// CategoryExtraction covers well-formed responses that lack the
	// expected marker or shape. Never retried.
	CategoryExtraction Category = "extraction"
	// CategoryInternal covers everything else.
	CategoryInternal Category = "internal"
)

// Severity indicates how critical an error is.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Context provides additional context about where an error occurred.
type Context struct {
	RequestID string    `json:"request_id,omitempty"`
	Method    string    `json:"method,omitempty"`
	Endpoint  string    `json:"endpoint,omitempty"`
	Component string    `json:"component,omitempty"`
	Operation string    `json:"operation,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ClientError is the interface implemented by all errors in this package.
type ClientError interface {
	error

	// Code returns the error code.
	Code() int

	// Message returns the human-readable error message.
	Message() string

	// Category returns the error category for classification.
	Category() Category

	// Severity returns the error severity level.
	Severity() Severity

	// Context returns the error context information.
	Context() *Context

	// Retryable reports whether the failure may succeed on a retry.
	Retryable() bool

	// WithContext returns a copy of the error with the provided context.
	WithContext(ctx *Context) ClientError

	// WithDetail returns a copy of the error with additional detail.
	WithDetail(detail string) ClientError

	// Unwrap returns the underlying error for error chain traversal.
	Unwrap() error
}

type baseError struct {
	code      int
	message   string
	details   string
	category  Category
	severity  Severity
	retryable bool
	context   *Context
	cause     error
}

func (e *baseError) Error() string {
	if e.details != "" {
		return fmt.Sprintf("%s: %s", e.message, e.details)
	}
	return e.message
}

func (e *baseError) Code() int          { return e.code }
func (e *baseError) Message() string    { return e.message }
func (e *baseError) Category() Category { return e.category }
func (e *baseError) Severity() Severity { return e.severity }
func (e *baseError) Context() *Context  { return e.context }
func (e *baseError) Retryable() bool    { return e.retryable }
func (e *baseError) Unwrap() error      { return e.cause }

func (e *baseError) WithContext(ctx *Context) ClientError {
	newErr := *e
	if ctx != nil && ctx.Timestamp.IsZero() {
		ctx.Timestamp = time.Now()
	}
	newErr.context = ctx
	return &newErr
}

func (e *baseError) WithDetail(detail string) ClientError {
	newErr := *e
	if newErr.details != "" {
		newErr.details = fmt.Sprintf("%s; %s", newErr.details, detail)
	} else {
		newErr.details = detail
	}
	return &newErr
}

// New creates a new ClientError with the specified parameters.
func New(code int, message string, category Category, severity Severity) ClientError {
	return &baseError{
		code:      code,
		message:   message,
		category:  category,
		severity:  severity,
		retryable: category == CategoryTransport || category == CategoryProtocol,
		context:   &Context{Timestamp: time.Now()},
	}
}

// Wrap wraps an existing error as a ClientError.
func Wrap(err error, code int, message string, category Category, severity Severity) ClientError {
	return &baseError{
		code:      code,
		message:   message,
		category:  category,
		severity:  severity,
		retryable: category == CategoryTransport || category == CategoryProtocol,
		cause:     err,
		context:   &Context{Timestamp: time.Now()},
	}
}

// As extracts a ClientError from any error.
func As(err error) (ClientError, bool) {
	if err == nil {
		return nil, false
	}
	ce, ok := err.(ClientError)
	return ce, ok
}

// IsCategory checks if an error is of a specific category.
func IsCategory(err error, category Category) bool {
	if ce, ok := As(err); ok {
		return ce.Category() == category
	}
	return false
}

// IsRetryable reports whether a retry of the failed operation may succeed.
// Errors from outside this package are treated as retryable transport
// faults, matching the behavior of the retry loop they feed.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if ce, ok := As(err); ok {
		return ce.Retryable()
	}
	return true
}
