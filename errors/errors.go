// Package errors provides the bridge's bounded error taxonomy. Every failure
// crossing an adapter boundary is wrapped into an *Error carrying a Kind,
// the upstream HTTP status where one applies, and a length-bounded detail
// string, so callers can map failures without inspecting free-form text.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies bridge errors.
type Kind int

const (
	// KindInvalidRequest indicates caller input failed a precondition before
	// reaching an adapter.
	KindInvalidRequest Kind = iota
	// KindServiceUnavailable indicates a connection-level failure (refused,
	// DNS, network).
	KindServiceUnavailable
	// KindTimeout indicates the request exceeded the configured wait budget.
	KindTimeout
	// KindBadUpstreamResponse indicates the backend body failed schema or
	// JSON expectations.
	KindBadUpstreamResponse
	// KindUpstreamLogicError indicates the backend explicitly reported an
	// error field; its message is passed through.
	KindUpstreamLogicError
	// KindInternal indicates an unexpected adapter-side failure.
	KindInternal
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInvalidRequest:
		return "invalid_request"
	case KindServiceUnavailable:
		return "service_unavailable"
	case KindTimeout:
		return "timeout"
	case KindBadUpstreamResponse:
		return "bad_upstream_response"
	case KindUpstreamLogicError:
		return "upstream_logic_error"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// HTTPStatus returns the HTTP status a server surface should answer with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindBadUpstreamResponse, KindUpstreamLogicError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// MaxDetailLen bounds the detail string of every Error. Upstream bodies can
// be arbitrarily large; diagnostics must not echo them whole.
const MaxDetailLen = 256

// Error is the structured bridge error.
type Error struct {
	// Kind classifies the failure.
	Kind Kind
	// StatusCode is the upstream HTTP status (0 when none applies).
	StatusCode int
	// Op names the operation that failed, e.g. "space.invoke fn=2".
	Op string
	// Detail is a bounded human-readable description.
	Detail string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("bridge: %s", e.Kind)
	if e.Op != "" {
		msg += " [" + e.Op + "]"
	}
	if e.StatusCode > 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// WithOp sets the operation context and returns the receiver.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// Truncate bounds a detail string to MaxDetailLen runes-worth of bytes,
// appending an ellipsis marker when cut.
func Truncate(s string) string {
	if len(s) <= MaxDetailLen {
		return s
	}
	return s[:MaxDetailLen] + "..."
}

// InvalidRequest creates an error for caller input that failed a precondition.
func InvalidRequest(detail string) *Error {
	return &Error{Kind: KindInvalidRequest, Detail: Truncate(detail)}
}

// Unavailable creates an error for a connection-level failure.
func Unavailable(err error) *Error {
	return &Error{Kind: KindServiceUnavailable, Detail: Truncate(err.Error()), Err: err}
}

// Timeout creates an error for an exceeded wait budget.
func Timeout(err error) *Error {
	return &Error{Kind: KindTimeout, Detail: Truncate(err.Error()), Err: err}
}

// BadUpstream creates an error for a backend reply that failed schema or
// JSON expectations. statusCode may be 0 when the status itself was fine.
func BadUpstream(statusCode int, detail string) *Error {
	return &Error{Kind: KindBadUpstreamResponse, StatusCode: statusCode, Detail: Truncate(detail)}
}

// UpstreamLogic creates an error for a backend-reported error message.
func UpstreamLogic(message string) *Error {
	return &Error{Kind: KindUpstreamLogicError, Detail: Truncate(message)}
}

// Internal creates an error for an unexpected adapter-side failure.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Detail: Truncate(err.Error()), Err: err}
}

// FromTransport classifies an error returned by http.Client.Do: a dead
// context means the wait budget ran out, anything else is a network failure.
func FromTransport(ctxErr, err error) *Error {
	if ctxErr != nil {
		return Timeout(err)
	}
	return Unavailable(err)
}

// As converts err to an *Error if possible.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, k Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == k
}

// IsInvalidRequest checks for a precondition failure.
func IsInvalidRequest(err error) bool { return IsKind(err, KindInvalidRequest) }

// IsUnavailable checks for a connection-level failure.
func IsUnavailable(err error) bool { return IsKind(err, KindServiceUnavailable) }

// IsTimeout checks for an exceeded wait budget.
func IsTimeout(err error) bool { return IsKind(err, KindTimeout) }

// IsBadUpstream checks for a schema/JSON failure in a backend reply.
func IsBadUpstream(err error) bool { return IsKind(err, KindBadUpstreamResponse) }

// IsUpstreamLogic checks for a backend-reported error.
func IsUpstreamLogic(err error) bool { return IsKind(err, KindUpstreamLogicError) }
