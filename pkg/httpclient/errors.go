package httpclient

import (
	"errors"
	"fmt"
)

// Kind classifies why a request failed.
type Kind int

const (
	// KindAuth means no usable bearer token was supplied; the network was never touched.
	KindAuth Kind = iota + 1
	// KindStatus means the server answered outside the 2xx range.
	KindStatus
	// KindTransport means the request could not complete (DNS, timeout, reset, cancellation).
	KindTransport
	// KindDecode means a successful body could not be mapped onto the expected type.
	KindDecode
	// KindInvalid means the caller's arguments were rejected before any request was built.
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindStatus:
		return "http_status"
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	case KindInvalid:
		return "invalid_argument"
	default:
		return "unknown"
	}
}

const (
	// SignInRequiredMessage is surfaced when a call needs a token and none was given.
	SignInRequiredMessage = "Please sign in to continue."
	// TransportFailedMessage is surfaced for any failure below HTTP.
	TransportFailedMessage = "Request failed. Please try again."
	// DecodeFailedMessage is surfaced when a 2xx body does not match the endpoint's shape.
	DecodeFailedMessage = "Unexpected response from server."
)

// Error is the single failure shape returned by Client. Error() yields a message fit for
// direct display; the underlying cause, if any, is available via errors.Unwrap.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ErrSignInRequired is returned by BearerToken for blank credentials.
var ErrSignInRequired = &Error{Kind: KindAuth, Message: SignInRequiredMessage}

func statusError(status int, payload any) *Error {
	return &Error{
		Kind:    KindStatus,
		Status:  status,
		Message: extractErrorMessage(payload, status),
	}
}

func transportError(err error) *Error {
	return &Error{Kind: KindTransport, Message: TransportFailedMessage, Err: err}
}

func decodeError(err error) *Error {
	return &Error{Kind: KindDecode, Message: DecodeFailedMessage, Err: err}
}

// extractErrorMessage picks the display message out of an error body: a bare string,
// then "detail", then "message", then a synthesized status line.
func extractErrorMessage(payload any, status int) string {
	switch v := payload.(type) {
	case string:
		if v != "" {
			return v
		}
	case map[string]any:
		if detail, ok := v["detail"].(string); ok {
			return detail
		}
		if msg, ok := v["message"].(string); ok {
			return msg
		}
	}
	return fmt.Sprintf("Request failed with status %d.", status)
}

// Invalid returns a KindInvalid error with a formatted display message.
func Invalid(format string, args ...any) *Error {
	return &Error{Kind: KindInvalid, Message: fmt.Sprintf(format, args...)}
}

// AsError reports whether err is (or wraps) an *Error.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == kind
}

// IsAuth reports whether err came from a missing or blank token.
func IsAuth(err error) bool { return IsKind(err, KindAuth) }

// IsStatus reports whether err came from a non-2xx response.
func IsStatus(err error) bool { return IsKind(err, KindStatus) }

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	if e, ok := AsError(err); ok {
		return e.Status
	}
	return 0
}

// Message returns the display string for any error. Errors that did not come from
// this package collapse to the generic transport message.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := AsError(err); ok {
		return e.Message
	}
	return TransportFailedMessage
}
