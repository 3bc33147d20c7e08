package render

import "fmt"

// ErrorKind classifies a failed render attempt.
type ErrorKind string

const (
	// KindValidation is a bad target URL or parameter (provider 400).
	KindValidation ErrorKind = "validation"
	// KindUsageLimit is a local or provider-side allotment exhaustion.
	KindUsageLimit ErrorKind = "usage_limit"
	// KindLicense is a rejected access key (provider 403).
	KindLicense ErrorKind = "license_invalid"
	// KindServer is a provider-internal failure (5xx).
	KindServer ErrorKind = "server_error"
	// KindConnectivity is DNS/timeout/refused; the call never completed.
	KindConnectivity ErrorKind = "connectivity"
	// KindDecode is a base64 payload that could not be decoded.
	KindDecode ErrorKind = "decode"
	// KindUnknown is any other non-success response.
	KindUnknown ErrorKind = "unknown"
)

// Error is a classified render failure carrying the provider's message
// when one was available.
type Error struct {
	Kind    ErrorKind
	Message string
	Status  int // HTTP status when the provider responded; 0 otherwise
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("render %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("render %s", e.Kind)
}

// Unwrap exposes the underlying transport error, if any.
func (e *Error) Unwrap() error { return e.cause }

func newError(kind ErrorKind, message string, status int, cause error) *Error {
	return &Error{Kind: kind, Message: message, Status: status, cause: cause}
}
