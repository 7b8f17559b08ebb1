package derrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for callers that need to branch on it.
type Kind string

const (
	KindInvalidInput     Kind = "invalid_input"     // client-side validation, never reached the network
	KindNetwork          Kind = "network"           // transport unreachable
	KindAuth             Kind = "auth"              // missing/expired credential (401/403)
	KindValidation       Kind = "validation"        // structured 4xx from the service
	KindServer           Kind = "server"            // 5xx from the service
	KindInsufficientData Kind = "insufficient_data" // fewer than two scans for comparison
)

// Error carries a kind plus a user-facing message. Status is the HTTP status
// that produced it, zero when the failure never reached the network.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a bare kinded error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf formats the message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap keeps the underlying error for %w chains.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or "" for non-taxonomy errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// Is reports whether err carries the given kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// IsAuth is the cross-cutting check callers use to escalate to a
// session-wide logout.
func IsAuth(err error) bool { return Is(err, KindAuth) }
