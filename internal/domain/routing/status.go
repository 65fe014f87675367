// Package routing defines the core domain types for default-gateway
// routing: routing table entries and the result codes returned by
// route-manipulating operations.
package routing

import "fmt"

// Kind enumerates the module-local result codes returned by routing
// operations. Kind is distinct from a transport-level error code; callers
// that expose these results over RPC must map Kind to whatever status
// space that transport uses.
type Kind int

const (
	// KindOk indicates the operation completed successfully.
	KindOk Kind = iota
	// KindNoOp indicates no operation was necessary.
	KindNoOp
	// KindUnknownError indicates an unspecified failure, usually a kernel
	// operation that did not succeed.
	KindUnknownError
	// KindNotFound indicates the requested interface or routing entry does
	// not exist.
	KindNotFound
	// KindNotImplemented indicates the operation is not supported by the
	// active routing adapter.
	KindNotImplemented
	// KindPermissionError indicates the operation was denied due to
	// insufficient privilege.
	KindPermissionError
	// KindInvalidArguments indicates the caller supplied invalid arguments.
	KindInvalidArguments
)

// String returns the human-readable name of the result kind.
func (k Kind) String() string {
	switch k {
	case KindOk:
		return "Ok"
	case KindNoOp:
		return "NoOp"
	case KindUnknownError:
		return "UnknownError"
	case KindNotFound:
		return "NotFound"
	case KindNotImplemented:
		return "NotImplemented"
	case KindPermissionError:
		return "PermissionError"
	case KindInvalidArguments:
		return "InvalidArguments"
	default:
		return "Unknown"
	}
}

// Status carries a result Kind together with a human-readable message. It
// implements error so it composes with the rest of Go's error handling,
// while still letting callers switch on Kind for programmatic decisions.
type Status struct {
	kind    Kind
	message string
}

// NewStatus builds a Status with the given kind and message.
func NewStatus(kind Kind, message string) Status {
	return Status{kind: kind, message: message}
}

// Ok returns a Status representing success.
func Ok() Status {
	return Status{kind: KindOk}
}

// Kind returns the result kind.
func (s Status) Kind() Kind {
	return s.kind
}

// Message returns the human-readable description, if any.
func (s Status) Message() string {
	return s.message
}

// IsOk reports whether the status represents success.
func (s Status) IsOk() bool {
	return s.kind == KindOk
}

// Error implements the error interface. A Status of KindOk still formats a
// message (callers should prefer IsOk for success checks rather than a nil
// comparison, since Status is a value type, not a pointer).
func (s Status) Error() string {
	if s.message == "" {
		return s.kind.String()
	}
	return fmt.Sprintf("%s: %s", s.kind, s.message)
}
