package epoll

import "errors"

// Kind identifies one of the error conditions this facility can surface.
// A traditional syscall boundary returns these as negative magnitudes;
// this package returns ordinary Go errors wrapping a Kind and leaves
// magnitude encoding to that boundary.
type Kind int

const (
	// KindInvalidArg covers unknown operation codes and an add with no
	// descriptor table to resolve against.
	KindInvalidArg Kind = iota
	// KindBadDescriptor covers a descriptor that does not resolve to a file.
	KindBadDescriptor
	// KindAlreadyPresent covers add() on a descriptor already registered.
	KindAlreadyPresent
	// KindNotFound covers modify()/delete() on a descriptor not registered.
	KindNotFound
	// KindOutOfMemory covers allocation failure while registering an entry.
	KindOutOfMemory
	// KindFault covers a null/invalid output buffer supplied to wait().
	KindFault
	// KindNotImplemented covers accepted-but-unsupported request shapes,
	// such as a non-null signal mask passed to wait().
	KindNotImplemented
)

// String names the error kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidArg:
		return "InvalidArg"
	case KindBadDescriptor:
		return "BadDescriptor"
	case KindAlreadyPresent:
		return "AlreadyPresent"
	case KindNotFound:
		return "NotFound"
	case KindOutOfMemory:
		return "OutOfMemory"
	case KindFault:
		return "Fault"
	case KindNotImplemented:
		return "NotImplemented"
	default:
		return "Unknown"
	}
}

// Error is the error type returned by every exported operation in this
// package. It carries a [Kind] so callers can switch on the condition
// without parsing strings, plus an optional wrapped cause.
type Error struct {
	Kind  Kind
	Op    string
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Op + ": " + e.Kind.String() + ": " + e.Cause.Error()
	}
	return e.Op + ": " + e.Kind.String()
}

// Unwrap returns the wrapped cause, if any, for use with [errors.Is] and
// [errors.As].
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Kind, so callers
// can write errors.Is(err, epoll.ErrNotFound) regardless of which
// operation produced err.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

// newErr builds an *Error for the given op and kind.
func newErr(op string, kind Kind) *Error {
	return &Error{Kind: kind, Op: op}
}

// wrapErr builds an *Error for the given op and kind, wrapping cause.
func wrapErr(op string, kind Kind, cause error) *Error {
	return &Error{Kind: kind, Op: op, Cause: cause}
}

// Sentinel values usable with errors.Is, independent of the operation
// that produced the error.
var (
	ErrInvalidArg     = &Error{Kind: KindInvalidArg}
	ErrBadDescriptor  = &Error{Kind: KindBadDescriptor}
	ErrAlreadyPresent = &Error{Kind: KindAlreadyPresent}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrOutOfMemory    = &Error{Kind: KindOutOfMemory}
	ErrFault          = &Error{Kind: KindFault}
	ErrNotImplemented = &Error{Kind: KindNotImplemented}
)
