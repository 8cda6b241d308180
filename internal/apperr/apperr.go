// Package apperr defines the error kinds shared by every component of the
// control plane. Model services, the reconciler, and the GitOps writer all
// classify failures into one of these kinds so callers can decide whether to
// retry, log-and-acknowledge, or surface a diagnostic to a human.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is one of the error classes from the error handling design.
type Kind int

const (
	// Internal indicates a bug-class failure with no well-defined recovery.
	Internal Kind = iota
	// InvalidArgument indicates malformed input or a violated invariant.
	InvalidArgument
	// NotFound indicates the referenced entity does not exist.
	NotFound
	// Conflict indicates a referenced-from-other-entity delete or a unique violation.
	Conflict
	// Unavailable indicates a transient failure of persistence, the event stream, or Git.
	Unavailable
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "InvalidArgument"
	case NotFound:
		return "NotFound"
	case Conflict:
		return "Conflict"
	case Unavailable:
		return "Unavailable"
	default:
		return "Internal"
	}
}

// Error is an apperr-classified error carrying a single-line reason.
type Error struct {
	Kind   Kind
	Reason string
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates an Error of the given kind with a formatted reason.
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind that chains to cause.
func Wrap(kind Kind, cause error, format string, args ...any) error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...), cause: cause}
}

// KindOf extracts the Kind of err, defaulting to Internal if err is not (or
// does not wrap) an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Retryable reports whether the reconciler/gitops consumer loops should
// leave the triggering event unacknowledged and retry with backoff, per the
// failure semantics in the component design: Unavailable and Internal are
// retryable, InvalidArgument/NotFound/Conflict are terminal for the event.
func Retryable(err error) bool {
	switch KindOf(err) {
	case Unavailable, Internal:
		return true
	default:
		return false
	}
}
