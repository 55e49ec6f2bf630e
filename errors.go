package evbroker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/evbroker/internal/namespace"
)

// Sentinel errors for the broker.
var (
	// ErrMalformedNamespace is returned for invalid dot-segment syntax:
	// empty namespaces, empty segments, or misplaced wildcards.
	ErrMalformedNamespace = namespace.ErrMalformed

	// ErrReservedNamespace is returned when emitting directly into the
	// reserved meta-event root; those namespaces belong to the broker.
	ErrReservedNamespace = errors.New("namespace is reserved for meta-events")

	// ErrSignatureMismatch matches any *SignatureMismatchError via errors.Is.
	ErrSignatureMismatch = errors.New("signature mismatch")

	// ErrSubscriberFailure matches any *SubscriberError via errors.Is.
	ErrSubscriberFailure = errors.New("subscriber failed")

	// ErrNilHandler is returned when a nil handler is provided.
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrInvalidSubscription is returned when a nil subscription is passed
	// to Unsubscribe.
	ErrInvalidSubscription = errors.New("invalid subscription")
)

// SignatureMismatchError reports a keyword-set conflict at registration or
// emission. The expected and offered sets are sorted for stable messages.
type SignatureMismatchError struct {
	// Namespace is the namespace whose contract was violated.
	Namespace string

	// Expected is the keyword set recorded for the namespace.
	Expected []string

	// Got is the offending keyword set.
	Got []string
}

// Error implements the error interface.
func (e *SignatureMismatchError) Error() string {
	return fmt.Sprintf("keyword mismatch for namespace %q: expected [%s], got [%s]",
		e.Namespace, strings.Join(e.Expected, " "), strings.Join(e.Got, " "))
}

// Is allows errors.Is to match SignatureMismatchError with ErrSignatureMismatch.
func (e *SignatureMismatchError) Is(target error) bool {
	return target == ErrSignatureMismatch
}

// SubscriberError wraps a failure raised by a subscriber during dispatch.
// The emission it belongs to is aborted; broker state remains valid.
type SubscriberError struct {
	// SubscriptionID is the ID of the subscription whose handler failed.
	SubscriptionID string

	// Namespace is the pattern the subscriber registered for.
	Namespace string

	// Target is the concrete namespace the emission was made to.
	Target string

	// Err is the error returned by the handler, or nil if it panicked.
	Err error

	// PanicValue is the value passed to panic(), if the handler panicked.
	PanicValue any

	// PanicStack is the stack trace at the point of panic.
	PanicStack []byte
}

// Error implements the error interface.
func (e *SubscriberError) Error() string {
	if e.PanicValue != nil {
		return fmt.Sprintf("subscriber %s on %q panicked during emission to %q: %v",
			e.SubscriptionID, e.Namespace, e.Target, e.PanicValue)
	}
	return fmt.Sprintf("subscriber %s on %q failed during emission to %q: %v",
		e.SubscriptionID, e.Namespace, e.Target, e.Err)
}

// Unwrap returns the underlying handler error, if any.
func (e *SubscriberError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is to match SubscriberError with ErrSubscriberFailure.
func (e *SubscriberError) Is(target error) bool {
	return target == ErrSubscriberFailure
}
