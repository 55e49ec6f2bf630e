package evbroker

import (
	"context"
	"time"
)

// Payload carries the keyword data of an emission, keyed by keyword name.
type Payload map[string]any

// keys returns the payload's keyword names, unordered.
func (p Payload) keys() []string {
	if len(p) == 0 {
		return nil
	}
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	return names
}

// Event is what a subscriber receives on each matching emission.
type Event struct {
	// Namespace is the concrete namespace the emission targeted. For a
	// wildcard subscriber this is the emitted namespace, not the pattern
	// the subscriber registered.
	Namespace string

	// Payload is the emission's keyword data.
	Payload Payload

	// ID uniquely identifies this emission.
	ID string

	// Time is when the emission was made.
	Time time.Time
}

// Handler is the interface for event subscribers.
type Handler interface {
	// Handle processes one emission. Returning an error aborts the
	// remainder of the emission's subscriber chain.
	Handle(ctx context.Context, evt Event) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, evt Event) error

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(ctx context.Context, evt Event) error {
	return f(ctx, evt)
}

// DeliveryMode specifies which emission calls reach a subscriber.
type DeliveryMode int

const (
	// DeliverySync subscribers are invoked by both Emit and EmitAsync.
	DeliverySync DeliveryMode = iota

	// DeliveryAsync subscribers are invoked only by EmitAsync.
	DeliveryAsync
)

// String returns a human-readable delivery mode name.
func (m DeliveryMode) String() string {
	switch m {
	case DeliverySync:
		return "sync"
	case DeliveryAsync:
		return "async"
	default:
		return "unknown"
	}
}

// Stats contains broker statistics.
type Stats struct {
	// EventsEmitted is the total number of Emit and EmitAsync calls that
	// passed validation.
	EventsEmitted uint64

	// EventsDelivered is the total number of successful handler invocations.
	EventsDelivered uint64

	// HandlerErrors is the number of handlers that returned errors.
	HandlerErrors uint64

	// HandlerPanics is the number of handlers that panicked.
	HandlerPanics uint64

	// ActiveSubscriptions is the current number of active subscriptions.
	ActiveSubscriptions int

	// Namespaces is the current number of namespaces in the tree.
	Namespaces int
}
