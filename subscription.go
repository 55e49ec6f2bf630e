package evbroker

import (
	"sync/atomic"

	"github.com/dshills/evbroker/internal/namespace"
)

// Subscription is the unsubscribe handle returned by Subscribe.
type Subscription interface {
	// ID returns the unique subscription identifier.
	ID() string

	// Namespace returns the subscribed namespace pattern.
	Namespace() string

	// IsActive returns true if the subscription can receive events.
	IsActive() bool

	// Cancel deactivates the subscription. A cancelled subscription is
	// skipped by dispatch; use Broker.Unsubscribe to also remove it from
	// the table and trigger namespace pruning.
	Cancel()
}

// SubscriptionConfig contains configuration for a subscription.
type SubscriptionConfig struct {
	// Priority determines execution order. Higher values execute first;
	// equal priorities preserve registration order. Defaults to 0.
	Priority int

	// DeliveryMode controls whether the subscriber is reached by Emit
	// (sync) or only by EmitAsync (async).
	DeliveryMode DeliveryMode

	// Keywords is the declared keyword capability: the exact set of
	// payload keys the subscriber expects. Meaningful only when
	// HasKeywords is true.
	Keywords []string

	// HasKeywords is true when the subscriber declared a keyword set.
	// Without a declaration the subscriber accepts any payload, the
	// equivalent of a variadic keyword catch-all.
	HasKeywords bool
}

// DefaultSubscriptionConfig returns a default subscription configuration:
// priority 0, sync delivery, accepts any payload.
func DefaultSubscriptionConfig() SubscriptionConfig {
	return SubscriptionConfig{
		Priority:     0,
		DeliveryMode: DeliverySync,
	}
}

// SubscriptionOption is a function that configures a subscription.
type SubscriptionOption func(*SubscriptionConfig)

// WithPriority sets the subscription priority. Higher priorities are
// invoked before lower priorities.
func WithPriority(p int) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Priority = p
	}
}

// WithDeliveryMode sets the delivery mode.
func WithDeliveryMode(m DeliveryMode) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.DeliveryMode = m
	}
}

// WithKeywords declares the exact keyword set the subscriber expects.
// The first declared set on a namespace fixes that namespace's contract;
// later registrations and emissions must match it. Omitting WithKeywords
// means the subscriber accepts any payload and is exempt from the check.
func WithKeywords(names ...string) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Keywords = names
		c.HasKeywords = true
	}
}

// subscription is the internal implementation of Subscription.
type subscription struct {
	id      string
	ns      namespace.Namespace
	handler Handler
	config  SubscriptionConfig

	// seq is assigned by the table on add; it is the registration-order
	// tiebreak for equal priorities.
	seq uint64

	// active is 1 while the subscription may receive events.
	active atomic.Int32
}

func newSubscription(id string, ns namespace.Namespace, h Handler, opts ...SubscriptionOption) *subscription {
	config := DefaultSubscriptionConfig()
	for _, opt := range opts {
		opt(&config)
	}

	s := &subscription{
		id:      id,
		ns:      ns,
		handler: h,
		config:  config,
	}
	s.active.Store(1)
	return s
}

// ID returns the subscription ID.
func (s *subscription) ID() string {
	return s.id
}

// Namespace returns the subscribed namespace pattern.
func (s *subscription) Namespace() string {
	return s.ns.String()
}

// IsActive returns true if the subscription is active.
func (s *subscription) IsActive() bool {
	return s.active.Load() == 1
}

// Cancel deactivates the subscription.
func (s *subscription) Cancel() {
	s.active.Store(0)
}

// acceptsAny reports whether the subscriber declared no keyword set.
func (s *subscription) acceptsAny() bool {
	return !s.config.HasKeywords
}
