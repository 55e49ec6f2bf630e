// Package evbroker provides an in-process publish/subscribe broker with
// hierarchical namespaces, priority-ordered dispatch, and per-namespace
// keyword contracts.
//
// The broker is a coordination backbone for decoupled components: producers
// emit keyword payloads into dot-separated namespaces, and subscribers
// observe exact namespaces or whole subtrees through trailing wildcards,
// without producers and consumers ever referencing each other.
//
// # Namespaces
//
// Namespaces are dot-separated segment chains, organized as a trie:
//
//	sensors.temperature.celsius   - a concrete namespace
//	orders.created                - another concrete namespace
//	sensors.*                     - wildcard over sensors and its subtree
//	*                             - wildcard over everything
//
// A wildcard is only valid as the complete final segment. A subscription to
// "sensors.*" observes emissions to "sensors" itself and to every namespace
// below it ("sensors.temperature", "sensors.temperature.celsius", ...).
// Emission targets must be concrete; emitting to a wildcard is an error.
//
// Namespaces come into existence implicitly, either on first subscription
// or first emission, and are pruned again when their last subscriber leaves
// and they have no child namespaces.
//
// # Keyword Contracts
//
// Each namespace carries a keyword contract: the exact set of payload keys
// events on that namespace must have. The first party to commit to a key
// set, a subscriber using WithKeywords or the first emission, fixes the
// contract; later subscriptions and emissions with a different key set fail
// with a *SignatureMismatchError. Subscribers that omit WithKeywords accept
// any payload and leave the contract open.
//
// # Delivery Modes and Priorities
//
// Subscribers are sync (the default) or async:
//
//   - Emit invokes only sync subscribers.
//   - EmitAsync invokes sync and async subscribers in one sequence.
//
// All dispatch happens in the emitter's goroutine, one subscriber at a
// time, ordered by priority (higher first) with registration order breaking
// ties. The first subscriber error or panic aborts the remainder of the
// emission and is returned as a *SubscriberError; broker state stays valid.
//
// # Meta-Events
//
// The broker reports its own mutations as ordinary events on reserved
// "broker."-prefixed namespaces (see the Meta* constants): subscriber
// added or removed, namespace created or deleted, and every emission. Each
// meta-event payload carries the single keyword "namespace" naming the
// affected namespace. Mutations on the reserved namespaces themselves are
// not reported, so registering a meta observer never triggers further
// meta-events. WithMetaEvents(false) disables the facility.
//
// # Basic Usage
//
//	broker := evbroker.New()
//
//	sub, err := broker.SubscribeFunc("orders.*",
//	    func(ctx context.Context, evt evbroker.Event) error {
//	        fmt.Println(evt.Namespace, evt.Payload["id"])
//	        return nil
//	    },
//	    evbroker.WithPriority(10),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer broker.Unsubscribe(sub)
//
//	if err := broker.Emit(ctx, "orders.created", evbroker.Payload{
//	    "id": "ord-123",
//	}); err != nil {
//	    log.Printf("emit failed: %v", err)
//	}
//
// # Observability
//
// WithLogger attaches a *slog.Logger for debug-level activity logging and
// error-level failure logging. WithMetrics attaches a MetricsRecorder;
// NewMetricsRecorder builds one on the global OpenTelemetry meter provider.
// Both default to silent no-ops.
//
// # Thread Safety
//
// The Broker and all public types are safe for concurrent use. Handlers
// run outside the broker's lock and may re-enter it, so a subscriber can
// subscribe, unsubscribe, or emit from inside its own callback. Individual
// handlers must manage their own thread safety.
//
// # Subpackages
//
//   - internal/namespace: namespace parsing and trie-based matching
//   - internal/dispatch: panic-isolating sequential dispatch
package evbroker
