package evbroker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/evbroker/internal/dispatch"
	"github.com/dshills/evbroker/internal/namespace"
)

// Broker is the in-process event coordinator. It supports hierarchical
// namespaces through dot notation, with a trailing "*" for wildcards,
// priority-ordered dispatch, and per-namespace keyword contracts.
//
// Use Emit for sync subscribers only; use EmitAsync to also reach async
// subscribers. Construct brokers with New; each instance is independent,
// so tests can build their own instead of sharing a process-global.
//
// All methods are safe for concurrent use. Handlers run outside the
// broker's lock and may re-enter it (register, unregister, emit).
type Broker struct {
	mu    sync.RWMutex
	tree  *namespace.Tree
	table *subscriptionTable
	sigs  *signatureRegistry

	seq *dispatch.Sequencer

	config brokerConfig

	// Stats
	emits         atomic.Uint64
	delivered     atomic.Uint64
	handlerErrors atomic.Uint64
	handlerPanics atomic.Uint64
}

// New creates a broker with the given options.
func New(opts ...Option) *Broker {
	config := defaultBrokerConfig()
	for _, opt := range opts {
		opt(&config)
	}

	return &Broker{
		tree:   namespace.NewTree(),
		table:  newSubscriptionTable(),
		sigs:   newSignatureRegistry(),
		seq:    dispatch.NewSequencer(),
		config: config,
	}
}

// Subscribe registers a handler for the namespace pattern and returns the
// unsubscribe handle.
func (b *Broker) Subscribe(ns string, h Handler, opts ...SubscriptionOption) (Subscription, error) {
	return b.register(ns, h, opts)
}

// SubscribeFunc is a convenience method for subscribing with a function.
func (b *Broker) SubscribeFunc(ns string, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error) {
	return b.register(ns, fn, opts)
}

// RegisterSubscriber registers a handler without returning a handle; pair
// it with UnregisterSubscriber for identity-based removal.
func (b *Broker) RegisterSubscriber(ns string, h Handler, opts ...SubscriptionOption) error {
	_, err := b.register(ns, h, opts)
	return err
}

func (b *Broker) register(ns string, h Handler, opts []SubscriptionOption) (Subscription, error) {
	if h == nil {
		return nil, ErrNilHandler
	}
	parsed, err := namespace.Parse(ns)
	if err != nil {
		return nil, err
	}

	sub := newSubscription(uuid.NewString(), parsed, h, opts...)

	b.mu.Lock()
	// Signature first: a mismatch must leave the tree and table untouched.
	if err := b.sigs.validate(parsed, sub.config.Keywords, sub.acceptsAny()); err != nil {
		b.mu.Unlock()
		return nil, err
	}
	created := b.tree.Ensure(parsed)
	b.table.add(sub)
	b.mu.Unlock()

	b.logRegister(sub)

	ctx := context.Background()
	for _, c := range created {
		b.emitMeta(ctx, MetaNamespaceCreated, c, false)
	}
	b.emitMeta(ctx, MetaSubscriberAdded, parsed, false)

	return sub, nil
}

// UnregisterSubscriber removes the first subscriber on the namespace whose
// handler identity matches. Removing a handler that is not registered is a
// silent no-op, so teardown is idempotent.
func (b *Broker) UnregisterSubscriber(ns string, h Handler) error {
	if h == nil {
		return ErrNilHandler
	}
	parsed, err := namespace.Parse(ns)
	if err != nil {
		return err
	}

	b.mu.Lock()
	sub, removed := b.table.removeByHandler(parsed, h)
	pruned := false
	if removed {
		pruned = b.pruneLocked(parsed)
	}
	b.mu.Unlock()

	if !removed {
		return nil
	}
	sub.Cancel()
	b.logUnregister(sub)

	ctx := context.Background()
	b.emitMeta(ctx, MetaSubscriberRemoved, parsed, false)
	if pruned {
		b.emitMeta(ctx, MetaNamespaceDeleted, parsed, false)
	}
	return nil
}

// Unsubscribe removes a subscription by handle. Removing an already
// removed subscription is a silent no-op.
func (b *Broker) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return ErrInvalidSubscription
	}
	sub.Cancel()

	b.mu.Lock()
	s, removed := b.table.removeByID(sub.ID())
	pruned := false
	if removed {
		pruned = b.pruneLocked(s.ns)
	}
	b.mu.Unlock()

	if !removed {
		return nil
	}
	b.logUnregister(s)

	ctx := context.Background()
	b.emitMeta(ctx, MetaSubscriberRemoved, s.ns, false)
	if pruned {
		b.emitMeta(ctx, MetaNamespaceDeleted, s.ns, false)
	}
	return nil
}

// pruneLocked removes the namespace node when it has no subscribers and no
// descendants, dropping its signature record with it. Caller holds the
// write lock. Intermediate namespaces keep their nodes: their records stay
// addressable for future use.
func (b *Broker) pruneLocked(ns namespace.Namespace) bool {
	if b.table.count(ns) > 0 {
		return false
	}
	if !b.tree.Remove(ns) {
		return false
	}
	b.sigs.remove(ns)
	return true
}

// Emit sends an event to all matching sync subscribers, invoked in
// priority order in the caller's goroutine. Async subscribers are skipped
// entirely; use EmitAsync to reach them.
//
// The first subscriber failure aborts the remainder of the emission and
// is returned as a *SubscriberError. Broker state stays valid.
func (b *Broker) Emit(ctx context.Context, ns string, payload Payload) error {
	return b.emit(ctx, ns, payload, false)
}

// EmitAsync sends an event to all matching subscribers, sync and async,
// in one priority-ordered sequence. Each subscriber runs to completion
// before the next starts, which is what keeps ordering deterministic
// across mixed subscriber sets; the call blocks until all complete.
func (b *Broker) EmitAsync(ctx context.Context, ns string, payload Payload) error {
	return b.emit(ctx, ns, payload, true)
}

func (b *Broker) emit(ctx context.Context, target string, payload Payload, includeAsync bool) error {
	parsed, err := namespace.Parse(target)
	if err != nil {
		return err
	}
	if parsed.IsWildcard() {
		return fmt.Errorf("%w: emission target %q may not contain a wildcard", ErrMalformedNamespace, target)
	}
	if isReserved(parsed) {
		return fmt.Errorf("%w: %q", ErrReservedNamespace, target)
	}

	keys := payload.keys()

	b.mu.Lock()
	matches := b.tree.Matches(parsed)
	// Validate against every matched namespace's contract before any
	// record or node is created, so a mismatch has no side effects.
	for _, m := range matches {
		if err := b.sigs.check(m, keys); err != nil {
			b.mu.Unlock()
			return err
		}
	}
	created := b.tree.Ensure(parsed)
	b.sigs.ensure(parsed, keys)
	entries := b.snapshotLocked(matches, includeAsync)
	b.mu.Unlock()

	b.emits.Add(1)
	mode := DeliverySync
	metaNS := namespace.Namespace(MetaEmitSync)
	if includeAsync {
		mode = DeliveryAsync
		metaNS = MetaEmitAsync
	}
	b.config.metrics.RecordEmit(ctx, target, mode)
	b.logEmit(target, len(entries), includeAsync)

	// Report the emission before dispatch begins.
	for _, c := range created {
		b.emitMeta(ctx, MetaNamespaceCreated, c, includeAsync)
	}
	b.emitMeta(ctx, metaNS, parsed, includeAsync)
	b.emitMeta(ctx, MetaEmitAny, parsed, includeAsync)

	if len(entries) == 0 {
		return nil
	}

	evt := Event{
		Namespace: target,
		Payload:   payload,
		ID:        uuid.NewString(),
		Time:      time.Now(),
	}
	return b.invoke(ctx, evt, entries)
}

// snapshotLocked collects the active entries of the matched namespaces,
// merged and re-sorted by (priority desc, registration order asc) and
// deduplicated by entry identity. Caller holds the lock; the returned
// slice is the caller's own.
func (b *Broker) snapshotLocked(matches []namespace.Namespace, includeAsync bool) []*subscription {
	var entries []*subscription
	seen := make(map[*subscription]struct{})

	for _, m := range matches {
		for _, sub := range b.table.get(m) {
			if !sub.IsActive() {
				continue
			}
			if sub.config.DeliveryMode == DeliveryAsync && !includeAsync {
				continue
			}
			if _, dup := seen[sub]; dup {
				continue
			}
			seen[sub] = struct{}{}
			entries = append(entries, sub)
		}
	}

	sortEntries(entries)
	return entries
}

// dispatchHandler adapts a broker Handler to the dispatch package.
type dispatchHandler struct {
	h Handler
}

func (d dispatchHandler) Handle(ctx context.Context, event any) error {
	return d.h.Handle(ctx, event.(Event))
}

// invoke runs the entries in order, fail-fast on the first error or panic.
func (b *Broker) invoke(ctx context.Context, evt Event, entries []*subscription) error {
	// Entries cancelled since the snapshot are skipped.
	var live []*subscription
	var handlers []dispatch.Handler
	for _, sub := range entries {
		if !sub.IsActive() {
			continue
		}
		live = append(live, sub)
		handlers = append(handlers, dispatchHandler{sub.handler})
	}

	results := b.seq.DispatchUntilError(ctx, evt, handlers)

	for i, res := range results {
		sub := live[i]

		invErr := res.Error
		if res.Panicked {
			invErr = ErrSubscriberFailure
		}
		b.config.metrics.RecordInvocation(ctx, evt.Namespace, res.Duration, invErr)

		switch {
		case res.Skipped:
			return res.Error
		case res.Panicked:
			b.handlerPanics.Add(1)
			serr := &SubscriberError{
				SubscriptionID: sub.id,
				Namespace:      sub.Namespace(),
				Target:         evt.Namespace,
				PanicValue:     res.PanicValue,
				PanicStack:     res.PanicStack,
			}
			b.logFailure(serr)
			return serr
		case res.Error != nil:
			b.handlerErrors.Add(1)
			serr := &SubscriberError{
				SubscriptionID: sub.id,
				Namespace:      sub.Namespace(),
				Target:         evt.Namespace,
				Err:            res.Error,
			}
			b.logFailure(serr)
			return serr
		default:
			b.delivered.Add(1)
		}
	}
	return nil
}

// Clear removes all namespaces, subscribers, and signature records.
// Outstanding subscription handles are cancelled. No meta-events fire.
func (b *Broker) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.table.byID {
		sub.Cancel()
	}
	b.tree.Clear()
	b.table.clear()
	b.sigs.clear()
}

// Stats returns current broker statistics.
func (b *Broker) Stats() Stats {
	b.mu.RLock()
	active := b.table.activeCount()
	nss := b.tree.Len()
	b.mu.RUnlock()

	return Stats{
		EventsEmitted:       b.emits.Load(),
		EventsDelivered:     b.delivered.Load(),
		HandlerErrors:       b.handlerErrors.Load(),
		HandlerPanics:       b.handlerPanics.Load(),
		ActiveSubscriptions: active,
		Namespaces:          nss,
	}
}

// Dump returns a JSON description of the subscriber table: namespace to
// the list of its entries in dispatch order, each annotated with priority
// and delivery mode.
func (b *Broker) Dump() string {
	b.mu.RLock()
	data := make(map[string][]string, len(b.table.entries))
	for _, ns := range b.table.namespaces() {
		var infos []string
		for _, sub := range b.table.get(ns) {
			info := sub.id
			if sub.config.Priority != 0 {
				info += fmt.Sprintf(" [priority=%d]", sub.config.Priority)
			}
			if sub.config.DeliveryMode == DeliveryAsync {
				info += " [async]"
			}
			infos = append(infos, info)
		}
		data[ns.String()] = infos
	}
	b.mu.RUnlock()

	out, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return "{}"
	}
	return string(out)
}
