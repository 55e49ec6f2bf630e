package evbroker

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/evbroker/internal/namespace"
)

// Reserved namespaces for the broker's self-instrumentation. Each broker
// mutation is reported as an ordinary emission to the corresponding
// namespace, so meta-events support priority ordering, wildcard
// subscription (e.g. "broker.*"), and signature validation like any other
// event. Every meta-event payload carries the single keyword
// MetaKeyNamespace naming the namespace the mutation applied to.
const (
	// MetaSubscriberAdded fires after a subscriber is registered.
	MetaSubscriberAdded = "broker.subscriber-added"

	// MetaSubscriberRemoved fires after a subscriber is removed.
	MetaSubscriberRemoved = "broker.subscriber-removed"

	// MetaEmitSync fires on every Emit call, before dispatch begins.
	MetaEmitSync = "broker.emit-sync"

	// MetaEmitAsync fires on every EmitAsync call, before dispatch begins.
	MetaEmitAsync = "broker.emit-async"

	// MetaEmitAny fires on every Emit and EmitAsync call, in addition to
	// the specific event, giving a single subscription point for all
	// emission activity.
	MetaEmitAny = "broker.emit-any"

	// MetaNamespaceCreated fires for each newly created namespace node.
	MetaNamespaceCreated = "broker.namespace-created"

	// MetaNamespaceDeleted fires when a namespace is pruned.
	MetaNamespaceDeleted = "broker.namespace-deleted"
)

// MetaKeyNamespace is the payload keyword carried by every meta-event.
const MetaKeyNamespace = "namespace"

// metaRoot is the reserved first segment of all meta namespaces.
const metaRoot = "broker"

// metaPattern matches the reserved root and everything below it.
var metaPattern = namespace.Namespace(metaRoot + namespace.Separator + namespace.Wildcard)

// isReserved reports whether the namespace belongs to the meta-event bus.
func isReserved(n namespace.Namespace) bool {
	return metaPattern.Matches(n)
}

// metaChainKey carries the reserved namespaces already being dispatched on
// the current emission chain. The marker travels through the context each
// observer receives, so suppression is scoped to the chain: an observer
// that emits again does not re-trigger its own meta namespace, while
// unrelated goroutines report theirs normally.
type metaChainKey struct{}

func metaChainHas(ctx context.Context, meta namespace.Namespace) bool {
	chain, _ := ctx.Value(metaChainKey{}).([]namespace.Namespace)
	for _, m := range chain {
		if m == meta {
			return true
		}
	}
	return false
}

func withMetaChain(ctx context.Context, meta namespace.Namespace) context.Context {
	chain, _ := ctx.Value(metaChainKey{}).([]namespace.Namespace)
	next := make([]namespace.Namespace, len(chain), len(chain)+1)
	copy(next, chain)
	next = append(next, meta)
	return context.WithValue(ctx, metaChainKey{}, next)
}

// emitMeta reports a broker mutation on the given reserved namespace.
// includeAsync propagates the triggering call's delivery path: mutations
// made through EmitAsync reach async observers of the meta namespaces,
// everything else dispatches through the sync path.
//
// Two guards keep the bus from notifying itself into a loop: a meta
// namespace is suppressed while its dispatch is on the current emission
// chain (observers that drop the context opt out of this protection), and
// mutations on reserved namespaces themselves produce no meta-events at
// all.
//
// Meta dispatch failures cannot be returned to the mutating caller, so a
// signature mismatch or observer error is logged and dropped.
func (b *Broker) emitMeta(ctx context.Context, meta, target namespace.Namespace, includeAsync bool) {
	if !b.config.metaEvents || isReserved(target) {
		return
	}
	if metaChainHas(ctx, meta) {
		return
	}

	payload := Payload{MetaKeyNamespace: target.String()}
	keys := payload.keys()

	b.mu.RLock()
	matches := b.tree.Matches(meta)
	for _, m := range matches {
		if err := b.sigs.check(m, keys); err != nil {
			b.mu.RUnlock()
			b.logMetaDrop(meta, err)
			return
		}
	}
	entries := b.snapshotLocked(matches, includeAsync)
	b.mu.RUnlock()

	if len(entries) == 0 {
		return
	}

	evt := Event{
		Namespace: meta.String(),
		Payload:   payload,
		ID:        uuid.NewString(),
		Time:      time.Now(),
	}
	if err := b.invoke(withMetaChain(ctx, meta), evt, entries); err != nil {
		b.logMetaDrop(meta, err)
	}
}
