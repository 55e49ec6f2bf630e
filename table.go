package evbroker

import (
	"reflect"
	"sort"

	"github.com/dshills/evbroker/internal/namespace"
)

// subscriptionTable holds the per-namespace ordered subscriber lists.
// It is not self-locking; the broker's lock guards all access.
type subscriptionTable struct {
	entries map[namespace.Namespace][]*subscription
	byID    map[string]*subscription
	nextSeq uint64
}

func newSubscriptionTable() *subscriptionTable {
	return &subscriptionTable{
		entries: make(map[namespace.Namespace][]*subscription),
		byID:    make(map[string]*subscription),
	}
}

// add appends an entry and re-sorts the namespace's list by
// (priority descending, registration order ascending).
func (t *subscriptionTable) add(sub *subscription) {
	t.nextSeq++
	sub.seq = t.nextSeq

	subs := append(t.entries[sub.ns], sub)
	sortEntries(subs)
	t.entries[sub.ns] = subs
	t.byID[sub.id] = sub
}

// sortEntries orders entries for dispatch. The registration sequence is a
// strict total-order tiebreak, so equal priorities keep insertion order.
func sortEntries(subs []*subscription) {
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].config.Priority != subs[j].config.Priority {
			return subs[i].config.Priority > subs[j].config.Priority
		}
		return subs[i].seq < subs[j].seq
	})
}

// removeByID removes an entry by subscription ID.
func (t *subscriptionTable) removeByID(id string) (*subscription, bool) {
	sub, ok := t.byID[id]
	if !ok {
		return nil, false
	}
	t.unlink(sub)
	return sub, true
}

// removeByHandler removes the first entry on the namespace whose handler
// identity matches. Returns false if no entry matched.
func (t *subscriptionTable) removeByHandler(ns namespace.Namespace, h Handler) (*subscription, bool) {
	for _, sub := range t.entries[ns] {
		if handlerEqual(sub.handler, h) {
			t.unlink(sub)
			return sub, true
		}
	}
	return nil, false
}

func (t *subscriptionTable) unlink(sub *subscription) {
	subs := t.entries[sub.ns]
	for i, s := range subs {
		if s.id == sub.id {
			t.entries[sub.ns] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(t.entries[sub.ns]) == 0 {
		delete(t.entries, sub.ns)
	}
	delete(t.byID, sub.id)
}

// get returns the namespace's entries in dispatch order.
// The returned slice is the table's own; callers copy before releasing
// the broker lock.
func (t *subscriptionTable) get(ns namespace.Namespace) []*subscription {
	return t.entries[ns]
}

// count returns the number of entries on the namespace.
func (t *subscriptionTable) count(ns namespace.Namespace) int {
	return len(t.entries[ns])
}

// activeCount returns the number of active entries across all namespaces.
func (t *subscriptionTable) activeCount() int {
	count := 0
	for _, sub := range t.byID {
		if sub.IsActive() {
			count++
		}
	}
	return count
}

// namespaces returns every namespace with at least one entry, sorted.
func (t *subscriptionTable) namespaces() []namespace.Namespace {
	nss := make([]namespace.Namespace, 0, len(t.entries))
	for ns := range t.entries {
		nss = append(nss, ns)
	}
	sort.Slice(nss, func(i, j int) bool { return nss[i] < nss[j] })
	return nss
}

// clear drops all entries.
func (t *subscriptionTable) clear() {
	t.entries = make(map[namespace.Namespace][]*subscription)
	t.byID = make(map[string]*subscription)
}

// handlerEqual reports whether two handlers refer to the same callback.
// Function-backed handlers compare by code pointer; other handler types
// compare by interface equality when their dynamic type is comparable.
// Code-pointer identity is coarser than instance identity: method values
// share a pointer across receivers, and distinct closures created from
// the same function literal share one too, so removal can pick a
// different instance than intended. Handlers needing instance-level
// identity should be removed via their Subscription handle instead.
func handlerEqual(a, b Handler) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() == reflect.Func || vb.Kind() == reflect.Func {
		return va.Kind() == vb.Kind() && va.Pointer() == vb.Pointer()
	}

	if va.Type() != vb.Type() || !va.Type().Comparable() {
		return false
	}
	return a == b
}
