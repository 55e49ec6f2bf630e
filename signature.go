package evbroker

import (
	"sort"

	"github.com/dshills/evbroker/internal/namespace"
)

// signatureRecord is the keyword contract of one namespace. A record is
// either open (accepts any payload, the analog of a keyword catch-all) or
// concrete, in which case the key set is immutable until the namespace is
// deleted.
type signatureRecord struct {
	open bool
	keys map[string]struct{}
}

func newSignatureRecord(keys []string, open bool) *signatureRecord {
	rec := &signatureRecord{open: open}
	if !open {
		rec.keys = make(map[string]struct{}, len(keys))
		for _, k := range keys {
			rec.keys[k] = struct{}{}
		}
	}
	return rec
}

// matches reports whether the keyword set equals the recorded set.
func (r *signatureRecord) matches(keys []string) bool {
	if len(keys) != len(r.keys) {
		return false
	}
	for _, k := range keys {
		if _, ok := r.keys[k]; !ok {
			return false
		}
	}
	return true
}

// sorted returns the recorded keyword names in sorted order.
func (r *signatureRecord) sorted() []string {
	names := make([]string, 0, len(r.keys))
	for k := range r.keys {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// signatureRegistry tracks the expected keyword set of each namespace.
// It is not self-locking; the broker's lock guards all access.
type signatureRegistry struct {
	records map[namespace.Namespace]*signatureRecord
}

func newSignatureRegistry() *signatureRegistry {
	return &signatureRegistry{
		records: make(map[namespace.Namespace]*signatureRecord),
	}
}

// validate checks a keyword set against the namespace's record and creates
// the record on first use. acceptsAny marks a subscriber-side catch-all:
// it never fails validation and, on first use, leaves the record open.
func (g *signatureRegistry) validate(ns namespace.Namespace, keys []string, acceptsAny bool) error {
	rec, ok := g.records[ns]
	if !ok {
		g.records[ns] = newSignatureRecord(keys, acceptsAny)
		return nil
	}

	if rec.open || acceptsAny {
		return nil
	}

	if !rec.matches(keys) {
		got := append([]string(nil), keys...)
		sort.Strings(got)
		return &SignatureMismatchError{
			Namespace: ns.String(),
			Expected:  rec.sorted(),
			Got:       got,
		}
	}

	return nil
}

// check validates a keyword set against an existing record without ever
// creating one. Used for emissions, which must pass every matched
// namespace's contract before any record is mutated.
func (g *signatureRegistry) check(ns namespace.Namespace, keys []string) error {
	rec, ok := g.records[ns]
	if !ok || rec.open {
		return nil
	}

	if !rec.matches(keys) {
		got := append([]string(nil), keys...)
		sort.Strings(got)
		return &SignatureMismatchError{
			Namespace: ns.String(),
			Expected:  rec.sorted(),
			Got:       got,
		}
	}

	return nil
}

// ensure creates a concrete record from keys if the namespace has none.
func (g *signatureRegistry) ensure(ns namespace.Namespace, keys []string) {
	if _, ok := g.records[ns]; !ok {
		g.records[ns] = newSignatureRecord(keys, false)
	}
}

// remove drops the namespace's record; called when the namespace is pruned.
func (g *signatureRegistry) remove(ns namespace.Namespace) {
	delete(g.records, ns)
}

// clear drops all records.
func (g *signatureRegistry) clear() {
	g.records = make(map[namespace.Namespace]*signatureRecord)
}
