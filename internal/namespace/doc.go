// Package namespace provides the hierarchical event name type and the
// trie that stores registered namespaces.
//
// Namespaces use dot notation ("system.io.opened") and may end in a
// single reserved wildcard segment ("system.*") that matches the base
// namespace and everything nested below it. Matching is purely
// structural on the dot-segments; whether a namespace currently has
// subscribers is the broker's concern, not the tree's.
//
// The Tree is safe for concurrent use.
package namespace
