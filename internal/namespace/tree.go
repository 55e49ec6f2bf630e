package namespace

import "sync"

// Tree stores registered namespaces in a trie keyed by dot-segments.
// It provides O(k) lookup where k is the number of segments.
//
// Every node below the root is an addressable namespace. Wildcard
// registrations are stored as a "*" child of their base node, so the
// wildcard namespace itself is a node like any other.
type Tree struct {
	mu   sync.RWMutex
	root *treeNode
}

type treeNode struct {
	children map[string]*treeNode
}

func newTreeNode() *treeNode {
	return &treeNode{
		children: make(map[string]*treeNode),
	}
}

// NewTree creates an empty namespace tree.
func NewTree() *Tree {
	return &Tree{
		root: newTreeNode(),
	}
}

// Ensure creates the chain of nodes for the namespace and returns the
// namespaces that were newly created, in root-to-leaf order. An empty
// result means the full chain already existed.
func (t *Tree) Ensure(ns Namespace) []Namespace {
	if ns == "" {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var created []Namespace
	var path Namespace
	node := t.root

	for _, seg := range ns.Segments() {
		path = path.Child(seg)
		child := node.children[seg]
		if child == nil {
			child = newTreeNode()
			node.children[seg] = child
			created = append(created, path)
		}
		node = child
	}

	return created
}

// Has returns true if the namespace exists as a node in the tree.
func (t *Tree) Has(ns Namespace) bool {
	if ns == "" {
		return false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.lookup(ns) != nil
}

// lookup walks to the node for ns. Caller must hold the lock.
func (t *Tree) lookup(ns Namespace) *treeNode {
	node := t.root
	for _, seg := range ns.Segments() {
		node = node.children[seg]
		if node == nil {
			return nil
		}
	}
	return node
}

// Matches returns, for a concrete emission target, the namespaces that
// fan in: the exact node at the target (if registered), plus every
// registered wildcard whose base is the target or one of its ancestors.
// A wildcard "a.b.*" therefore matches emissions to "a.b", "a.b.c",
// "a.b.c.d" and so on. The exact namespace is first, followed by
// wildcards from the root down.
func (t *Tree) Matches(target Namespace) []Namespace {
	if target == "" {
		return nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	var matches []Namespace
	if t.lookup(target) != nil {
		matches = append(matches, target)
	}

	// Walk the prefix chain collecting "*" children, including the root
	// (a bare "*" subscription observes everything).
	var prefix Namespace
	node := t.root
	for {
		if node.children[Wildcard] != nil {
			matches = append(matches, prefix.Child(Wildcard))
		}
		segs := target.Segments()
		depth := prefix.SegmentCount()
		if depth == len(segs) {
			break
		}
		node = node.children[segs[depth]]
		if node == nil {
			break
		}
		prefix = prefix.Child(segs[depth])
	}

	return matches
}

// Remove deletes the node for the namespace. It refuses to delete a node
// that still has descendants; the caller is responsible for ensuring no
// subscribers remain. Returns true if a node was removed.
func (t *Tree) Remove(ns Namespace) bool {
	if ns == "" {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	segs := ns.Segments()
	parent := t.root
	for _, seg := range segs[:len(segs)-1] {
		parent = parent.children[seg]
		if parent == nil {
			return false
		}
	}

	last := segs[len(segs)-1]
	node := parent.children[last]
	if node == nil || len(node.children) > 0 {
		return false
	}

	delete(parent.children, last)
	return true
}

// All returns every namespace in the tree, unordered.
func (t *Tree) All() []Namespace {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var all []Namespace
	t.collect(t.root, "", &all)
	return all
}

func (t *Tree) collect(node *treeNode, path Namespace, all *[]Namespace) {
	for seg, child := range node.children {
		childPath := path.Child(seg)
		*all = append(*all, childPath)
		t.collect(child, childPath, all)
	}
}

// Len returns the number of namespaces in the tree.
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	count := 0
	t.count(t.root, &count)
	return count
}

func (t *Tree) count(node *treeNode, count *int) {
	*count += len(node.children)
	for _, child := range node.children {
		t.count(child, count)
	}
}

// Clear removes all namespaces from the tree.
func (t *Tree) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.root = newTreeNode()
}
