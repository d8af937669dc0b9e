// Package tree implements wmem's ordered map: a classic red-black tree
// keyed by anything a user-supplied three-way comparator can order —
// 32-bit integers, segmented arrays of 32-bit words (compared
// lexicographically), or byte strings (optionally ASCII-case-folded).
//
// Grounded on the general red-black tree algorithm (CLRS), with the node
// type itself following the "small tagged struct per node, color plus two
// children plus one parent" idiom pkg/arena/art/node uses for its node
// family — adapted here to one node shape rather than four, since a
// classic RB-tree (unlike ART) does not need node-size adaptation. Nodes
// are linked by ordinary pointers, per spec.md §9's "owned node structs"
// alternative to arena+indices, the same rule [container/list] and
// [container/wmap] use for their own pointer graphs, but each node's
// storage still comes from an *wmem.Allocator via [internal/xnode].
package tree

import (
	"github.com/ohbentos/wireshark/wsutil/wmem"
	"github.com/ohbentos/wireshark/wsutil/wmem/internal/xnode"
)

type color bool

const (
	red   color = true
	black color = false
)

type node[K any, V any] struct {
	key                 K
	val                 V
	color               color
	left, right, parent *node[K, V]
}

// Tree is a red-black tree rooted in a *wmem.Allocator, ordered by a
// user-supplied comparator. The zero value is not usable; construct one
// with [New] or [NewAutoreset].
type Tree[K any, V any] struct {
	a         *wmem.Allocator // owns the Tree value's own bookkeeping ("main")
	dataAlloc *wmem.Allocator // owns node storage; equals a outside autoreset
	cmp       func(a, b K) int
	root      *node[K, V]
	count     int
	resetReg  uint64
}

// New creates an empty tree rooted in a, ordered by cmp (cmp(a,b) < 0 means
// a orders before b, following the standard three-way comparator contract).
// Every node is allocated from a.
func New[K any, V any](a *wmem.Allocator, cmp func(a, b K) int) *Tree[K, V] {
	return &Tree[K, V]{a: a, dataAlloc: a, cmp: cmp}
}

// NewAutoreset parallels [wmap.NewAutoreset]: every node is allocated from
// dataAlloc, and the tree empties itself whenever dataAlloc fires a
// [wmem.FreeEvent], without re-freeing nodes dataAlloc already reclaimed.
func NewAutoreset[K any, V any](main, dataAlloc *wmem.Allocator, cmp func(a, b K) int) *Tree[K, V] {
	t := &Tree[K, V]{a: main, dataAlloc: dataAlloc, cmp: cmp}
	t.resetReg = dataAlloc.RegisterCallback(func(event wmem.Event, _ any) bool {
		t.clear(false)
		return true
	}, nil)
	return t
}

// Reset empties the tree, freeing every node back to dataAlloc. It is
// idempotent and safe to call whether or not the tree is an autoreset tree.
func (t *Tree[K, V]) Reset() {
	t.clear(true)
}

func (t *Tree[K, V]) clear(freeNodes bool) {
	if freeNodes {
		t.freeSubtree(t.root)
	}
	t.root = nil
	t.count = 0
}

func (t *Tree[K, V]) freeSubtree(n *node[K, V]) {
	if n == nil {
		return
	}
	t.freeSubtree(n.left)
	t.freeSubtree(n.right)
	xnode.Free(t.dataAlloc, n)
}

// Count returns the number of keys currently stored.
func (t *Tree[K, V]) Count() int { return t.count }

// IsEmpty reports whether the tree has no entries.
func (t *Tree[K, V]) IsEmpty() bool { return t.count == 0 }

// Lookup returns the value stored under key, or the zero value and false.
func (t *Tree[K, V]) Lookup(key K) (V, bool) {
	n := t.find(key)
	if n == nil {
		var zero V
		return zero, false
	}
	return n.val, true
}

// LookupLE returns the value at the greatest stored key ≤ key, or the zero
// value and false if no such key exists.
func (t *Tree[K, V]) LookupLE(key K) (V, bool) {
	_, v, ok := t.LookupLEFull(key)
	return v, ok
}

// LookupLEFull is like [Tree.LookupLE] but also returns the matched key.
func (t *Tree[K, V]) LookupLEFull(key K) (foundKey K, value V, ok bool) {
	n := t.root
	var best *node[K, V]
	for n != nil {
		c := t.cmp(n.key, key)
		switch {
		case c == 0:
			return n.key, n.val, true
		case c < 0:
			best = n
			n = n.right
		default:
			n = n.left
		}
	}
	if best == nil {
		return foundKey, value, false
	}
	return best.key, best.val, true
}

// LookupGE returns the value at the smallest stored key ≥ key, or the zero
// value and false if no such key exists.
func (t *Tree[K, V]) LookupGE(key K) (V, bool) {
	n := t.root
	var best *node[K, V]
	for n != nil {
		c := t.cmp(n.key, key)
		switch {
		case c == 0:
			return n.val, true
		case c > 0:
			best = n
			n = n.left
		default:
			n = n.right
		}
	}
	if best == nil {
		var zero V
		return zero, false
	}
	return best.val, true
}

func (t *Tree[K, V]) find(key K) *node[K, V] {
	n := t.root
	for n != nil {
		c := t.cmp(key, n.key)
		switch {
		case c == 0:
			return n
		case c < 0:
			n = n.left
		default:
			n = n.right
		}
	}
	return nil
}

// Insert stores value under key, replacing and returning any previous value
// for an equal key.
func (t *Tree[K, V]) Insert(key K, value V) (prev V, hadPrev bool) {
	var parent *node[K, V]
	n := t.root
	for n != nil {
		c := t.cmp(key, n.key)
		switch {
		case c == 0:
			prev, hadPrev = n.val, true
			n.val = value
			return
		case c < 0:
			parent = n
			n = n.left
		default:
			parent = n
			n = n.right
		}
	}

	leaf := xnode.New[node[K, V]](t.dataAlloc)
	leaf.key, leaf.val, leaf.color, leaf.parent = key, value, red, parent
	switch {
	case parent == nil:
		t.root = leaf
	case t.cmp(key, parent.key) < 0:
		parent.left = leaf
	default:
		parent.right = leaf
	}
	t.count++
	t.insertFixup(leaf)
	return
}

// Foreach visits every entry in ascending key order, stopping early if fn
// returns false.
func (t *Tree[K, V]) Foreach(fn func(key K, value V) bool) {
	t.inorder(t.root, fn)
}

func (t *Tree[K, V]) inorder(n *node[K, V], fn func(K, V) bool) bool {
	if n == nil {
		return true
	}
	if !t.inorder(n.left, fn) {
		return false
	}
	if !fn(n.key, n.val) {
		return false
	}
	return t.inorder(n.right, fn)
}

// Remove deletes key, returning its value and whether it was present.
func (t *Tree[K, V]) Remove(key K) (V, bool) {
	n := t.find(key)
	if n == nil {
		var zero V
		return zero, false
	}
	val := n.val
	t.deleteNode(n)
	t.count--
	xnode.Free(t.dataAlloc, n)
	return val, true
}
