// Package itree implements wmem's interval tree: a red-black tree ordered
// by interval low edge, with each node augmented with max_edge — the
// largest high edge anywhere in its subtree — so that find_intervals can
// prune subtrees that cannot possibly overlap the query range.
//
// Grounded on [container/tree]'s red-black machinery (itself grounded on
// the CLRS algorithm and pkg/arena/art/node's small-tagged-node idiom),
// augmented per spec.md §4.6; kept as its own small self-contained tree
// rather than parameterizing [container/tree] over an augmentation hook,
// since interval search's pruning rule (skip a subtree whose max_edge is
// below the query's low edge) is itree-specific and nowhere else needed.
// Nodes are linked by ordinary pointers but their storage still comes from
// the tree's *wmem.Allocator via [internal/xnode], the same as
// [container/tree].
package itree

import (
	"github.com/ohbentos/wireshark/wsutil/wmem"
	"github.com/ohbentos/wireshark/wsutil/wmem/internal/xnode"
)

type color bool

const (
	red   color = true
	black color = false
)

type inode[V any] struct {
	low, high, maxEdge  int64
	val                 V
	color               color
	left, right, parent *inode[V]
}

// Interval is one stored range and its associated value, as returned by
// [Tree.FindIntervals].
type Interval[V any] struct {
	Low, High int64
	Value     V
}

// Tree is an interval tree rooted in a *wmem.Allocator. The zero value is
// not usable; construct one with [New].
type Tree[V any] struct {
	a     *wmem.Allocator
	root  *inode[V]
	count int
}

// New creates an empty interval tree rooted in a.
func New[V any](a *wmem.Allocator) *Tree[V] {
	return &Tree[V]{a: a}
}

// IsEmpty reports whether the tree has no stored intervals.
func (t *Tree[V]) IsEmpty() bool { return t.count == 0 }

// Count returns the number of stored intervals.
func (t *Tree[V]) Count() int { return t.count }

// Insert stores value under the range [low, high].
func (t *Tree[V]) Insert(low, high int64, value V) {
	var parent *inode[V]
	n := t.root
	for n != nil {
		parent = n
		if low < n.low {
			n = n.left
		} else {
			n = n.right
		}
	}

	leaf := xnode.New[inode[V]](t.a)
	leaf.low, leaf.high, leaf.maxEdge, leaf.val, leaf.color, leaf.parent = low, high, high, value, red, parent
	switch {
	case parent == nil:
		t.root = leaf
	case low < parent.low:
		parent.left = leaf
	default:
		parent.right = leaf
	}
	t.count++
	t.insertFixup(leaf)

	for n := leaf; n != nil; n = n.parent {
		n.updateMax()
	}
}

// FindIntervals returns every stored interval [l,h] overlapping [lo,hi]
// (i.e. l ≤ hi ∧ lo ≤ h), in unspecified order.
func (t *Tree[V]) FindIntervals(lo, hi int64) []Interval[V] {
	var out []Interval[V]
	t.search(t.root, lo, hi, &out)
	return out
}

func (t *Tree[V]) search(n *inode[V], lo, hi int64, out *[]Interval[V]) {
	if n == nil {
		return
	}
	if n.left != nil && n.left.maxEdge >= lo {
		t.search(n.left, lo, hi, out)
	}
	if n.low <= hi && lo <= n.high {
		*out = append(*out, Interval[V]{Low: n.low, High: n.high, Value: n.val})
	}
	if n.right != nil && n.low <= hi {
		t.search(n.right, lo, hi, out)
	}
}

func (n *inode[V]) updateMax() {
	m := n.high
	if n.left != nil && n.left.maxEdge > m {
		m = n.left.maxEdge
	}
	if n.right != nil && n.right.maxEdge > m {
		m = n.right.maxEdge
	}
	n.maxEdge = m
}
