// Package list implements wmem's doubly-linked list: prepend/append/insert
// ordered by a stable comparator, O(1) removal via frame handles, and
// forward/backward traversal.
//
// Nodes are linked by ordinary (safe) Go pointers rather than indices into
// allocator-owned bytes: spec.md §9 sanctions this as an alternative to the
// arena+indices re-architecture for raw pointer graphs, "owned node structs
// with a clear 'the [list] owns every node; no external references survive
// free_all' rule." The node *storage* itself still comes from the List's
// *wmem.Allocator (via internal/xnode, the same a.Alloc0-backed approach
// container/array uses for its element storage), so a Frame is retired by
// the owning allocator's FreeAll/Destroy exactly like any other allocation,
// and a STRICT- or BLOCK_FAST-backed List gets the canary guarding or bump
// allocation those strategies exist to provide.
package list

import (
	"github.com/ohbentos/wireshark/wsutil/wmem"
	"github.com/ohbentos/wireshark/wsutil/wmem/internal/xnode"
)

// Frame is a handle to one node in a [List], exposing O(1) navigation
// without walking from the head. It is invalidated by removing its node.
type Frame[T any] struct {
	next, prev *Frame[T]
	data       T
}

// Next returns the following frame, or nil at the tail.
func (f *Frame[T]) Next() *Frame[T] { return f.next }

// Prev returns the preceding frame, or nil at the head.
func (f *Frame[T]) Prev() *Frame[T] { return f.prev }

// Data returns the value stored in this frame.
func (f *Frame[T]) Data() T { return f.data }

// List is a doubly-linked list rooted in a *wmem.Allocator. The zero value
// is an empty, usable list with no allocator affinity, whose frames come
// from the ordinary Go heap; construct one with [New] to record the owning
// allocator.
type List[T any] struct {
	a          *wmem.Allocator
	head, tail *Frame[T]
	count      int
}

// New creates an empty list associated with a.
func New[T any](a *wmem.Allocator) *List[T] {
	return &List[T]{a: a}
}

// Count returns the number of elements currently in the list.
func (l *List[T]) Count() int { return l.count }

// Head returns the first frame, or nil if the list is empty.
func (l *List[T]) Head() *Frame[T] { return l.head }

// Tail returns the last frame, or nil if the list is empty.
func (l *List[T]) Tail() *Frame[T] { return l.tail }

// Prepend inserts data at the head of the list and returns its frame.
func (l *List[T]) Prepend(data T) *Frame[T] {
	f := xnode.New[Frame[T]](l.a)
	f.data = data
	l.linkBefore(f, l.head)
	if l.tail == nil {
		l.tail = f
	}
	l.head = f
	l.count++
	return f
}

// Append inserts data at the tail of the list and returns its frame.
func (l *List[T]) Append(data T) *Frame[T] {
	f := xnode.New[Frame[T]](l.a)
	f.data = data
	l.linkAfter(f, l.tail)
	if l.head == nil {
		l.head = f
	}
	l.tail = f
	l.count++
	return f
}

// InsertSorted inserts data at the first position where less(data, existing)
// holds, keeping the list ordered by less. Equal-ranked elements are
// inserted after any existing equal elements, so repeated InsertSorted
// calls with equal keys preserve call order (stability).
func (l *List[T]) InsertSorted(data T, less func(a, b T) bool) *Frame[T] {
	for n := l.head; n != nil; n = n.next {
		if less(data, n.data) {
			f := xnode.New[Frame[T]](l.a)
			f.data = data
			l.linkBefore(f, n)
			if l.head == n {
				l.head = f
			}
			l.count++
			return f
		}
	}
	return l.Append(data)
}

// Remove deletes the first frame whose data satisfies eq(data, candidate),
// reporting whether anything was removed.
func (l *List[T]) Remove(data T, eq func(a, b T) bool) bool {
	for n := l.head; n != nil; n = n.next {
		if eq(data, n.data) {
			l.unlink(n)
			return true
		}
	}
	return false
}

// Find returns the first frame whose data satisfies eq(data, candidate), or
// (nil, false) if none does.
func (l *List[T]) Find(data T, eq func(a, b T) bool) (*Frame[T], bool) {
	for n := l.head; n != nil; n = n.next {
		if eq(data, n.data) {
			return n, true
		}
	}
	return nil, false
}

// RemoveFrame deletes the node identified by f in O(1). f must belong to
// this list and must not have been removed already.
func (l *List[T]) RemoveFrame(f *Frame[T]) {
	l.unlink(f)
}

// Foreach calls fn for every element from head to tail, stopping early if
// fn returns false.
func (l *List[T]) Foreach(fn func(data T) bool) {
	for n := l.head; n != nil; n = n.next {
		if !fn(n.data) {
			return
		}
	}
}

func (l *List[T]) linkBefore(f, at *Frame[T]) {
	if at == nil {
		f.prev, f.next = l.tail, nil
		return
	}
	f.prev = at.prev
	f.next = at
	if at.prev != nil {
		at.prev.next = f
	}
	at.prev = f
}

func (l *List[T]) linkAfter(f, at *Frame[T]) {
	if at == nil {
		f.prev, f.next = nil, l.head
		return
	}
	f.next = at.next
	f.prev = at
	if at.next != nil {
		at.next.prev = f
	}
	at.next = f
}

func (l *List[T]) unlink(n *Frame[T]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.next, n.prev = nil, nil
	l.count--
	xnode.Free(l.a, n)
}
