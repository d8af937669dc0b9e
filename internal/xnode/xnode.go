// Package xnode allocates single, allocator-rooted nodes for the pointer
// graphs behind container/list, container/wmap, container/tree, and
// container/itree — the "owned node structs" alternative to arena+indices
// named in spec.md §9 means the links between nodes are ordinary safe Go
// pointers, not the node *storage* itself: each node still must come from
// the container's own *wmem.Allocator, the same way container/array backs
// its element storage with a.Alloc0 instead of a Go composite literal, so
// that STRICT's canaries and BLOCK_FAST's bump allocation actually cover
// it and so the node becomes invalid along with the rest of the
// allocator's memory on FreeAll/Destroy.
package xnode

import (
	"unsafe"

	"github.com/ohbentos/wireshark/wsutil/wmem"
	"github.com/ohbentos/wireshark/wsutil/wmem/pkg/xunsafe"
	"github.com/ohbentos/wireshark/wsutil/wmem/pkg/xunsafe/layout"
)

// New allocates one zeroed T from a and returns a typed pointer into that
// allocation. A nil a allocates the node from the ordinary Go heap instead.
func New[T any](a *wmem.Allocator) *T {
	if a == nil {
		return new(T)
	}
	buf := a.Alloc0(layout.Size[T]())
	return xunsafe.Cast[T](unsafe.SliceData(buf))
}

// Free returns p's backing allocation to a. p must have been produced by
// [New] with the same a and not already freed. With a nil a it does nothing,
// leaving the node to the Go garbage collector.
func Free[T any](a *wmem.Allocator, p *T) {
	if a == nil {
		return
	}
	a.Free(xunsafe.Bytes(p))
}
