// Package wmem implements Wireshark's memory manager: a scoped,
// region-based allocator framework with pluggable strategies, used by the
// surrounding protocol analyzer to avoid freeing thousands of short-lived
// per-packet objects one at a time.
//
// # Strategies
//
// An [Allocator] is created with one of four [Strategy] values:
//
//   - [Simple]: tracks every live allocation in a map; free/free_all just
//     walk the map. The reference strategy, used to validate the others.
//   - [Block]: large chunks carved into free-list-managed sub-blocks, with
//     coalescing and a dedicated path for oversize ("jumbo") allocations.
//     The workhorse strategy for everyday dissection work.
//   - [BlockFast]: a pure bump allocator over the same chunk shape as
//     [Block], with no per-block free — about 3x faster for write-once,
//     read-many per-packet data.
//   - [Strict]: every allocation is flanked by canary bytes and poisoned on
//     free, to catch use-after-free and buffer overruns during development.
//
// # Lifecycle
//
//	a := wmem.New(wmem.Block)
//	defer a.Destroy()
//
//	p := a.Alloc(64)
//	// ... use p ...
//	a.FreeAll() // invalidates every pointer handed out by a
//
// Containers (array, list, map, tree, ...) live in the container/
// subpackages and are constructed from an *Allocator; see
// [github.com/ohbentos/wireshark/wsutil/wmem/container/array] and its
// siblings.
package wmem
