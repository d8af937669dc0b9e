package wmem

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/ohbentos/wireshark/wsutil/wmem/internal/wmemdebug"
	"github.com/ohbentos/wireshark/wsutil/wmem/internal/wmemenv"
)

// strategyImpl is the dispatch surface every strategy implements. Allocator
// holds one strategyImpl and forwards to it, per the tagged-variant design
// in spec.md §9 ("model as a tagged variant... with a small dispatch table").
type strategyImpl interface {
	alloc(n int) []byte
	alloc0(n int) []byte
	realloc(p []byte, n int) []byte
	free(p []byte)
	freeAll()
	gc()
	destroyImpl()
}

// verifier is implemented by strategies with a meaningful internal
// consistency check (spec.md §4.3's verify(a)): Block checks its chunk
// partition and free list, Strict checks every live allocation's canaries.
// Strategies without one (Simple, BlockFast) don't implement it, and
// Allocator.Verify treats that as trivially-true.
type verifier interface {
	verify() error
}

// Allocator is an opaque handle identifying one allocation arena. The zero
// value is not usable; construct one with [New] or [ForceNew].
type Allocator struct {
	strategy  Strategy
	impl      strategyImpl
	callbacks callbackRegistry
	destroyed bool

	// debugOrigin records the file:line that created this allocator, in
	// debug builds only, so a fatal use-after-Destroy can name where the
	// allocator came from.
	debugOrigin wmemdebug.Value[string]
}

// New creates an allocator using the given strategy, unless the WMEM_STRATEGY
// environment variable is set, in which case it overrides every call (spec.md
// §6) — used to run an entire program's test suite under, e.g., STRICT.
// Use [ForceNew] to bypass the override in tests that must exercise one
// specific strategy regardless of the environment.
func New(strategy Strategy) *Allocator {
	if name := wmemenv.StrategyName(); name != "" {
		strategy = strategyFromEnvName(name)
	}
	return ForceNew(strategy)
}

// ForceNew creates an allocator using exactly the given strategy, ignoring
// WMEM_STRATEGY. This is the "internal force_new entry point" named in
// spec.md §6.
func ForceNew(strategy Strategy) *Allocator {
	a := &Allocator{strategy: strategy}
	switch strategy {
	case Simple:
		a.impl = newSimple()
	case Block:
		a.impl = newBlock()
	case BlockFast:
		a.impl = newBlockFast()
	case Strict:
		a.impl = newStrict()
	default:
		fatalf("New", "unknown strategy %v", strategy)
	}
	if wmemdebug.Enabled {
		_, file, line, _ := runtime.Caller(1)
		*a.debugOrigin.Get() = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}
	wmemdebug.Log([]any{"%p", a}, "new", "strategy=%v", strategy)
	return a
}

func strategyFromEnvName(name string) Strategy {
	switch name {
	case "SIMPLE":
		return Simple
	case "BLOCK":
		return Block
	case "BLOCK_FAST":
		return BlockFast
	case "STRICT":
		return Strict
	default:
		return Block
	}
}

// Strategy reports which strategy this allocator was created with (the
// effective one, after any WMEM_STRATEGY override).
func (a *Allocator) Strategy() Strategy { return a.strategy }

func (a *Allocator) checkAlive(op string) {
	if a.destroyed {
		if wmemdebug.Enabled {
			fatalf(op, "use of allocator %p after Destroy (created at %s)", a, *a.debugOrigin.Get())
		}
		fatalf(op, "use of allocator %p after Destroy", a)
	}
}

// Alloc returns n uninitialized bytes, aligned for any primitive type. It
// aborts fatally on OOM or misuse of a destroyed allocator; it never returns
// an error.
func (a *Allocator) Alloc(n int) []byte {
	a.checkAlive("Alloc")
	if n < 0 {
		fatalf("Alloc", "negative size %d", n)
	}
	return a.impl.alloc(n)
}

// Alloc0 is like [Allocator.Alloc] but zero-fills the returned bytes.
func (a *Allocator) Alloc0(n int) []byte {
	a.checkAlive("Alloc0")
	if n < 0 {
		fatalf("Alloc0", "negative size %d", n)
	}
	return a.impl.alloc0(n)
}

// Realloc grows or shrinks p to n bytes, preserving the content prefix of
// min(len(p), n) bytes. p must have been returned by this same allocator and
// not yet freed.
func (a *Allocator) Realloc(p []byte, n int) []byte {
	a.checkAlive("Realloc")
	if n < 0 {
		fatalf("Realloc", "negative size %d", n)
	}
	return a.impl.realloc(p, n)
}

// Free returns one block to the allocator. It is a no-op on [BlockFast]; on
// [Simple] and [Block] it removes the block from tracking; on [Strict] it
// validates canaries and poisons the payload before releasing it.
func (a *Allocator) Free(p []byte) {
	a.checkAlive("Free")
	a.impl.free(p)
}

// FreeAll drops every outstanding allocation made through a, firing every
// registered [FreeEvent] callback (newest-registration-first) first. Every
// pointer previously returned by a becomes invalid; the allocator may reuse
// their addresses for future allocations.
func (a *Allocator) FreeAll() {
	a.checkAlive("FreeAll")
	a.callbacks.fire(FreeEvent)
	a.impl.freeAll()
	wmemdebug.Log([]any{"%p", a}, "free_all", "")
}

// GC hints to the strategy that it may return freed memory to the system
// allocator. Some strategies treat this as a no-op.
func (a *Allocator) GC() {
	a.checkAlive("GC")
	a.impl.gc()
}

// Destroy fires FREE then DESTROY callbacks (in that order, each in reverse
// registration order), then releases every byte of memory owned by a,
// including the handle's own bookkeeping. a must not be used afterwards.
func (a *Allocator) Destroy() {
	a.checkAlive("Destroy")
	a.callbacks.fire(FreeEvent)
	a.callbacks.fire(DestroyEvent)
	a.impl.destroyImpl()
	a.destroyed = true
	wmemdebug.Log([]any{"%p", a}, "destroy", "")
}

// Verify walks the allocator's internal bookkeeping and reports the first
// consistency violation found, or nil. Strategies with no meaningful check
// (spec.md §9: BlockFast has none beyond its own simplicity) always return
// nil.
func (a *Allocator) Verify() error {
	a.checkAlive("Verify")
	if v, ok := a.impl.(verifier); ok {
		return v.verify()
	}
	return nil
}

// RegisterCallback registers fn to fire on every [FreeEvent] and on the
// single [DestroyEvent], with userData passed through unchanged. Returns a
// registration id usable with [Allocator.UnregisterCallback]. Per spec.md
// §8, if ids i1 < i2 are both registered when an event fires, i2's callback
// runs first.
func (a *Allocator) RegisterCallback(fn CallbackFunc, userData any) uint64 {
	a.checkAlive("RegisterCallback")
	return a.callbacks.register(fn, userData)
}

// UnregisterCallback removes a previously registered callback by id. It is a
// no-op if id is not currently registered (e.g. it already returned false
// from its last firing).
func (a *Allocator) UnregisterCallback(id uint64) {
	a.checkAlive("UnregisterCallback")
	a.callbacks.unregister(id)
}
