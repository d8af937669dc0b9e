package wmem

import (
	"fmt"
	"unsafe"
)

// zeroAlloc backs every zero-byte allocation across all four strategies, per
// SPEC_FULL.md §6 Open Question 1: Alloc(a, 0) always returns this
// distinguishable non-nil, zero-length slice rather than nil, so callers can
// reserve nil to mean "this call itself failed".
var zeroAlloc = make([]byte, 0, 1)

func allocResult(n int, buf []byte) []byte {
	if n == 0 {
		return zeroAlloc[:0]
	}
	return buf
}

// blockID returns an opaque, stable identity for the backing array of p,
// used as a map key by strategies that must recognize a block they
// previously handed out (SIMPLE's live-block map, BLOCK's jumbo map,
// STRICT's canary table). It never dereferences or arithmetics on
// the pointer; see SPEC_FULL.md §6 Open Question 3.
func blockID(p []byte) uintptr {
	if len(p) == 0 && cap(p) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(p)))
}

// Memdup allocates len(src) bytes from a and copies src into them.
func Memdup(a *Allocator, src []byte) []byte {
	dst := a.Alloc(len(src))
	copy(dst, src)
	return dst
}

// Strdup allocates a copy of s from a. The returned bytes are not
// NUL-terminated; wmem containers track length explicitly rather than
// relying on a sentinel byte (see [container/strbuf] for the one container
// that does keep an internal NUL for C-interop convenience).
func Strdup(a *Allocator, s string) string {
	buf := a.Alloc(len(s))
	copy(buf, s)
	return unsafe.String(unsafe.SliceData(buf), len(buf))
}

// StrdupPrintf formats format/args with [fmt.Sprintf] and copies the result
// into memory owned by a. Go's fmt package already subsumes the original
// wmem_strdup_printf's vsnprintf-based sizing dance, so this is a thin
// wrapper rather than a port of the original's two-pass allocation.
func StrdupPrintf(a *Allocator, format string, args ...any) string {
	return Strdup(a, fmt.Sprintf(format, args...))
}
