// Package array implements wmem's growable, uniform-element-size array:
// random access, append, sort, and an optional null-terminator mode for
// C-string-like usage.
//
// Grounded on the growth/casting shape of pkg/arena/slice/slice.go, adapted
// to root every Array in an *wmem.Allocator's plain []byte storage instead
// of an arena-pointer Slice[T], per SPEC_FULL.md §6 Open Question 3.
package array

import (
	"sort"
	"unsafe"

	"github.com/ohbentos/wireshark/wsutil/wmem/pkg/xunsafe"
	"github.com/ohbentos/wireshark/wsutil/wmem/pkg/xunsafe/layout"

	"github.com/ohbentos/wireshark/wsutil/wmem"
)

// Array is a growable, random-access sequence of T, backed by one
// *wmem.Allocator. The zero value is not usable; construct one with [New].
type Array[T any] struct {
	a        *wmem.Allocator
	raw      []byte
	len      int
	elemSize int
	nulTerm  bool
}

// New creates an empty array rooted in a, reserving capacity for at least
// hint elements (0 is a valid hint; the first append reserves a small
// default). If nulTerm is true, the array always keeps one extra zeroed
// element past the last live one, so [Array.Raw] can be handed to code that
// expects a null terminator.
func New[T any](a *wmem.Allocator, hint int, nulTerm bool) *Array[T] {
	arr := &Array[T]{a: a, elemSize: layout.Size[T](), nulTerm: nulTerm}
	if hint > 0 {
		arr.reserve(hint)
	}
	return arr
}

// Len returns the number of live elements.
func (arr *Array[T]) Len() int { return arr.len }

// GetCount is an alias for [Array.Len], matching the component's spec name.
func (arr *Array[T]) GetCount() int { return arr.len }

func (arr *Array[T]) cap() int {
	if arr.elemSize == 0 {
		return 0
	}
	return len(arr.raw) / arr.elemSize
}

// Raw returns the live elements as a Go slice sharing storage with arr. It
// is invalidated by the array's next growing mutation or by the owning
// allocator's FreeAll/Destroy.
func (arr *Array[T]) Raw() []T {
	if arr.len == 0 {
		return nil
	}
	return unsafe.Slice(arr.ptr(), arr.len)
}

func (arr *Array[T]) ptr() *T {
	if len(arr.raw) == 0 {
		return nil
	}
	return xunsafe.Cast[T](unsafe.SliceData(arr.raw))
}

// Index returns the element at i. It panics if i is out of range; callers
// that want an absent-on-miss result should use [Array.TryIndex].
func (arr *Array[T]) Index(i int) T {
	if i < 0 || i >= arr.len {
		panic("wmem/container/array: index out of range")
	}
	return xunsafe.Load(arr.ptr(), i)
}

// TryIndex returns the element at i, or the zero value and false if i is
// out of range.
func (arr *Array[T]) TryIndex(i int) (T, bool) {
	if i < 0 || i >= arr.len {
		var zero T
		return zero, false
	}
	return xunsafe.Load(arr.ptr(), i), true
}

// AppendOne appends a single element, growing the backing storage if
// necessary.
func (arr *Array[T]) AppendOne(v T) {
	arr.reserve(arr.len + 1)
	xunsafe.Store(arr.ptr(), arr.len, v)
	arr.len++
	arr.writeTerminator()
}

// Append copies src onto the end of arr, growing as necessary.
func (arr *Array[T]) Append(src []T) {
	if len(src) == 0 {
		return
	}
	arr.reserve(arr.len + len(src))
	dst := unsafe.Slice(arr.ptr(), arr.len+len(src))[arr.len:]
	copy(dst, src)
	arr.len += len(src)
	arr.writeTerminator()
}

// Truncate shrinks the live length to min(n, current length). It never
// grows the array; use [Array.AppendOne] or [Array.Append] for that.
func (arr *Array[T]) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n < arr.len {
		arr.len = n
		arr.writeTerminator()
	}
}

// Sort reorders the live elements in place using cmp, following the
// conventions of [sort.Slice]'s comparator (cmp(a,b) reports a < b).
func (arr *Array[T]) Sort(cmp func(a, b T) bool) {
	s := arr.Raw()
	sort.Slice(s, func(i, j int) bool { return cmp(s[i], s[j]) })
}

// reserve ensures the backing storage can hold at least n elements
// (plus one more, zeroed, if nulTerm is set), growing geometrically (×2)
// when it cannot.
func (arr *Array[T]) reserve(n int) {
	need := n
	if arr.nulTerm {
		need++
	}
	if need <= arr.cap() {
		return
	}

	newCap := arr.cap()
	if newCap == 0 {
		newCap = 4
	}
	for newCap < need {
		newCap *= 2
	}

	newRaw := arr.a.Alloc0(newCap * arr.elemSize)
	copy(newRaw, arr.raw[:arr.len*arr.elemSize])
	arr.raw = newRaw
}

func (arr *Array[T]) writeTerminator() {
	if !arr.nulTerm {
		return
	}
	var zero T
	xunsafe.Store(arr.ptr(), arr.len, zero)
}
