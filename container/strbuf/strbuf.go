// Package strbuf implements wmem's growable, always-NUL-terminated string
// builder.
//
// Grounded on container/array's growth machinery (itself grounded on
// pkg/arena/slice/slice.go) with the null-terminator mode enabled, plus
// the standard library's unicode/utf8 for rune encoding and validation.
package strbuf

import (
	"fmt"
	"unicode/utf8"
	"unsafe"

	"github.com/ohbentos/wireshark/wsutil/wmem"
	"github.com/ohbentos/wireshark/wsutil/wmem/container/array"
)

// StrBuf is a growable byte buffer that always keeps an internal NUL
// terminator one byte past its live length, for easy interop with
// NUL-terminated C-style consumers. The zero value is not usable;
// construct one with [New].
type StrBuf struct {
	buf *array.Array[byte]
}

// New creates an empty string builder rooted in a, reserving storage for
// at least hint bytes.
func New(a *wmem.Allocator, hint int) *StrBuf {
	return &StrBuf{buf: array.New[byte](a, hint, true)}
}

// Len returns the number of live bytes (not counting the internal NUL).
func (b *StrBuf) Len() int { return b.buf.Len() }

// GetLen is an alias for [StrBuf.Len], matching the component's spec name.
func (b *StrBuf) GetLen() int { return b.buf.Len() }

// String returns the current contents as a Go string, sharing storage with
// b. It is invalidated by b's next growing mutation or by the owning
// allocator's FreeAll/Destroy.
func (b *StrBuf) String() string {
	raw := b.buf.Raw()
	if len(raw) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(raw), len(raw))
}

// GetStr is an alias for [StrBuf.String], matching the component's spec
// name.
func (b *StrBuf) GetStr() string { return b.String() }

// Append appends s.
func (b *StrBuf) Append(s string) {
	b.buf.Append([]byte(s))
}

// AppendLen appends the first n bytes of p.
func (b *StrBuf) AppendLen(p []byte, n int) {
	b.buf.Append(p[:n])
}

// AppendByte appends a single byte.
func (b *StrBuf) AppendByte(c byte) {
	b.buf.AppendOne(c)
}

// AppendByteCount appends c repeated k times.
func (b *StrBuf) AppendByteCount(c byte, k int) {
	if k <= 0 {
		return
	}
	run := make([]byte, k)
	for i := range run {
		run[i] = c
	}
	b.buf.Append(run)
}

// AppendPrintf formats format/args with [fmt.Sprintf] and appends the
// result. Go's fmt package subsumes the original's two-pass vsnprintf
// sizing dance, so this is a thin wrapper rather than a port of it.
func (b *StrBuf) AppendPrintf(format string, args ...any) {
	b.Append(fmt.Sprintf(format, args...))
}

// AppendUnichar UTF-8 encodes cp and appends the result.
func (b *StrBuf) AppendUnichar(cp rune) {
	var enc [utf8.UTFMax]byte
	n := utf8.EncodeRune(enc[:], cp)
	b.buf.Append(enc[:n])
}

// Truncate shrinks the live length to min(k, current). It never grows the
// buffer.
func (b *StrBuf) Truncate(k int) {
	b.buf.Truncate(k)
}

// Utf8Validate scans the buffer's current contents for well-formed UTF-8,
// treating embedded NUL bytes as valid data. It returns the byte offset of
// the first ill-formed sequence and false, or len(contents) and true if the
// entire buffer is valid.
func (b *StrBuf) Utf8Validate() (endPos int, ok bool) {
	s := b.String()
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			return i, false
		}
		i += size
	}
	return len(s), true
}
