package tree

import (
	"strings"

	"github.com/ohbentos/wireshark/wsutil/wmem/internal/wmemdebug"
)

const (
	// MaxKeySegments bounds the number of 32-bit words in an array key
	// passed to [CompareSegments], per the original wmem test suite's
	// WMEM_TREE_MAX_KEY_COUNT. Enforced only as a debug-mode assertion
	// (spec.md §7 kind 3), matching the original's own assert-only
	// enforcement — a release build trusts the caller.
	MaxKeySegments = 8
	// MaxSegmentWords is the original's WMEM_TREE_MAX_KEY_LEN (32-bit
	// words per segment), kept for parity. [CompareSegments] treats each
	// element of its key slices as a one-word segment and does not consult
	// this constant.
	MaxSegmentWords = 4
)

// CompareUint32 orders keys as plain unsigned 32-bit integers.
func CompareUint32(a, b uint32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// CompareSegments orders two keys that are each an array of 32-bit words,
// lexicographically: word by word, with a shorter-but-equal-prefix key
// ordering before its longer extension.
func CompareSegments(a, b []uint32) int {
	wmemdebug.Assert(len(a) <= MaxKeySegments, "array key has %d segments, exceeding MaxKeySegments", len(a))
	wmemdebug.Assert(len(b) <= MaxKeySegments, "array key has %d segments, exceeding MaxKeySegments", len(b))

	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return CompareUint32(a[i], b[i])
		}
	}
	return CompareUint32(uint32(len(a)), uint32(len(b)))
}

// CompareStrings returns a byte-wise string comparator, optionally folding
// ASCII case before comparing (for case-insensitive keys).
func CompareStrings(caseFold bool) func(a, b string) int {
	if !caseFold {
		return strings.Compare
	}
	return func(a, b string) int {
		for i := 0; i < len(a) && i < len(b); i++ {
			ca, cb := a[i], b[i]
			if 'A' <= ca && ca <= 'Z' {
				ca += 'a' - 'A'
			}
			if 'A' <= cb && cb <= 'Z' {
				cb += 'a' - 'A'
			}
			if ca != cb {
				return CompareUint32(uint32(ca), uint32(cb))
			}
		}
		return CompareUint32(uint32(len(a)), uint32(len(b)))
	}
}
