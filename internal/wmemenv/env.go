// Package wmemenv implements the single environment-variable override named
// in spec.md §6: WMEM_STRATEGY, which forces every allocator.New call in the
// process to return a specific strategy regardless of its argument. This is
// used to fuzz an entire program under STRICT without touching call sites.
package wmemenv

import (
	"os"
	"strings"
	"sync"
)

// StrategyName parses WMEM_STRATEGY, once, into a canonical upper-case name
// ("SIMPLE", "BLOCK", "BLOCK_FAST", "STRICT") or "" if unset or unrecognized.
var StrategyName = sync.OnceValue(func() string {
	v := strings.ToUpper(strings.TrimSpace(os.Getenv("WMEM_STRATEGY")))
	switch v {
	case "SIMPLE", "BLOCK", "BLOCK_FAST", "STRICT":
		return v
	default:
		return ""
	}
})
