//go:build debug

// Package wmemdebug includes diagnostics that only exist in debug builds.
//
// Fatal contract violations (OOM, canary corruption, use of a destroyed
// allocator) always abort regardless of this build tag; only the optional
// tracing and non-fatal assertions below are tag-gated, so release builds
// pay nothing for them.
package wmemdebug

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/timandy/routine"
)

// Enabled is true when the package was built with the debug tag.
const Enabled = true

// logPattern is **regexp.Regexp (rather than *regexp.Regexp) so flag.Func's
// closure can populate it without needing an init func of its own.
var logPattern = func() **regexp.Regexp {
	v := new(*regexp.Regexp)
	flag.Func("wmem.filter", "regexp to filter wmem debug logs by", func(s string) (err error) {
		*v, err = regexp.Compile(s)
		return err
	})
	return v
}()

var nocapture = flag.Bool("wmem.nocapture", false, "disables capturing wmem debug logs as test logs")

// Log prints a trace line identifying the allocator/container operation that
// produced it. context is an optional leading Printf-style prefix, used to
// tag a message with the allocator or container instance it concerns.
func Log(context []any, operation, format string, args ...any) {
	skip := 2
	pc, file, line, _ := runtime.Caller(skip)
	fn := runtime.FuncForPC(pc)

	pkg := fn.Name()
	pkg = strings.TrimPrefix(pkg, "github.com/ohbentos/wireshark/wsutil/wmem")
	pkg = strings.TrimPrefix(pkg, "/")
	if idx := strings.Index(pkg, "."); idx >= 0 {
		pkg = pkg[:idx]
	}

	file = filepath.Base(file)

	buf := new(strings.Builder)
	fmt.Fprintf(buf, "%s/%s:%d [g%04d", pkg, file, line, routine.Goid())
	if len(context) >= 1 {
		fmt.Fprintf(buf, ", "+context[0].(string), context[1:]...)
	}
	fmt.Fprintf(buf, "] %s: ", operation)
	fmt.Fprintf(buf, format, args...)

	if *logPattern != nil && !(*logPattern).MatchString(buf.String()) {
		return
	}

	if !*nocapture {
		buf.WriteByte('\n')
	}
	os.Stderr.WriteString(buf.String())
}

// Assert panics with a diagnostic if cond is false. Only active in debug
// builds; release builds treat the condition as an invariant the caller is
// trusted to uphold.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Errorf("wmem: assertion failed: "+format, args...))
	}
}

// Value holds a value of any type that only exists when the debug tag is
// enabled, for diagnostics too expensive to carry in release builds (e.g.
// the creation call site of an allocator, captured so a fatal "use after
// Destroy" can name where the allocator came from). The zero value holds
// the zero T.
type Value[T any] struct {
	x T
}

// Get returns a pointer to the underlying value.
func (v *Value[T]) Get() *T { return &v.x }
