// Package tclbind marshals host values in and out of an embedded
// Tcl-convention object runtime without breaking its reference-counting
// and copy-on-write rules.
//
// # Overview
//
// The runtime's objects carry their reference count and a lazily
// populated type tag. tclbind wraps them in owning handles, classifies
// their representation through a probed type registry, projects lists
// recursively with element-type promotion, and bridges host functions
// into script-invocable commands. It provides:
//
//   - Handle: an owning wrapper that pairs its lifetime with exactly one
//     reference-count increment
//   - Project / FromHost: typed conversion in both directions over a
//     closed set of host kinds
//   - Interp: script and command-vector evaluation with result retrieval
//     as text, handle, or projected value
//   - RegisterCommand: pinned host callables invocable from scripts
//
// # Quick Start
//
//	import "github.com/tclbind/tclbind"
//
//	func main() {
//	    interp := tclbind.NewPermanent()
//	    defer interp.Delete()
//
//	    interp.SetVar("name", "World")
//	    greeting, _ := interp.EvalString(`set greeting "Hello, $name"`)
//
//	    interp.RegisterCommand("sum", func(name string, args []string) tclbind.Result {
//	        total := 0
//	        for _, a := range args {
//	            n, err := strconv.Atoi(a)
//	            if err != nil {
//	                return tclbind.Error(err.Error())
//	            }
//	            total += n
//	        }
//	        return tclbind.OK(total)
//	    })
//	    v, _ := interp.Eval("sum 1 2 3") // int32(6)
//	}
//
// # Ownership
//
// Objects are created with a zero reference count; Acquire pairs the
// wrapper with one increment and Release (or the wrapper's finalizer)
// with exactly one decrement. A shared object (reference count above
// one) is never mutated through the bridge: mutating calls fail with
// SharedObjectError or ListAppendError and the caller decides whether to
// Duplicate.
//
// # Projection
//
// Project maps a handle's current representation to bool, int32, int64,
// float64, string, or a slice. Lists of a uniform numeric family promote
// to the widest member's width ([]int32, []int64, []float64); uniform
// strings become []string; any mixture stays []any.
package tclbind
