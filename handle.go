package tclbind

import (
	"runtime"
	"sync/atomic"

	"github.com/tclbind/tclbind/tclc"
)

// Handle is an owning wrapper around an interpreter object. Every live
// Handle accounts for exactly one increment of the object's reference
// count; the count is dropped exactly once, either by an explicit Release
// or by the wrapper's finalizer.
type Handle struct {
	rt       *tclc.Runtime
	obj      tclc.Obj
	released atomic.Bool
}

// Acquire wraps obj in an owning Handle, incrementing its reference count.
func Acquire(rt *tclc.Runtime, obj tclc.Obj) *Handle {
	rt.IncrRefCount(obj)
	h := &Handle{rt: rt, obj: obj}
	runtime.SetFinalizer(h, (*Handle).finalize)
	return h
}

func (h *Handle) finalize() { h.Release() }

// Release drops the handle's reference. Safe to call more than once; only
// the first call decrements. After Release the handle must not be used.
func (h *Handle) Release() {
	if !h.released.CompareAndSwap(false, true) {
		return
	}
	runtime.SetFinalizer(h, nil)
	h.rt.DecrRefCount(h.obj)
}

// Obj returns the underlying object token.
func (h *Handle) Obj() tclc.Obj { return h.obj }

// Runtime returns the runtime the object lives in.
func (h *Handle) Runtime() *tclc.Runtime { return h.rt }

// IsShared reports whether the object is referenced from more than one
// place, meaning it must not be mutated through this handle.
func (h *Handle) IsShared() bool { return h.rt.IsShared(h.obj) }

// Duplicate returns a handle on an independent copy. The copy is never
// shared, so it may be mutated freely.
func (h *Handle) Duplicate() *Handle {
	return Acquire(h.rt, h.rt.DuplicateObj(h.obj))
}

// String returns the object's text representation, generating it from the
// internal representation if necessary.
func (h *Handle) String() string { return h.rt.GetStringFromObj(h.obj) }
