package tclbind_test

import (
	"testing"

	"github.com/tclbind/tclbind"
	"github.com/tclbind/tclbind/tclc"
)

func TestHandleOwnsOneReference(t *testing.T) {
	rt := tclc.NewRuntime()

	obj := rt.NewIntObj(42)
	h := tclbind.Acquire(rt, obj)
	if got := rt.RefCount(obj); got != 1 {
		t.Fatalf("refcount after Acquire = %d, want 1", got)
	}
	if h.IsShared() {
		t.Error("singly referenced handle reported as shared")
	}

	h.Release()
	if rt.Live(obj) {
		t.Error("object still live after Release")
	}
}

func TestHandleReleaseIsIdempotent(t *testing.T) {
	rt := tclc.NewRuntime()

	obj := rt.NewIntObj(1)
	rt.IncrRefCount(obj) // second owner
	h := tclbind.Acquire(rt, obj)

	h.Release()
	h.Release()
	if got := rt.RefCount(obj); got != 1 {
		t.Errorf("refcount after double Release = %d, want 1", got)
	}
}

func TestHandleSharing(t *testing.T) {
	rt := tclc.NewRuntime()

	obj := rt.NewIntObj(5)
	a := tclbind.Acquire(rt, obj)
	b := tclbind.Acquire(rt, obj)
	defer b.Release()

	if !a.IsShared() {
		t.Error("object with two handles not reported as shared")
	}
	a.Release()
	if b.IsShared() {
		t.Error("object with one handle still reported as shared")
	}
}

func TestDuplicateIsNeverShared(t *testing.T) {
	rt := tclc.NewRuntime()

	obj := rt.NewStringObj("payload")
	a := tclbind.Acquire(rt, obj)
	b := tclbind.Acquire(rt, obj)
	defer a.Release()
	defer b.Release()

	dup := a.Duplicate()
	defer dup.Release()
	if dup.IsShared() {
		t.Error("freshly duplicated handle reported as shared")
	}
	if dup.String() != "payload" {
		t.Errorf("duplicate string = %q, want %q", dup.String(), "payload")
	}
	if dup.Obj() == a.Obj() {
		t.Error("duplicate returned the original object")
	}
}
