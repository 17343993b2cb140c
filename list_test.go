package tclbind_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tclbind/tclbind"
)

func TestListBuildWithNamedArgs(t *testing.T) {
	p := tclbind.NewPermanent()
	defer p.Delete()

	list := p.NewList()
	defer list.Release()
	err := p.AppendArgs(list,
		1, "hello", []int{2, 3, 4},
		tclbind.Named("in_", "container"),
	)
	if err != nil {
		t.Fatalf("AppendArgs failed: %v", err)
	}

	got, err := tclbind.Project(list)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	want := []any{int32(1), "hello", []int32{2, 3, 4}, "-in", "container"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("list mismatch (-want +got):\n%s", diff)
	}
	if s := list.String(); s != "1 hello {2 3 4} -in container" {
		t.Errorf("list string = %q", s)
	}
}

func TestNamedArgFlagTokens(t *testing.T) {
	p := tclbind.NewPermanent()
	defer p.Delete()

	tests := []struct {
		key  string
		want string
	}{
		{"width", "-width"},
		{"in_", "-in"},
		{"_type", "-type"},
	}
	for _, tt := range tests {
		list := p.NewList()
		if err := p.AppendArgs(list, tclbind.Named(tt.key, "v")); err != nil {
			t.Fatalf("AppendArgs(%q) failed: %v", tt.key, err)
		}
		if got := list.String(); got != tt.want+" v" {
			t.Errorf("key %q: list = %q, want %q", tt.key, got, tt.want+" v")
		}
		list.Release()
	}
}

func TestAppendExistingHandleKeepsCallerOwnership(t *testing.T) {
	p := tclbind.NewPermanent()
	defer p.Delete()

	elem, err := p.FromHost(42)
	if err != nil {
		t.Fatal(err)
	}
	list := p.NewList()
	defer list.Release()
	if err := p.Append(list, elem); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	// the caller's reference and the list's reference both stand
	if got := p.Runtime().RefCount(elem.Obj()); got != 2 {
		t.Errorf("element refcount = %d, want 2", got)
	}
	elem.Release()
	if !p.Runtime().Live(elem.Obj()) {
		t.Error("element freed while the list still holds it")
	}
}

func TestAppendToSharedListFails(t *testing.T) {
	p := tclbind.NewPermanent()
	defer p.Delete()

	list := p.NewList()
	defer list.Release()
	second := tclbind.Acquire(p.Runtime(), list.Obj())
	defer second.Release()

	err := p.Append(list, 1)
	if _, ok := err.(*tclbind.ListAppendError); !ok {
		t.Fatalf("err = %v, want ListAppendError", err)
	}
	var shared *tclbind.SharedObjectError
	if !errors.As(err, &shared) {
		t.Errorf("err %v does not unwrap to SharedObjectError", err)
	}

	// duplicating first makes the append legal
	dup := list.Duplicate()
	defer dup.Release()
	if err := p.Append(dup, 1); err != nil {
		t.Errorf("append to duplicate failed: %v", err)
	}
}
