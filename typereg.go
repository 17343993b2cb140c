package tclbind

import (
	"sync"

	"github.com/tclbind/tclbind/tclc"
)

// Kind classifies an object's current internal representation.
type Kind int

const (
	KindString Kind = iota
	KindBoolean
	KindInt
	KindWide
	KindDouble
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindInt:
		return "int"
	case KindWide:
		return "wide"
	case KindDouble:
		return "double"
	case KindList:
		return "list"
	}
	return "string"
}

// Registry records the runtime's type-tag pointers, resolved once per
// runtime by probing freshly created sample objects. Tag records are
// stable for the runtime's lifetime, so classification afterward is a
// plain pointer comparison.
type Registry struct {
	boolean *tclc.ObjType
	intTag  *tclc.ObjType
	wide    *tclc.ObjType
	double  *tclc.ObjType
	list    *tclc.ObjType

	// wideIsInt records whether the int and wide probes returned the same
	// tag. The two are probed independently and compared, never assumed
	// distinct or identical.
	wideIsInt bool
}

var registries sync.Map // *tclc.Runtime -> *Registry

// RegistryFor returns the type registry for rt, probing it on first use.
func RegistryFor(rt *tclc.Runtime) *Registry {
	if v, ok := registries.Load(rt); ok {
		return v.(*Registry)
	}
	v, _ := registries.LoadOrStore(rt, probeTypes(rt))
	return v.(*Registry)
}

// probeTypes creates one sample object per kind, reads its tag, and frees
// the sample.
func probeTypes(rt *tclc.Runtime) *Registry {
	probe := func(obj tclc.Obj) *tclc.ObjType {
		tag := rt.GetObjType(obj)
		rt.IncrRefCount(obj)
		rt.DecrRefCount(obj)
		return tag
	}
	r := &Registry{
		boolean: probe(rt.NewBooleanObj(true)),
		intTag:  probe(rt.NewIntObj(0)),
		wide:    probe(rt.NewWideObj(1 << 40)),
		double:  probe(rt.NewDoubleObj(0.5)),
		list:    probe(rt.NewListObj()),
	}
	r.wideIsInt = r.intTag == r.wide
	return r
}

// Classify maps the object's current tag to a Kind. An object with no tag
// yet, or a tag outside the recorded set, classifies as string: the
// runtime treats untyped objects as text. When the int and wide tags
// coincide, the narrower int classification wins and extraction falls
// back to wide on overflow.
func (r *Registry) Classify(rt *tclc.Runtime, obj tclc.Obj) Kind {
	switch tag := rt.GetObjType(obj); tag {
	case nil:
		return KindString
	case r.boolean:
		return KindBoolean
	case r.intTag:
		return KindInt
	case r.wide:
		return KindWide
	case r.double:
		return KindDouble
	case r.list:
		return KindList
	default:
		return KindString
	}
}
