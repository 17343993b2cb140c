// Package tclc implements the C-convention object and interpreter surface
// that package tclbind binds against: a tagged, reference-counted object
// table with lazily populated type-tag pointers, interpreter contexts with
// variable and command tables, argument-vector and script evaluation, and a
// bounded event queue.
//
// The API follows TCL's C library conventions. Objects are created with a
// reference count of zero; a caller that wants to keep an object must call
// [Runtime.IncrRefCount], and [Runtime.DecrRefCount] frees the object when
// the count drops to zero or below. A shared object (count > 1) must never
// be mutated in place.
package tclc

import (
	"math"
	"strconv"
	"strings"
	"sync"
)

// Result is the status code returned by evaluation and command procedures.
// The numeric values follow the TCL convention and must not be renumbered.
type Result uint

const (
	OK       Result = 0
	Error    Result = 1
	Return   Result = 2
	Break    Result = 3
	Continue Result = 4
)

// Obj is a handle to an object in the runtime's object table.
// The zero handle is never a valid object.
type Obj uintptr

// ObjType identifies an internal representation kind. [Runtime.GetObjType]
// returns the address of one of these records; addresses are stable for the
// lifetime of the runtime, so they can be compared directly.
type ObjType struct {
	name string
}

// Name returns the type name (e.g. "int", "list").
func (t *ObjType) Name() string {
	if t == nil {
		return "string"
	}
	return t.name
}

// object is an entry in the object table. The reference count lives here,
// in the pointee, not in any host-side wrapper.
type object struct {
	refCount int
	bytes    string // cached string representation (valid if hasBytes)
	hasBytes bool
	typePtr  *ObjType // nil = pure string, no internal representation yet
	intVal   int64    // boolean, int and wide representations
	dblVal   float64  // double representation
	elems    []Obj    // list representation (each element is ref-counted)
}

// Runtime owns the object table, the type-tag records and the event queue.
// One runtime can serve several interpreters.
type Runtime struct {
	mu      sync.Mutex
	objects map[Obj]*object
	nextID  Obj
	events  []func()

	booleanType *ObjType
	intType     *ObjType
	wideType    *ObjType
	doubleType  *ObjType
	listType    *ObjType
}

// NewRuntime creates an initialized runtime with an empty object table.
func NewRuntime() *Runtime {
	return &Runtime{
		objects:     make(map[Obj]*object),
		nextID:      1,
		booleanType: &ObjType{name: "boolean"},
		intType:     &ObjType{name: "int"},
		wideType:    &ObjType{name: "wideInt"},
		doubleType:  &ObjType{name: "double"},
		listType:    &ObjType{name: "list"},
	}
}

// alloc stores an object and returns its handle.
func (rt *Runtime) alloc(o *object) Obj {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.allocLocked(o)
}

func (rt *Runtime) allocLocked(o *object) Obj {
	id := rt.nextID
	rt.nextID++
	rt.objects[id] = o
	return id
}

// -----------------------------------------------------------------------------
// Object constructors
// -----------------------------------------------------------------------------

// NewStringObj creates a pure string object. Its type tag stays unset until
// a conversion populates it.
func (rt *Runtime) NewStringObj(s string) Obj {
	return rt.alloc(&object{bytes: s, hasBytes: true})
}

// NewBooleanObj creates a boolean object.
func (rt *Runtime) NewBooleanObj(v bool) Obj {
	var iv int64
	if v {
		iv = 1
	}
	return rt.alloc(&object{typePtr: rt.booleanType, intVal: iv})
}

// NewIntObj creates an object of the runtime's native integer width.
func (rt *Runtime) NewIntObj(v int32) Obj {
	return rt.alloc(&object{typePtr: rt.intType, intVal: int64(v)})
}

// NewWideObj creates a wide (64-bit) integer object.
func (rt *Runtime) NewWideObj(v int64) Obj {
	return rt.alloc(&object{typePtr: rt.wideType, intVal: v})
}

// NewDoubleObj creates a floating-point object.
func (rt *Runtime) NewDoubleObj(v float64) Obj {
	return rt.alloc(&object{typePtr: rt.doubleType, dblVal: v})
}

// NewListObj creates a list object holding the given elements.
// The list takes a reference on each element.
func (rt *Runtime) NewListObj(elems ...Obj) Obj {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	stored := make([]Obj, len(elems))
	copy(stored, elems)
	for _, e := range stored {
		if o := rt.objects[e]; o != nil {
			o.refCount++
		}
	}
	return rt.allocLocked(&object{typePtr: rt.listType, elems: stored})
}

// -----------------------------------------------------------------------------
// Reference counting
// -----------------------------------------------------------------------------

// IncrRefCount takes a reference on the object.
func (rt *Runtime) IncrRefCount(h Obj) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if o := rt.objects[h]; o != nil {
		o.refCount++
	}
}

// DecrRefCount drops a reference. When the count reaches zero or below the
// object is freed and its list elements, if any, lose the list's reference.
func (rt *Runtime) DecrRefCount(h Obj) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.decrLocked(h)
}

func (rt *Runtime) decrLocked(h Obj) {
	o := rt.objects[h]
	if o == nil {
		return
	}
	o.refCount--
	if o.refCount <= 0 {
		delete(rt.objects, h)
		for _, e := range o.elems {
			rt.decrLocked(e)
		}
	}
}

// IsShared reports whether more than one reference to the object exists.
func (rt *Runtime) IsShared(h Obj) bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	o := rt.objects[h]
	return o != nil && o.refCount > 1
}

// RefCount returns the object's current reference count, or 0 for a stale
// handle.
func (rt *Runtime) RefCount(h Obj) int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if o := rt.objects[h]; o != nil {
		return o.refCount
	}
	return 0
}

// Live reports whether the handle still refers to an object in the table.
func (rt *Runtime) Live(h Obj) bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	_, ok := rt.objects[h]
	return ok
}

// LiveObjects returns the number of objects currently in the table.
func (rt *Runtime) LiveObjects() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return len(rt.objects)
}

// DuplicateObj creates an independent copy of the object with a reference
// count of zero. For lists the copy shares its elements (each element gains
// a reference); the spine itself is fresh and unshared.
func (rt *Runtime) DuplicateObj(h Obj) Obj {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	o := rt.objects[h]
	if o == nil {
		return 0
	}
	dup := &object{
		bytes:    o.bytes,
		hasBytes: o.hasBytes,
		typePtr:  o.typePtr,
		intVal:   o.intVal,
		dblVal:   o.dblVal,
	}
	if o.elems != nil {
		dup.elems = make([]Obj, len(o.elems))
		copy(dup.elems, o.elems)
		for _, e := range dup.elems {
			if eo := rt.objects[e]; eo != nil {
				eo.refCount++
			}
		}
	}
	return rt.allocLocked(dup)
}

// GetObjType returns the object's current type-tag pointer, or nil for a
// pure string object that has not yet been converted.
func (rt *Runtime) GetObjType(h Obj) *ObjType {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	o := rt.objects[h]
	if o == nil {
		return nil
	}
	return o.typePtr
}

// -----------------------------------------------------------------------------
// Scalar extraction (with shimmering)
// -----------------------------------------------------------------------------
//
// Extraction may rewrite an object's internal representation. All such reads
// and writes happen under rt.mu, because DecrRefCount runs on the host's
// finalizer goroutine and touches the same table; the *Locked helpers exist
// so that list string generation can recurse without re-locking.

// GetStringFromObj returns the string representation, regenerating it from
// the internal representation if needed.
func (rt *Runtime) GetStringFromObj(h Obj) string {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.stringLocked(rt.objects[h])
}

func (rt *Runtime) stringLocked(o *object) string {
	if o == nil {
		return ""
	}
	if !o.hasBytes {
		o.bytes = rt.updateStringLocked(o)
		o.hasBytes = true
	}
	return o.bytes
}

func (rt *Runtime) updateStringLocked(o *object) string {
	switch o.typePtr {
	case rt.booleanType:
		if o.intVal != 0 {
			return "1"
		}
		return "0"
	case rt.intType, rt.wideType:
		return strconv.FormatInt(o.intVal, 10)
	case rt.doubleType:
		return strconv.FormatFloat(o.dblVal, 'g', -1, 64)
	case rt.listType:
		return rt.listStringLocked(o)
	}
	return ""
}

// GetIntFromObj returns the native-width integer value of the object,
// shimmering a string representation if needed.
func (rt *Runtime) GetIntFromObj(h Obj) (int32, error) {
	v, err := rt.GetWideFromObj(h)
	if err != nil {
		return 0, err
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, &ValueError{Msg: "integer value too large to represent"}
	}
	return int32(v), nil
}

// GetWideFromObj returns the wide integer value of the object, shimmering a
// string representation if needed. A double converts only when integral.
func (rt *Runtime) GetWideFromObj(h Obj) (int64, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	o := rt.objects[h]
	if o == nil {
		return 0, &ValueError{Msg: "invalid object handle"}
	}
	switch o.typePtr {
	case rt.intType, rt.wideType, rt.booleanType:
		return o.intVal, nil
	case rt.doubleType:
		if o.dblVal != math.Trunc(o.dblVal) || math.IsInf(o.dblVal, 0) {
			return 0, &ValueError{Msg: "expected integer but got " + strconv.Quote(rt.stringLocked(o))}
		}
		if o.dblVal < math.MinInt64 || o.dblVal >= math.MaxInt64 {
			return 0, &ValueError{Msg: "integer value too large to represent"}
		}
		return int64(o.dblVal), nil
	}
	s := rt.stringLocked(o)
	v, err := strconv.ParseInt(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, &ValueError{Msg: "expected integer but got " + strconv.Quote(s)}
	}
	// Shimmer: record the parsed representation and its tag.
	if v >= math.MinInt32 && v <= math.MaxInt32 {
		o.typePtr = rt.intType
	} else {
		o.typePtr = rt.wideType
	}
	o.intVal = v
	return v, nil
}

// GetDoubleFromObj returns the floating-point value of the object,
// shimmering a string representation if needed.
func (rt *Runtime) GetDoubleFromObj(h Obj) (float64, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	o := rt.objects[h]
	if o == nil {
		return 0, &ValueError{Msg: "invalid object handle"}
	}
	switch o.typePtr {
	case rt.doubleType:
		return o.dblVal, nil
	case rt.intType, rt.wideType, rt.booleanType:
		return float64(o.intVal), nil
	}
	s := rt.stringLocked(o)
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, &ValueError{Msg: "expected floating-point number but got " + strconv.Quote(s)}
	}
	o.typePtr = rt.doubleType
	o.dblVal = v
	return v, nil
}

// GetBooleanFromObj returns the boolean value of the object using the
// runtime's boolean grammar.
func (rt *Runtime) GetBooleanFromObj(h Obj) (bool, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	o := rt.objects[h]
	if o == nil {
		return false, &ValueError{Msg: "invalid object handle"}
	}
	switch o.typePtr {
	case rt.booleanType, rt.intType, rt.wideType:
		return o.intVal != 0, nil
	case rt.doubleType:
		return o.dblVal != 0, nil
	}
	s := rt.stringLocked(o)
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		o.typePtr = rt.booleanType
		o.intVal = 1
		return true, nil
	case "0", "false", "no", "off":
		o.typePtr = rt.booleanType
		o.intVal = 0
		return false, nil
	}
	return false, &ValueError{Msg: "expected boolean value but got " + strconv.Quote(s)}
}

// ValueError reports a failed conversion or an invalid handle. The message
// follows the runtime's own error grammar and is surfaced verbatim.
type ValueError struct {
	Msg string
}

func (e *ValueError) Error() string { return e.Msg }
